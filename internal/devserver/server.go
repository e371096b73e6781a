package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripsync/internal/domain"
	"tripsync/internal/remote"
)

// Prefix is the path under which the API is mounted.
const Prefix = "/api"

// collection is one kind's entities, kept in insertion order.
type collection struct {
	order []string
	items map[string]map[string]any
	seq   int
}

func newCollection() *collection {
	return &collection{items: make(map[string]map[string]any)}
}

func (c *collection) list() []map[string]any {
	out := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.items[id]))
	}
	return out
}

func (c *collection) put(id string, entity map[string]any) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = entity
}

func (c *collection) remove(id string) {
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Server holds the in-memory collections.
type Server struct {
	mu      sync.RWMutex
	kinds   map[domain.Kind]*collection
	failing bool
	now     func() time.Time
	log     domain.Logger
	mux     *http.ServeMux
}

// New returns a Server with empty collections, logging requests to log.
func New(log domain.Logger) *Server {
	s := &Server{
		kinds: map[domain.Kind]*collection{
			domain.KindItinerary: newCollection(),
			domain.KindExpense:   newCollection(),
			domain.KindBooking:   newCollection(),
		},
		now: time.Now,
		log: log,
		mux: http.NewServeMux(),
	}
	s.route(domain.KindItinerary, remote.ItineraryRoutes)
	s.route(domain.KindExpense, remote.ExpenseRoutes)
	s.route(domain.KindBooking, remote.BookingRoutes)
	return s
}

func (s *Server) route(kind domain.Kind, r remote.Routes) {
	list := Prefix + r.List
	if strings.HasSuffix(list, "/") {
		list += "{$}"
	}
	item := func(p string) string { return Prefix + strings.Replace(p, "%s", "{id}", 1) }

	s.mux.HandleFunc("GET "+list, func(w http.ResponseWriter, req *http.Request) { s.handleList(w, kind) })
	s.mux.HandleFunc("POST "+Prefix+r.Create, func(w http.ResponseWriter, req *http.Request) { s.handleCreate(w, req, kind) })
	s.mux.HandleFunc("PUT "+item(r.Update), func(w http.ResponseWriter, req *http.Request) { s.handleUpdate(w, req, kind) })
	s.mux.HandleFunc("DELETE "+item(r.Delete), func(w http.ResponseWriter, req *http.Request) { s.handleDelete(w, req, kind) })
}

// ServeHTTP logs and dispatches the request.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	s.mu.RLock()
	failing := s.failing
	s.mu.RUnlock()
	if failing {
		writeJSON(rec, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "service unavailable"})
	} else {
		s.mux.ServeHTTP(rec, req)
	}
	s.log.Infof("%s %s remote=%s status=%d bytes=%d dur=%s",
		req.Method, req.URL.Path, req.RemoteAddr, rec.status, rec.bytes, time.Since(start))
}

// SetFailing toggles outage simulation.
func (s *Server) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Reset drops every stored entity, as a backend restart would.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind := range s.kinds {
		s.kinds[kind] = newCollection()
	}
}

// Len returns how many entities of kind are stored.
func (s *Server) Len(kind domain.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.kinds[kind].order)
}

// Entity returns the stored fields of one entity.
func (s *Server) Entity(kind domain.Kind, id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.kinds[kind].items[id]
	return clone(e), ok
}

func (s *Server) handleList(w http.ResponseWriter, kind domain.Kind) {
	s.mu.RLock()
	data := s.kinds[kind].list()
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (s *Server) handleCreate(w http.ResponseWriter, req *http.Request, kind domain.Kind) {
	defer req.Body.Close()
	var entity map[string]any
	if err := json.NewDecoder(req.Body).Decode(&entity); err != nil || entity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
		return
	}

	s.mu.Lock()
	c := s.kinds[kind]
	id := idString(entity["id"])
	if id == "" {
		c.seq++
		id = fmt.Sprintf("%s-%d", kind, c.seq)
	}
	entity["id"] = id
	if _, ok := entity["createdAt"]; !ok {
		entity["createdAt"] = s.now().Format(time.RFC3339Nano)
	}
	if kind == domain.KindBooking {
		if status, _ := entity["status"].(string); status == "" {
			entity["status"] = string(domain.StatusConfirmed)
		}
	}
	c.put(id, entity)
	stored := clone(entity)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": stored})
}

func (s *Server) handleUpdate(w http.ResponseWriter, req *http.Request, kind domain.Kind) {
	defer req.Body.Close()
	var patch map[string]any
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
		return
	}
	id := req.PathValue("id")
	delete(patch, "id")

	s.mu.Lock()
	if entity, ok := s.kinds[kind].items[id]; ok {
		for k, v := range patch {
			entity[k] = v
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": patch, "message": string(kind) + " updated"})
}

func (s *Server) handleDelete(w http.ResponseWriter, req *http.Request, kind domain.Kind) {
	id := req.PathValue("id")

	s.mu.Lock()
	s.kinds[kind].remove(id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": fmt.Sprintf("%s %s deleted", kind, id)})
}

// idString renders a decoded JSON id (string or number) as a string.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
