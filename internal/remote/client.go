package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tripsync/internal/domain"
)

// ErrUnsuccessful marks a response whose envelope carried success=false.
var ErrUnsuccessful = errors.New("remote reported failure")

// Routes holds the request paths for one entity kind. Item paths contain a
// single %s replaced by the escaped entity id.
type Routes struct {
	List   string
	Create string
	Update string
	Delete string
}

// Routes used by the remote store.
var (
	ItineraryRoutes = Routes{
		List:   "/itinerary/",
		Create: "/itinerary/create",
		Update: "/itinerary/%s/update",
		Delete: "/itinerary/%s/delete",
	}
	ExpenseRoutes = Routes{
		List:   "/expenses",
		Create: "/expenses/add",
		Update: "/expenses/%s/update",
		Delete: "/expenses/%s/delete",
	}
	BookingRoutes = Routes{
		List:   "/transport/bookings",
		Create: "/transport/book",
		Update: "/transport/bookings/%s/update",
		Delete: "/transport/bookings/%s/delete",
	}
)

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HTTP is a RemoteClient for entities of type T.
type HTTP[T any] struct {
	Base   string
	HTTP   *http.Client
	Routes Routes
}

// NewHTTP returns a client for base using routes. A nil httpClient means
// http.DefaultClient.
func NewHTTP[T any](base string, routes Routes, httpClient *http.Client) *HTTP[T] {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTP[T]{Base: strings.TrimRight(base, "/"), HTTP: httpClient, Routes: routes}
}

// FetchAll returns the whole remote collection; never nil on success.
func (c *HTTP[T]) FetchAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, c.Routes.List, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Create posts entity and returns the stored version echoed by the server.
func (c *HTTP[T]) Create(ctx context.Context, entity T) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, c.Routes.Create, entity, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Update applies patch to the entity with the given id.
func (c *HTTP[T]) Update(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return c.do(ctx, http.MethodPut, itemPath(c.Routes.Update, id), patch, nil)
}

// Remove deletes the entity with the given id.
func (c *HTTP[T]) Remove(ctx context.Context, id domain.ID) error {
	return c.do(ctx, http.MethodDelete, itemPath(c.Routes.Delete, id), nil, nil)
}

func itemPath(pattern string, id domain.ID) string {
	return fmt.Sprintf(pattern, url.PathEscape(id.String()))
}

// do sends in (if non-nil) as JSON and decodes the envelope's data into out
// (if non-nil).
func (c *HTTP[T]) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("remote %s %s: encode: %w", method, path, err)
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return fmt.Errorf("remote %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("remote %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode/100 != 2 {
		if msg := env.message(); decodeErr == nil && msg != "" {
			return fmt.Errorf("remote %s %s: %s: %s", method, path, resp.Status, msg)
		}
		return fmt.Errorf("remote %s %s: %s", method, path, resp.Status)
	}
	if decodeErr != nil {
		return fmt.Errorf("remote %s %s: decode response: %w", method, path, decodeErr)
	}
	if !env.Success {
		msg := env.message()
		if msg == "" {
			msg = "no details"
		}
		return fmt.Errorf("remote %s %s: %w: %s", method, path, ErrUnsuccessful, msg)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("remote %s %s: decode data: %w", method, path, err)
	}
	return nil
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Compile-time assertions that HTTP implements domain.RemoteClient per kind.
var (
	_ domain.RemoteClient[domain.Itinerary] = (*HTTP[domain.Itinerary])(nil)
	_ domain.RemoteClient[domain.Expense]   = (*HTTP[domain.Expense])(nil)
	_ domain.RemoteClient[domain.Booking]   = (*HTTP[domain.Booking])(nil)
)
