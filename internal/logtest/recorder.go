// Package logtest provides a Logger that records lines for assertions.
package logtest

import (
	"fmt"
	"strings"
	"sync"

	"tripsync/internal/domain"
)

// Line is one recorded log call.
type Line struct {
	Level   string
	Message string
}

// Recorder collects log lines in memory. The zero value is ready to use.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *Recorder) add(level, format string, arguments ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Level: level, Message: fmt.Sprintf(format, arguments...)})
}

func (r *Recorder) Debugf(format string, arguments ...interface{}) { r.add("debug", format, arguments...) }
func (r *Recorder) Infof(format string, arguments ...interface{})  { r.add("info", format, arguments...) }
func (r *Recorder) Warnf(format string, arguments ...interface{})  { r.add("warn", format, arguments...) }
func (r *Recorder) Errorf(format string, arguments ...interface{}) { r.add("error", format, arguments...) }

// Lines returns a copy of everything recorded at level ("" for all levels).
func (r *Recorder) Lines(level string) []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, 0, len(r.lines))
	for _, l := range r.lines {
		if level == "" || l.Level == level {
			out = append(out, l)
		}
	}
	return out
}

// Contains reports whether a line at level contains substr.
func (r *Recorder) Contains(level, substr string) bool {
	for _, l := range r.Lines(level) {
		if strings.Contains(l.Message, substr) {
			return true
		}
	}
	return false
}

var _ domain.Logger = (*Recorder)(nil)
