// Package log holds in-process logger adapters that do not write to a sink.
package log

import (
	"sync"

	pkglog "github.com/bft-labs/inspectgw/pkg/log"
)

// Entry is one recorded log call.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Recorder implements pkglog.Logger by keeping every entry in memory.
// It is safe for concurrent use; child loggers created by With share the
// parent's entry list.
type Recorder struct {
	shared *recorderState
	fields []pkglog.Field
}

type recorderState struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{shared: &recorderState{}}
}

func (r *Recorder) Debug(msg string, fields ...pkglog.Field) { r.record("debug", msg, fields) }
func (r *Recorder) Info(msg string, fields ...pkglog.Field)  { r.record("info", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...pkglog.Field)  { r.record("warn", msg, fields) }
func (r *Recorder) Error(msg string, fields ...pkglog.Field) { r.record("error", msg, fields) }

// With returns a Recorder that prefixes fields to every entry.
func (r *Recorder) With(fields ...pkglog.Field) pkglog.Logger {
	merged := make([]pkglog.Field, 0, len(r.fields)+len(fields))
	merged = append(merged, r.fields...)
	merged = append(merged, fields...)
	return &Recorder{shared: r.shared, fields: merged}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([]Entry(nil), r.shared.entries...)
}

// Messages returns the recorded messages at the given level.
func (r *Recorder) Messages(level string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (r *Recorder) record(level, msg string, fields []pkglog.Field) {
	m := make(map[string]interface{}, len(r.fields)+len(fields))
	for _, f := range r.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	r.shared.mu.Lock()
	r.shared.entries = append(r.shared.entries, Entry{Level: level, Message: msg, Fields: m})
	r.shared.mu.Unlock()
}
