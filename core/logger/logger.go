// Package logger records shell session events as newline delimited JSON so
// sessions can be audited or replayed offline.
package logger

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType tags a log entry.
type EventType string

const (
	// EventSessionStart marks the beginning of a shell session.
	EventSessionStart EventType = "session_start"
	// EventSessionEnd marks the end of a shell session.
	EventSessionEnd EventType = "session_end"
	// EventCommand records one evaluated command line.
	EventCommand EventType = "command"
	// EventParseError records a line the parser rejected.
	EventParseError EventType = "parse_error"
	// EventEvalError records a line that failed during evaluation.
	EventEvalError EventType = "eval_error"
)

// Entry is one logged event.
type Entry struct {
	Time    time.Time `json:"time"`
	Session string    `json:"session"`
	Event   EventType `json:"event"`
	Line    string    `json:"line,omitempty"`
	Error   string    `json:"error,omitempty"`
	User    string    `json:"user,omitempty"`
	Remote  string    `json:"remote,omitempty"`
}

// Recorder writes entries as JSON lines to a single destination. It is safe
// for use from multiple sessions.
type Recorder struct {
	mu  sync.Mutex
	enc *json.Encoder

	// Now stands in for time.Now in tests.
	Now func() time.Time
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w), Now: time.Now}
}

// Record writes one entry, stamping the current time.
func (r *Recorder) Record(entry Entry) error {
	entry.Time = r.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(entry)
}

// SessionRecorder records entries for a single named session.
type SessionRecorder struct {
	recorder *Recorder
	session  string
}

// NewSession returns a recorder that stamps every entry with the session id.
func (r *Recorder) NewSession(id string) *SessionRecorder {
	return &SessionRecorder{recorder: r, session: id}
}

// Record writes one entry for this session.
func (s *SessionRecorder) Record(entry Entry) error {
	entry.Session = s.session
	return s.recorder.Record(entry)
}

// ReadEntries parses a newline delimited JSON log, calling handler for each
// entry.
func ReadEntries(r io.Reader, handler func(Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}
		handler(entry)
	}
	return nil
}
