package session

import (
	"fmt"
	"sync"
	"time"
)

// Sink receives the human-readable messages a session emits.
type Sink interface {
	Log(msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msg string)

func (f SinkFunc) Log(msg string) { f(msg) }

// Discard drops every message.
var Discard Sink = SinkFunc(func(string) {})

type multiSink []Sink

func (m multiSink) Log(msg string) {
	for _, s := range m {
		s.Log(msg)
	}
}

// MultiSink delivers every message to each of sinks in order. Nil sinks
// are skipped.
func MultiSink(sinks ...Sink) Sink {
	var m multiSink
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

// Entry is one logged message.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}

// History keeps the most recent messages. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
	now     func() time.Time
}

// NewHistory keeps at most limit entries. A limit below 1 keeps nothing.
func NewHistory(limit int) *History {
	return &History{limit: limit, now: time.Now}
}

func (h *History) Log(msg string) {
	if h.limit < 1 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Entry{Time: h.now(), Message: msg})
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// Entries returns the kept messages, newest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// Len returns how many messages are kept.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
