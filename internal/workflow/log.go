package workflow

import (
	"sync"
	"time"
)

// LogRecord is one entry in the in-memory sink that every executor
// appends to, independent of the process-wide zerolog stream. It is
// the artifact a caller (CLI or, eventually, an HTTP surface) reads
// back after a run completes.
type LogRecord struct {
	Time  time.Time `json:"time"`
	Level string    `json:"level"` // info | warn | error
	Title string    `json:"title"`
	Msg   string    `json:"msg"`
}

// Sink accumulates LogRecords across a single workflow run. Appends
// and snapshots are guarded by a mutex, so the sink is safe for
// concurrent use; the interpreter itself appends from one goroutine.
type Sink struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) append(level, title, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, LogRecord{Time: time.Now(), Level: level, Title: title, Msg: msg})
}

func (s *Sink) Info(title, msg string)  { s.append("info", title, msg) }
func (s *Sink) Warn(title, msg string)  { s.append("warn", title, msg) }
func (s *Sink) Error(title, msg string) { s.append("error", title, msg) }

// Records returns a snapshot copy of the accumulated log.
func (s *Sink) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogRecord, len(s.records))
	copy(out, s.records)
	return out
}
