package pipeline_ingest

import (
	"context"
	"fmt"
	"sync"
)

type Status string

const (
	StatusQueued      Status = "queued"
	StatusValidating  Status = "validating"
	StatusCompressing Status = "compressing"
	StatusUploading   Status = "uploading"
	StatusUploaded    Status = "uploaded"
	StatusBackingUp   Status = "backing-up"
	StatusPersisting  Status = "persisting"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

const (
	ErrorCodeValidation    = "validation"
	ErrorCodeTransport     = "transport"
	ErrorCodeMissingParent = "missing_parent"
	ErrorCodePersistence   = "persistence"
	ErrorCodeInternal      = "internal"
)

// Outcome is the per-candidate result the caller polls for display. Mutated
// only by the orchestrator. ProgressExact separates byte-accurate chunked
// progress from the synthesized direct-transport approximation - the two must
// never be conflated by consumers.
type Outcome struct {
	Status        Status   `json:"status"`
	Progress      int      `json:"progress"`
	ProgressExact bool     `json:"progressExact"`
	Error         string   `json:"error,omitempty"`
	ErrorCode     string   `json:"errorCode,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	PublicUrl     string   `json:"publicUrl,omitempty"`
	Location      string   `json:"location,omitempty"`
}

// CandidateKey is the stable identifier for one file within a batch.
func CandidateKey(fileName string, size int64) string {
	return fmt.Sprintf("%s:%d", fileName, size)
}

// Session owns the outcome map for one batch. It replaces any notion of
// global progress state: callers hold the session handle and pass it into the
// orchestrator explicitly.
type Session struct {
	EventId   string
	EventName string
	EventSlug string

	mu       sync.Mutex
	outcomes map[string]*Outcome
	cancels  map[string]context.CancelFunc
}

func NewSession(eventId string, eventName string, eventSlug string) *Session {
	return &Session{
		EventId:   eventId,
		EventName: eventName,
		EventSlug: eventSlug,
		outcomes:  make(map[string]*Outcome),
		cancels:   make(map[string]context.CancelFunc),
	}
}

func (s *Session) register(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outcomes[key]; !ok {
		s.outcomes[key] = &Outcome{Status: StatusQueued, Warnings: make([]string, 0)}
	}
}

// Get returns a copy of one candidate's outcome.
func (s *Session) Get(key string) (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.outcomes[key]
	if !ok {
		return Outcome{}, false
	}
	return *outcome, true
}

// Snapshot returns a copy of the whole outcome map.
func (s *Session) Snapshot() map[string]Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]Outcome, len(s.outcomes))
	for k, v := range s.outcomes {
		result[k] = *v
	}
	return result
}

// Cancel requests cancellation of one candidate. An in-flight transfer is
// aborted through its context; a still-queued candidate is marked cancelled
// directly so the orchestrator skips it. Other candidates are unaffected.
func (s *Session) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[key]; ok {
		cancel()
		return true
	}
	if outcome, ok := s.outcomes[key]; ok && !outcome.Status.IsTerminal() {
		outcome.Status = StatusCancelled
		return true
	}
	return false
}

func (s *Session) setCancel(key string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels[key] = cancel
}

func (s *Session) clearCancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, key)
}

func (s *Session) isCancelled(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.outcomes[key]
	return ok && outcome.Status == StatusCancelled
}

func (s *Session) setStatus(key string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[key]; ok {
		outcome.Status = status
	}
}

// setProgress only ever moves progress forward, keeping the reported value
// monotonic even if an approximation ticker races a completion update.
func (s *Session) setProgress(key string, percent int, exact bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[key]; ok {
		outcome.ProgressExact = exact
		if percent > outcome.Progress {
			outcome.Progress = percent
		}
	}
}

func (s *Session) addWarning(key string, warning string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[key]; ok {
		outcome.Warnings = append(outcome.Warnings, warning)
	}
}

func (s *Session) fail(key string, errorCode string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[key]; ok {
		outcome.Status = StatusFailed
		outcome.ErrorCode = errorCode
		outcome.Error = message
	}
}

func (s *Session) markCancelled(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[key]; ok {
		outcome.Status = StatusCancelled
	}
}

func (s *Session) complete(key string, publicUrl string, location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[key]; ok {
		outcome.Status = StatusCompleted
		outcome.Progress = 100
		outcome.PublicUrl = publicUrl
		outcome.Location = location
	}
}
