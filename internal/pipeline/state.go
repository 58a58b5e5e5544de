package pipeline

import "sync"

// Status of a compression run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusFailed
}

// StateSnapshot is a point-in-time copy of a run's state, safe to hand
// across the worker/presentation boundary.
type StateSnapshot struct {
	Status     Status `json:"status"`
	PagesDone  int    `json:"pages_done"`
	TotalPages int    `json:"total_pages"`
	LastError  string `json:"last_error,omitempty"`
}

// runState is mutated only by the run goroutine; readers take
// snapshots under the lock.
type runState struct {
	mu         sync.Mutex
	status     Status
	pagesDone  int
	totalPages int
	lastError  error
}

func newRunState(totalPages int) *runState {
	return &runState{
		status:     StatusPending,
		totalPages: totalPages,
	}
}

func (s *runState) snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StateSnapshot{
		Status:     s.status,
		PagesDone:  s.pagesDone,
		TotalPages: s.totalPages,
	}
	if s.lastError != nil {
		snap.LastError = s.lastError.Error()
	}
	return snap
}

func (s *runState) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *runState) setFailed(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.lastError = err
	s.mu.Unlock()
}

func (s *runState) incPagesDone() int {
	s.mu.Lock()
	s.pagesDone++
	done := s.pagesDone
	s.mu.Unlock()
	return done
}
