package imports

import (
	"sync"
	"time"
)

type State string

const (
	StateQueued  State = "QUEUED"
	StateRunning State = "RUNNING"
	StateDone    State = "DONE"
	StateFailed  State = "FAILED"
)

// Job is one enqueued spreadsheet import. Transient: the file bytes live in
// memory until the worker consumes them.
type Job struct {
	ID               string
	CondominiumID    int64
	LetterTemplateID int64
	FileBytes        []byte
}

// Result is the summary returned when a job finishes.
type Result struct {
	Message      string   `json:"message"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	ErrorDetails []string `json:"error_details,omitempty"`
}

// Status is the queryable view of a job.
type Status struct {
	ID         string     `json:"id"`
	State      State      `json:"state"`
	Error      string     `json:"error,omitempty"`
	Result     *Result    `json:"result,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Registry tracks job state so callers can poll results instead of grepping
// logs. It is owned by main and injected: capacity-bounded and TTL-evicting,
// never a package-level singleton.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*Status
	order    []string
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(capacity int, ttl time.Duration) *Registry {
	return &Registry{
		entries:  make(map[string]*Status),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *Registry) Enqueue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked()
	r.entries[id] = &Status{ID: id, State: StateQueued, EnqueuedAt: r.now()}
	r.order = append(r.order, id)
}

func (r *Registry) SetRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.entries[id]; ok {
		st.State = StateRunning
	}
}

func (r *Registry) SetDone(id string, result *Result) {
	r.finish(id, StateDone, "", result)
}

func (r *Registry) SetFailed(id string, errMsg string) {
	r.finish(id, StateFailed, errMsg, nil)
}

func (r *Registry) finish(id string, state State, errMsg string, result *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.entries[id]
	if !ok {
		return
	}
	now := r.now()
	st.State = state
	st.Error = errMsg
	st.Result = result
	st.FinishedAt = &now
}

// Get returns a copy of the job status.
func (r *Registry) Get(id string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.entries[id]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

// evictLocked drops finished entries past their TTL, then the oldest
// finished entries while over capacity. Queued/running jobs are never
// evicted.
func (r *Registry) evictLocked() {
	keep := r.order[:0]
	for _, id := range r.order {
		st := r.entries[id]
		if st.FinishedAt != nil && r.now().Sub(*st.FinishedAt) > r.ttl {
			delete(r.entries, id)
			continue
		}
		keep = append(keep, id)
	}
	r.order = keep

	for len(r.order) >= r.capacity {
		evicted := false
		for i, id := range r.order {
			if r.entries[id].FinishedAt == nil {
				continue
			}
			delete(r.entries, id)
			r.order = append(r.order[:i], r.order[i+1:]...)
			evicted = true
			break
		}
		if !evicted {
			break
		}
	}
}
