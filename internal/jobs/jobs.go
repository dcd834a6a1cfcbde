// Package jobs tracks long running admin tasks such as review exports.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

type Result struct {
	Kind     string `json:"kind"`
	Rows     int    `json:"rows"`
	Sheet    string `json:"sheet"`
	Output   string `json:"-"`
	Filename string `json:"filename"`
}

type Job struct {
	ID        string
	Status    Status
	Logs      []string
	Progress  int // 0-100
	Result    *Result
	Error     string
	CreatedAt time.Time

	mu  sync.RWMutex
	now func() time.Time
}

// Snapshot is a consistent copy of a job for JSON responses.
type Snapshot struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Logs      []string  `json:"logs"`
	Progress  int       `json:"progress"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (j *Job) logLocked(msg string) {
	ts := j.now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (j *Job) Log(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.logLocked(msg)
}

func (j *Job) SetProgress(current, total int, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if total > 0 {
		j.Progress = int(float64(current) / float64(total) * 100)
	}
	if msg != "" {
		j.logLocked(msg)
	}
}

func (j *Job) Fail(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusError
	j.Error = msg
	j.Logs = append(j.Logs, "[ERROR] "+msg)
}

func (j *Job) Finish(res Result, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusDone
	j.Result = &res
	j.Progress = 100
	if msg != "" {
		j.logLocked(msg)
	}
}

func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.Logs))
	copy(logs, j.Logs)
	s := Snapshot{
		ID:        j.ID,
		Status:    j.Status,
		Logs:      logs,
		Progress:  j.Progress,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
	}
	if j.Result != nil {
		res := *j.Result
		s.Result = &res
	}
	return s
}

// Store keeps jobs in memory for the lifetime of the process.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job), now: time.Now}
}

func (s *Store) New() *Job {
	j := &Job{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		Logs:      []string{},
		CreatedAt: s.now(),
		now:       s.now,
	}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
	return j
}

func (s *Store) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// Run starts fn in its own goroutine. A panic inside fn fails the job.
func (s *Store) Run(fn func(j *Job)) *Job {
	j := s.New()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				j.Fail(fmt.Sprintf("Panic: %v", r))
			}
		}()
		fn(j)
	}()
	return j
}

// Prune drops finished jobs older than maxAge and returns how many were removed.
func (s *Store) Prune(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		snap := j.Snapshot()
		if snap.Status != StatusRunning && snap.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
