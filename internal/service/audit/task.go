package audit

import (
	"sync"
	"time"
)

type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCooling   State = "cooling"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Finished reports whether s is terminal.
func (s State) Finished() bool {
	return s == StateCompleted || s == StateCancelled
}

// Result is the webhook outcome of a task. It is only meaningful once the
// task has left StateRunning.
type Result struct {
	StatusCode int
	Success    bool
	Err        error
}

// Task is one audit trigger for a campaign, from the webhook call through
// the cooldown that keeps the campaign marked active.
type Task struct {
	ID           string
	CampaignID   string
	CampaignName string
	StartedAt    time.Time

	mu     sync.RWMutex
	state  State
	result Result
	done   chan struct{}
}

func newTask(id, campaignID, campaignName string) *Task {
	return &Task{
		ID:           id,
		CampaignID:   campaignID,
		CampaignName: campaignName,
		StartedAt:    time.Now(),
		state:        StatePending,
		done:         make(chan struct{}),
	}
}

func (t *Task) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Task) Result() Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

func (t *Task) setResult(r Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = r
}

func (t *Task) finish(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	close(t.done)
}
