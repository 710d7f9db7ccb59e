package audit

import (
	"sort"
	"sync"

	"github.com/ifuryst/reelcheck/internal/metrics"
)

// Registry tracks campaigns with an audit in flight. Entries are reference
// counted: starting a second audit for a campaign keeps it active until the
// last one releases.
type Registry struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]int)}
}

// Acquire marks id active and reports whether it was inactive before.
func (r *Registry) Acquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[id]++
	metrics.ActiveAudits.Set(float64(len(r.counts)))
	return r.counts[id] == 1
}

// Release drops one reference. Releasing an inactive id is a no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.counts[id]
	if !ok {
		return
	}
	if n <= 1 {
		delete(r.counts, id)
	} else {
		r.counts[id] = n - 1
	}
	metrics.ActiveAudits.Set(float64(len(r.counts)))
}

// Active returns a sorted snapshot of active campaign ids.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.counts))
	for id := range r.counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.counts[id]
	return ok
}
