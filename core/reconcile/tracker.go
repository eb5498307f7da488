package reconcile

import (
	"fmt"
	"sync"
)

// Tracker reports finished/total after every completed task.
// It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	rep       Reporter
	total     int
	finished  int
	failed    int
	completed bool
}

// NewTracker creates a tracker for total tasks. A total of zero is allowed.
func NewTracker(total int, rep Reporter) *Tracker {
	if rep == nil {
		rep = Discard
	}
	return &Tracker{rep: rep, total: total}
}

// Done records one finished creation. A non-nil err is reported as a warning.
func (t *Tracker) Done(label string, err error) {
	t.Record(label, "added", err)
}

// Record records one finished task with a custom outcome for the success case.
func (t *Tracker) Record(label, outcome string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.finished++
	if err != nil {
		t.failed++
		outcome = "error"
		t.rep.Warn(fmt.Sprintf("%s: error", label), err)
	}
	t.rep.Progress(t.progress(), fmt.Sprintf("%s: %s", label, outcome))
}

// progress must be called with t.mu held.
func (t *Tracker) progress() float64 {
	if t.total <= 0 || t.finished >= t.total {
		return 1
	}
	return float64(t.finished) / float64(t.total)
}

// Exists records one task that needed no work because the entity already exists.
func (t *Tracker) Exists(label string) {
	t.Record(label, "exists", nil)
}

// Complete reports the final progress of 1. Later calls are no-ops.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.completed {
		return
	}
	t.completed = true
	t.rep.Progress(1, "done")
}

// Finished returns the number of finished tasks.
func (t *Tracker) Finished() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// Failed returns the number of failed tasks.
func (t *Tracker) Failed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Succeeded returns the number of tasks that finished without error.
func (t *Tracker) Succeeded() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished - t.failed
}
