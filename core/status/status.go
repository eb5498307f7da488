package status

import (
	"encoding/json"
	"sync"
)

// Area names one manageable sub-domain of catalog state.
type Area string

const (
	Languages         Area = "languages"
	PriceVariants     Area = "priceVariants"
	StockLocations    Area = "stockLocations"
	SubscriptionPlans Area = "subscriptionPlans"
	VatTypes          Area = "vatTypes"
	Shapes            Area = "shapes"
	Topics            Area = "topicMaps"
	Grids             Area = "grids"
	Items             Area = "items"
	Customers         Area = "customers"
	Orders            Area = "orders"
)

// Areas returns all areas in run order.
func Areas() []Area {
	return []Area{
		Languages,
		PriceVariants,
		StockLocations,
		SubscriptionPlans,
		VatTypes,
		Shapes,
		Topics,
		Grids,
		Items,
		Customers,
		Orders,
	}
}

// Warning is a recoverable failure attached to an area.
type Warning struct {
	// Message is a human-readable description, e.g. "Euro: error".
	Message string `json:"message"`

	// Cause is the underlying error text, if any.
	Cause string `json:"cause,omitempty"`
}

// AreaStatus is the progress state of one area.
type AreaStatus struct {
	// Progress is a fraction in [0,1].
	Progress float64 `json:"progress"`

	// Warnings are recorded in the order they happened.
	Warnings []Warning `json:"warnings"`
}

func (s AreaStatus) clone() AreaStatus {
	out := AreaStatus{Progress: s.Progress, Warnings: make([]Warning, len(s.Warnings))}
	copy(out.Warnings, s.Warnings)
	return out
}

// Snapshot is an immutable view of all areas.
type Snapshot struct {
	version uint64
	areas   map[Area]AreaStatus
}

// Version increases by one with every applied update.
func (s Snapshot) Version() uint64 {
	return s.version
}

// Area returns a copy of the status of one area.
func (s Snapshot) Area(a Area) AreaStatus {
	st, ok := s.areas[a]
	if !ok {
		return AreaStatus{Warnings: []Warning{}}
	}
	return st.clone()
}

// Areas returns a deep copy of all area statuses.
func (s Snapshot) Areas() map[Area]AreaStatus {
	out := make(map[Area]AreaStatus, len(s.areas))
	for k, v := range s.areas {
		out[k] = v.clone()
	}
	return out
}

// WarningCount returns the total number of warnings across areas.
func (s Snapshot) WarningCount() int {
	n := 0
	for _, st := range s.areas {
		n += len(st.Warnings)
	}
	return n
}

// MarshalJSON encodes the snapshot as an object keyed by area.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.areas)
}

// Update describes a change to one area. Nil fields are left untouched.
type Update struct {
	Progress *float64
	Warning  *Warning
}

// Aggregator holds the current snapshot and fans it out to subscribers.
type Aggregator struct {
	mu          sync.Mutex
	current     Snapshot
	subscribers map[int]chan Snapshot
	nextID      int
}

// NewAggregator creates an aggregator with every area at progress 0.
func NewAggregator() *Aggregator {
	areas := make(map[Area]AreaStatus, len(Areas()))
	for _, a := range Areas() {
		areas[a] = AreaStatus{Warnings: []Warning{}}
	}
	return &Aggregator{
		current:     Snapshot{areas: areas},
		subscribers: make(map[int]chan Snapshot),
	}
}

// Snapshot returns the current snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Apply builds a new snapshot with the update applied and publishes it.
// Progress is clamped to [0,1].
func (a *Aggregator) Apply(area Area, u Update) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := make(map[Area]AreaStatus, len(a.current.areas)+1)
	for k, v := range a.current.areas {
		next[k] = v
	}

	st := next[area]
	if u.Progress != nil {
		st.Progress = clamp(*u.Progress)
	}
	if u.Warning != nil {
		warnings := make([]Warning, len(st.Warnings), len(st.Warnings)+1)
		copy(warnings, st.Warnings)
		st.Warnings = append(warnings, *u.Warning)
	}
	if st.Warnings == nil {
		st.Warnings = []Warning{}
	}
	next[area] = st

	a.current = Snapshot{version: a.current.version + 1, areas: next}
	a.publish(a.current)
	return a.current
}

// SetProgress is a shorthand for Apply with a progress update.
func (a *Aggregator) SetProgress(area Area, progress float64) Snapshot {
	return a.Apply(area, Update{Progress: &progress})
}

// AddWarning is a shorthand for Apply with a warning update.
func (a *Aggregator) AddWarning(area Area, w Warning) Snapshot {
	return a.Apply(area, Update{Warning: &w})
}

// Subscribe returns a channel receiving every published snapshot, and a cancel
// function that closes it. The current snapshot is delivered first.
func (a *Aggregator) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subscribers[id] = ch
	ch <- a.current
	a.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subscribers, id)
			close(ch)
			a.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close closes every subscription.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, ch := range a.subscribers {
		close(ch)
		delete(a.subscribers, id)
	}
}

// publish must be called with a.mu held.
func (a *Aggregator) publish(s Snapshot) {
	for _, ch := range a.subscribers {
		select {
		case ch <- s:
			continue
		default:
		}
		// Subscriber is behind: drop the oldest frame and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
