package bootstrap

import (
	"sync"
	"time"

	"catalog-bootstrapper/core/status"
)

// EventType names an event.
type EventType string

const (
	EventStatusUpdate EventType = "status-update"
	EventError        EventType = "error"
	EventDone         EventType = "done"
)

var eventPrefixes = map[status.Area]string{
	status.Languages:         "languages",
	status.PriceVariants:     "price-variants",
	status.StockLocations:    "stock-locations",
	status.SubscriptionPlans: "subscription-plans",
	status.VatTypes:          "vat-types",
	status.Shapes:            "shapes",
	status.Topics:            "topics",
	status.Grids:             "grids",
	status.Items:             "items",
	status.Customers:         "customers",
	status.Orders:            "orders",
}

// UpdateEvent returns the "<area>-update" event type.
func UpdateEvent(a status.Area) EventType {
	return EventType(eventPrefixes[a] + "-update")
}

// DoneEvent returns the "<area>-done" event type.
func DoneEvent(a status.Area) EventType {
	return EventType(eventPrefixes[a] + "-done")
}

// Event is one message of the progress stream.
type Event struct {
	Type EventType `json:"type"`

	// Area is set on area updates and area done events.
	Area status.Area `json:"area,omitempty"`

	// Progress and Message are set on area updates.
	Progress *float64 `json:"progress,omitempty"`
	Message  string   `json:"message,omitempty"`

	// Warning is set on area updates that record a failure.
	Warning *status.Warning `json:"warning,omitempty"`

	// Status is set on status updates and carries the final snapshot on done.
	Status *status.Snapshot `json:"status,omitempty"`

	// Err is set on error events.
	Err error `json:"-"`

	// Start, End and Duration are set on the done event.
	Start    time.Time     `json:"start,omitempty"`
	End      time.Time     `json:"end,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// lifecycle events must reach every subscriber.
func (e Event) lifecycle() bool {
	switch e.Type {
	case EventStatusUpdate:
		return false
	case EventError, EventDone:
		return true
	}
	return e.Type != UpdateEvent(e.Area)
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	closed bool
}

func (s *subscriber) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if ev.lifecycle() {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
		return
	}
	select {
	case s.ch <- ev:
	default:
		s.replaceOldestUpdate(ev)
	}
}

// replaceOldestUpdate makes room for ev by dropping the oldest queued update.
// Lifecycle events keep their place; ev is dropped when only they are queued.
// Must be called with s.mu held.
func (s *subscriber) replaceOldestUpdate(ev Event) {
	queued := make([]Event, 0, cap(s.ch))
drain:
	for {
		select {
		case e := <-s.ch:
			queued = append(queued, e)
		default:
			break drain
		}
	}

	for i, e := range queued {
		if !e.lifecycle() {
			queued = append(queued[:i], queued[i+1:]...)
			queued = append(queued, ev)
			break
		}
	}
	for _, e := range queued {
		s.ch <- e
	}
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// broker fans events out to subscribers.
type broker struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

func newBroker() *broker {
	return &broker{subs: make(map[int]*subscriber)}
}

func (b *broker) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	s := &subscriber{ch: make(chan Event, buffer), done: make(chan struct{})}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	return s.ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		s.close()
	}
}

func (b *broker) publish(ev Event) {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.send(ev)
	}
}
