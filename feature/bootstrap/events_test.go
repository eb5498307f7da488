package bootstrap

import (
	"context"
	"testing"

	"catalog-bootstrapper/core/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_SlowSubscriberKeepsNewestUpdate(t *testing.T) {
	b := newBroker()
	events, cancel := b.subscribe(2)

	snapshot := func(p float64) *status.Snapshot {
		snap := status.NewAggregator().SetProgress(status.Items, p)
		return &snap
	}

	b.publish(Event{Type: EventStatusUpdate, Status: snapshot(0.25)})
	b.publish(Event{Type: DoneEvent(status.Shapes), Area: status.Shapes})
	b.publish(Event{Type: EventStatusUpdate, Status: snapshot(0.5)})
	b.publish(Event{Type: EventStatusUpdate, Status: snapshot(1)})
	cancel()

	got := collect(events)
	require.Len(t, got, 2)
	assert.Equal(t, DoneEvent(status.Shapes), got[0].Type)
	assert.Equal(t, EventStatusUpdate, got[1].Type)
	assert.Equal(t, 1.0, got[1].Status.Area(status.Items).Progress)
}

func TestBroker_UpdateDroppedWhenOnlyLifecycleQueued(t *testing.T) {
	b := newBroker()
	events, cancel := b.subscribe(1)

	b.publish(Event{Type: DoneEvent(status.Grids), Area: status.Grids})
	b.publish(Event{Type: UpdateEvent(status.Items), Area: status.Items, Message: "Chair: added"})
	cancel()

	got := collect(events)
	require.Len(t, got, 1)
	assert.Equal(t, DoneEvent(status.Grids), got[0].Type)
}

func TestStart_DoneCarriesFinalStatus(t *testing.T) {
	f := newFakeAPI()
	b := newTestBootstrapper(f, Config{})

	events, cancel := b.Subscribe(4096)
	require.NoError(t, b.Start(context.Background()))
	cancel()

	var done *Event
	for _, ev := range collect(events) {
		if ev.Type == EventDone {
			ev := ev
			done = &ev
		}
	}
	require.NotNil(t, done)
	require.NotNil(t, done.Status)
	assert.Equal(t, 1.0, done.Status.Area(status.Languages).Progress)
}
