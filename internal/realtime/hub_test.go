package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *eventRecorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func TestSubscribeBecomesActive(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(EntityComments, []EventType{EventInsert}, nil, func(Event) {})

	// The handle is acknowledged by the hub loop, not synchronously.
	assert.Eventually(t, func() bool {
		return sub.State() == StateActive
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSubscribeOnClosedHubErrors(t *testing.T) {
	hub := NewHub()
	hub.Close()

	sub := hub.Subscribe(EntityComments, []EventType{EventInsert}, nil, func(Event) {})
	assert.Equal(t, StateError, sub.State())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(EntityComments, []EventType{EventInsert}, nil, func(Event) {})
	require.Eventually(t, func() bool {
		return sub.State() == StateActive
	}, 3*time.Second, 10*time.Millisecond)

	sub.Unsubscribe()
	assert.Equal(t, StateInactive, sub.State())

	// Releasing again from any state is a no-op.
	sub.Unsubscribe()
	assert.Equal(t, StateInactive, sub.State())
}

func TestCloseErrorsRemainingSubscriptions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sub := hub.Subscribe(EntityMessages, []EventType{EventInsert}, nil, func(Event) {})
	require.Eventually(t, func() bool {
		return sub.State() == StateActive
	}, 3*time.Second, 10*time.Millisecond)

	hub.Close()

	assert.Eventually(t, func() bool {
		return sub.State() == StateError
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPublishDeliversInOrder(t *testing.T) {
	hub := newRunningHub(t)
	recorder := &eventRecorder{}

	sub := hub.Subscribe(EntityComments, []EventType{EventInsert, EventDelete}, nil, recorder.record)
	require.Eventually(t, func() bool {
		return sub.State() == StateActive
	}, 3*time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: "a"})
	hub.Publish(Event{Type: EventDelete, Entity: EntityComments, Row: "b"})
	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: "c"})

	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 3
	}, 3*time.Second, 10*time.Millisecond)

	events := recorder.snapshot()
	assert.Equal(t, "a", events[0].Row)
	assert.Equal(t, "b", events[1].Row)
	assert.Equal(t, "c", events[2].Row)
}

func TestDispatchHonorsTypeEntityAndFilter(t *testing.T) {
	hub := newRunningHub(t)
	recorder := &eventRecorder{}

	onlyEven := func(evt Event) bool {
		n, ok := evt.Row.(int)
		return ok && n%2 == 0
	}
	sub := hub.Subscribe(EntityComments, []EventType{EventInsert}, onlyEven, recorder.record)
	require.Eventually(t, func() bool {
		return sub.State() == StateActive
	}, 3*time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: 1})       // filtered out
	hub.Publish(Event{Type: EventUpdate, Entity: EntityComments, Row: 2})       // wrong type
	hub.Publish(Event{Type: EventInsert, Entity: EntityMessages, Row: 4})       // wrong entity
	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: 6})       // delivered
	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: "weird"}) // filter rejects non-int

	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 6, recorder.snapshot()[0].Row)
}

func TestUnsubscribedHandleStopsDelivering(t *testing.T) {
	hub := newRunningHub(t)
	recorder := &eventRecorder{}

	sub := hub.Subscribe(EntityComments, []EventType{EventInsert}, nil, recorder.record)
	require.Eventually(t, func() bool {
		return sub.State() == StateActive
	}, 3*time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: "before"})
	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	sub.Unsubscribe()
	hub.Publish(Event{Type: EventInsert, Entity: EntityComments, Row: "after"})

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, recorder.snapshot(), 1)
}
