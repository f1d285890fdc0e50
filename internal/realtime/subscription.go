package realtime

import "sync"

// SubscriptionState is the lifecycle state of a change-feed subscription.
type SubscriptionState string

const (
	StateInactive    SubscriptionState = "inactive"
	StateSubscribing SubscriptionState = "subscribing"
	StateActive      SubscriptionState = "active"
	StateError       SubscriptionState = "error"
)

// Subscription is the handle returned by Hub.Subscribe. It must be released
// with Unsubscribe on every exit path of the owning view, including error
// paths.
type Subscription struct {
	hub     *Hub
	entity  string
	types   map[EventType]bool
	filter  Filter
	deliver func(Event)

	mu    sync.Mutex
	state SubscriptionState
}

// State returns the current lifecycle state.
func (s *Subscription) State() SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Unsubscribe releases the handle. Safe to call from any state and more
// than once.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.state == StateInactive {
		s.mu.Unlock()
		return
	}
	s.state = StateInactive
	s.mu.Unlock()

	s.hub.remove(s)
}

func (s *Subscription) setState(state SubscriptionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// dispatch forwards an applicable event to the subscriber. Only active
// subscriptions deliver; a handle that is being torn down drops events.
func (s *Subscription) dispatch(evt Event) {
	s.mu.Lock()
	active := s.state == StateActive
	s.mu.Unlock()
	if !active {
		return
	}
	if !s.types[evt.Type] {
		return
	}
	if s.filter != nil && !s.filter(evt) {
		return
	}
	s.deliver(evt)
}
