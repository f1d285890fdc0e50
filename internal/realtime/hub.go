package realtime

import (
	"log"
	"sync"
)

// Hub is the in-process change feed. Store mutations publish events into it
// and per-view subscriptions receive the ones matching their entity and
// filter, in the order the changes were published.
type Hub struct {
	register   chan *Subscription
	unregister chan *Subscription
	events     chan Event
	done       chan struct{}

	// Subscriptions keyed by entity name.
	mu   sync.RWMutex
	subs map[string]map[*Subscription]bool

	closeOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		subs:       make(map[string]map[*Subscription]bool),
	}
}

// Run starts the hub's processing loop. Events are dispatched one at a
// time, so subscribers observe changes in publish order.
func (h *Hub) Run() {
	log.Println("Realtime hub started.")
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if _, ok := h.subs[sub.entity]; !ok {
				h.subs[sub.entity] = make(map[*Subscription]bool)
			}
			h.subs[sub.entity][sub] = true
			h.mu.Unlock()
			// Server acknowledgment: the subscription is live.
			sub.setState(StateActive)

		case sub := <-h.unregister:
			h.mu.Lock()
			if entitySubs, ok := h.subs[sub.entity]; ok {
				delete(entitySubs, sub)
				if len(entitySubs) == 0 {
					delete(h.subs, sub.entity)
				}
			}
			h.mu.Unlock()

		case evt := <-h.events:
			h.mu.RLock()
			for sub := range h.subs[evt.Entity] {
				sub.dispatch(evt)
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, entitySubs := range h.subs {
				for sub := range entitySubs {
					sub.setState(StateError)
				}
			}
			h.subs = make(map[string]map[*Subscription]bool)
			h.mu.Unlock()
			log.Println("Realtime hub stopped.")
			return
		}
	}
}

// Subscribe registers interest in change events for an entity. The handle
// starts in the subscribing state and becomes active once the hub
// acknowledges it. deliver is invoked from the hub loop; subscribers that
// need their own scheduling should hand the event off immediately.
func (h *Hub) Subscribe(entity string, types []EventType, filter Filter, deliver func(Event)) *Subscription {
	typeSet := make(map[EventType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	sub := &Subscription{
		hub:     h,
		entity:  entity,
		types:   typeSet,
		filter:  filter,
		deliver: deliver,
		state:   StateSubscribing,
	}

	select {
	case h.register <- sub:
	case <-h.done:
		sub.setState(StateError)
	}
	return sub
}

// Publish emits a change event to all matching subscriptions.
func (h *Hub) Publish(evt Event) {
	select {
	case h.events <- evt:
	case <-h.done:
		log.Printf("Realtime hub closed, dropping %s event for %s", evt.Type, evt.Entity)
	}
}

// Close shuts the hub down and errors out all remaining subscriptions.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) remove(sub *Subscription) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}
