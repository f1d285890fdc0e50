package realtime

// EventType is the kind of row change a subscription can observe.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Entity names for the change feed. They mirror the store collections.
const (
	EntityProjectMatches = "project_matches"
	EntityDirectMatches  = "direct_matches"
	EntityFriendRequests = "friend_requests"
	EntityComments       = "comments"
	EntityMessages       = "messages"
)

// Event is a single change notification: a row was inserted, updated or
// deleted in the backing store, delivered outside the request/response
// cycle that caused it.
type Event struct {
	Type   EventType
	Entity string
	Row    interface{}
}

// Filter decides whether an event applies to a subscription. Filters are
// conjunctions of equality checks over the row, expressed as predicates.
type Filter func(Event) bool
