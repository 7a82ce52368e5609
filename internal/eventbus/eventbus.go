// Package eventbus carries contact state changes and send outcomes from
// the dispatch loop to whoever wants to watch them (progress output, the
// report API) without coupling the two sides.
package eventbus

// Event is any value published on the bus.
type Event any

// EventBus is the publish side plus subscription management.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default untyped bus. Typed listeners filter on the event's
// dynamic type.
type Bus struct {
	*TypedBus[Event]
}

// New creates a ready-to-use Bus.
func New() *Bus { return &Bus{NewTyped[Event]()} }
