package bus

import "time"

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// EventBus is a thread-safe, in-process pub/sub bus used to fan out agent and
// node lifecycle events.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() or by Wildcard.
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
// subscription order.
// - Error aggregation: handler errors are joined and returned from Publish.
// - Optional observability: metrics are collected only while observers are registered.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type()
	// and to wildcard subscribers.
	Publish(event Event) error
	// Subscribe registers a handler for eventType and returns a handle that
	// can be used to cancel later.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is a no-op.
	Unsubscribe(Subscription) error
	// Subscribers returns the number of active subscriptions.
	Subscribers() int

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of the publish counters.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64 `json:"published"`
	DeliveredHandlers uint64 `json:"delivered_handlers"`
	Errors            uint64 `json:"errors"`
	SubscribersActive uint64 `json:"subscribers_active"`
}
