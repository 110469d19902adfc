package events

import (
	"reflect"
	"sync"
)

// EventHandler defines a function type where its input type is the generic type. A non-nil error returned by a
// handler stops the publishing of the event and is returned to the publisher.
type EventHandler[T any] func(T) error

// globalEventHandlers describes a mapping of event types to EventHandler objects. These callbacks are called
// any time any EventEmitter publishes an event of that type.
var globalEventHandlers map[string][]any

// globalEventHandlersLock is a lock that provides thread synchronization when accessing globalEventHandlers. This
// helps in avoiding concurrent access panics.
var globalEventHandlersLock sync.Mutex

// SubscribeAny adds an EventHandler to the list of global EventHandler objects for this a given event data type.
// When an event is published, the callback will be triggered with the event data.
// Note: An EventHandler subscribed here will remain throughout program execution. Objects which should be freed from
// memory should not use this method to avoid memory leaks.
func SubscribeAny[T any](callback EventHandler[T]) {
	// Reflect on a nil object to get the generic type.
	eventType := reflect.TypeOf((*T)(nil)).Elem()

	// Acquire a thread lock for the next few operations to avoid concurrent access panics.
	globalEventHandlersLock.Lock()
	defer globalEventHandlersLock.Unlock()

	// If our global event handlers are nil, instantiate them.
	if globalEventHandlers == nil {
		globalEventHandlers = make(map[string][]any, 0)
	}

	// Add our callback to the event handlers list for events of this type.
	globalEventHandlers[eventType.String()] = append(globalEventHandlers[eventType.String()], callback)
}

// EventEmitter describes a provider which can subscribe EventHandler methods for callback when the event type (generic)
// is published. It additionally provides methods for publishing events.
type EventEmitter[T any] struct {
	// subscriptions defines the EventHandler methods which should be invoked when a new event is published to this
	// emitter.
	subscriptions []EventHandler[T]

	// subscriptionsLock provides thread synchronization when accessing subscriptions.
	subscriptionsLock sync.Mutex
}

// Publish emits the provided event by calling every EventHandler subscribed, followed by every global EventHandler
// subscribed for the event type.
// Returns the first error returned by a handler, in which case the remaining handlers are not called.
func (e *EventEmitter[T]) Publish(event T) error {
	// Take a snapshot of our subscriptions so handlers may subscribe without deadlocking.
	e.subscriptionsLock.Lock()
	subscriptions := append([]EventHandler[T](nil), e.subscriptions...)
	e.subscriptionsLock.Unlock()

	// Call every subscribed EventHandler
	for _, subscription := range subscriptions {
		if err := subscription(event); err != nil {
			return err
		}
	}

	// Determine the event type
	eventType := reflect.TypeOf((*T)(nil)).Elem()

	// Acquire a thread lock when fetching our event handlers to avoid concurrent access panics.
	globalEventHandlersLock.Lock()
	callbacks := globalEventHandlers[eventType.String()]
	globalEventHandlersLock.Unlock()

	// Call all relevant event handlers.
	for i := 0; i < len(callbacks); i++ {
		callback := callbacks[i].(EventHandler[T])
		if err := callback(event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe adds an EventHandler to the list of subscribed EventHandler objects for this emitter. When an event is
// published, the callback will be triggered with the event data.
func (e *EventEmitter[T]) Subscribe(callback EventHandler[T]) {
	e.subscriptionsLock.Lock()
	defer e.subscriptionsLock.Unlock()
	e.subscriptions = append(e.subscriptions, callback)
}
