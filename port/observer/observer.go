// Package observer defines the role interfaces of the observer pattern.
//
// A Subject keeps an ordered registry of Observers and hands every state change
// to each of them, one notification round at a time.
package observer

import (
	"context"
	"io"
)

// Observer can receive a snapshot of a Subject's state and react to it.
type Observer[T any] interface {
	// Update is called once per notification round with the latest snapshot.
	// Update should not retain ctx beyond the call.
	Update(ctx context.Context, snapshot T) error
}

// Func is an adapter to allow the use of ordinary functions as Observer.
type Func[T any] func(ctx context.Context, snapshot T) error

func (fn Func[T]) Update(ctx context.Context, snapshot T) error {
	return fn(ctx, snapshot)
}

// Registry is the registration side of a Subject.
type Registry[T any] interface {
	// Register appends the observer to the registry.
	// Registering the same observer twice makes it receive every notification twice.
	Register(Observer[T]) error
	// Unregister removes the observer from the registry.
	// Unregistering an observer that is not registered is a no-op.
	Unregister(Observer[T])
}

// Subscriber is implemented by registries that can hand out a non-owning handle
// for a single registry entry.
type Subscriber[T any] interface {
	Subscribe(Observer[T]) (Subscription, error)
}

// Subscription removes its registry entry when closed.
type Subscription interface {
	io.Closer
}

// Notifier runs a notification round with the given snapshot.
// A stateful Subject may also keep the snapshot as its current state before the round starts.
type Notifier[T any] interface {
	Notify(ctx context.Context, snapshot T) error
}

// Subject is the data holder that drives notifications towards its registered observers.
type Subject[T any] interface {
	Registry[T]
	Notifier[T]
}
