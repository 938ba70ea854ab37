// Package notifyhub implements a synchronous, in-process notification hub.
//
// A Hub keeps an ordered registry of observers and fans every snapshot out to all of them
// in registration order, before Notify returns.
// The Hub only references observers, it never owns them.
// Unregister an observer, or Close its Registration, once it should no longer be notified.
package notifyhub

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	uuid "github.com/satori/go.uuid"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/frameless/pkg/slicekit"
	"go.llib.dev/patterns/port/observer"
)

const (
	ErrNilObserver    errorkit.Error = "ErrNilObserver"
	ErrObserverFailed errorkit.Error = "ErrObserverFailed"
	ErrObserverPanic  errorkit.Error = "ErrObserverPanic"
)

// Policy tells the Hub what to do when an observer fails during a notification round.
type Policy string

const (
	// BestEffort notifies every observer, even if some of them fail.
	// Failures are logged and merged into the error returned from Notify.
	BestEffort Policy = "best-effort"
	// FailFast aborts the round at the first failing observer and returns its error.
	FailFast Policy = "fail-fast"
)

// Hub is safe for concurrent use.
// The zero value is ready to use with the BestEffort policy.
type Hub[T any] struct {
	// Policy is BestEffort by default.
	Policy Policy
	// Logger is used to report observer failures under BestEffort.
	// When nil, the package level logger is used.
	Logger *logging.Logger

	m        sync.RWMutex
	registry []entry[T]
}

type entry[T any] struct {
	id       uuid.UUID
	observer observer.Observer[T]
}

var (
	_ observer.Subject[int]    = &Hub[int]{}
	_ observer.Subscriber[int] = &Hub[int]{}
)

func (h *Hub[T]) Register(o observer.Observer[T]) error {
	_, err := h.add(o)
	return err
}

// Subscribe registers the observer and returns a handle that removes only this registry entry.
func (h *Hub[T]) Subscribe(o observer.Observer[T]) (observer.Subscription, error) {
	id, err := h.add(o)
	if err != nil {
		return nil, err
	}
	return &Registration{ID: id, remove: func() { h.removeByID(id) }}, nil
}

func (h *Hub[T]) add(o observer.Observer[T]) (uuid.UUID, error) {
	if isNil(o) {
		return uuid.Nil, ErrNilObserver
	}
	id := uuid.NewV4()
	h.m.Lock()
	defer h.m.Unlock()
	h.registry = append(h.registry, entry[T]{id: id, observer: o})
	return id, nil
}

// Unregister removes every registry entry of the observer.
// Observers are matched by identity, so observers with a non comparable dynamic type never match;
// use Subscribe for those.
func (h *Hub[T]) Unregister(o observer.Observer[T]) {
	if isNil(o) {
		return
	}
	h.m.Lock()
	defer h.m.Unlock()
	h.registry = slicekit.Filter(h.registry, func(e entry[T]) bool {
		return !sameObserver(e.observer, o)
	})
}

func (h *Hub[T]) removeByID(id uuid.UUID) {
	h.m.Lock()
	defer h.m.Unlock()
	h.registry = slicekit.Filter(h.registry, func(e entry[T]) bool {
		return !uuid.Equal(e.id, id)
	})
}

// Len returns the number of registry entries.
func (h *Hub[T]) Len() int {
	h.m.RLock()
	defer h.m.RUnlock()
	return len(h.registry)
}

// Notify runs a notification round with the given snapshot.
//
// The registry is copied before the round starts,
// so registry changes made by observers during the round take effect from the next round.
// A cancelled context is only checked before the round starts.
func (h *Hub[T]) Notify(ctx context.Context, snapshot T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	for i, e := range h.entries() {
		err := h.update(ctx, e.observer, snapshot)
		if err == nil {
			continue
		}
		err = ErrObserverFailed.Wrap(err)
		if h.getPolicy() == FailFast {
			return err
		}
		h.logError(ctx, "observer failed during notification round",
			logging.Field("observer_index", i),
			logging.Field("observer_type", fmt.Sprintf("%T", e.observer)),
			logging.ErrField(err))
		errs = append(errs, err)
	}
	return errorkit.Merge(errs...)
}

func (h *Hub[T]) entries() []entry[T] {
	h.m.RLock()
	defer h.m.RUnlock()
	return slicekit.Clone(h.registry)
}

func (h *Hub[T]) update(ctx context.Context, o observer.Observer[T], snapshot T) (rErr error) {
	defer func() {
		if r := recover(); r != nil {
			rErr = ErrObserverPanic.F("%v", r)
		}
	}()
	return o.Update(ctx, snapshot)
}

func (h *Hub[T]) getPolicy() Policy {
	if h.Policy == "" {
		return BestEffort
	}
	return h.Policy
}

func (h *Hub[T]) logError(ctx context.Context, msg string, ds ...logging.Detail) {
	if h.Logger != nil {
		h.Logger.Error(ctx, msg, ds...)
		return
	}
	logger.Error(ctx, msg, ds...)
}

// Registration is a non-owning handle to a single registry entry.
type Registration struct {
	ID uuid.UUID

	once   sync.Once
	remove func()
}

// Close removes the registry entry. Calling Close more than once is a no-op.
func (r *Registration) Close() error {
	r.once.Do(r.remove)
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func sameObserver[T any](a, b observer.Observer[T]) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	// a comparable struct can still hold a non comparable value in an interface field
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
