package observerstub

import (
	"context"
	"sync"
)

// Stub is an Observer test double where the behaviour can be injected with UpdateFunc.
type Stub[T any] struct {
	UpdateFunc func(ctx context.Context, snapshot T) error
}

func (s *Stub[T]) Update(ctx context.Context, snapshot T) error {
	if s.UpdateFunc == nil {
		return nil
	}
	return s.UpdateFunc(ctx, snapshot)
}

// Call is a single Update invocation captured by a Recorder.
type Call[T any] struct {
	// Observer is the name of the Recorder that received the call.
	Observer string
	Snapshot T
}

// Log is an ordered side channel shared between Recorders,
// so tests can assert the order in which observers were notified.
type Log[T any] struct {
	m     sync.Mutex
	calls []Call[T]
}

func (l *Log[T]) add(c Call[T]) {
	l.m.Lock()
	defer l.m.Unlock()
	l.calls = append(l.calls, c)
}

// Calls returns a copy of the captured calls in the order they happened.
func (l *Log[T]) Calls() []Call[T] {
	l.m.Lock()
	defer l.m.Unlock()
	return append([]Call[T]{}, l.calls...)
}

// Names returns the observer names in notification order.
func (l *Log[T]) Names() []string {
	var names []string
	for _, c := range l.Calls() {
		names = append(names, c.Observer)
	}
	return names
}

// Recorder is an Observer that records every received snapshot.
// When Log is set, calls are also appended to the shared Log.
type Recorder[T any] struct {
	Name string
	Log  *Log[T]
	// Err is returned from every Update call.
	Err error

	m         sync.Mutex
	snapshots []T
}

func (r *Recorder[T]) Update(ctx context.Context, snapshot T) error {
	r.m.Lock()
	r.snapshots = append(r.snapshots, snapshot)
	r.m.Unlock()
	if r.Log != nil {
		r.Log.add(Call[T]{Observer: r.Name, Snapshot: snapshot})
	}
	return r.Err
}

// Snapshots returns the received snapshots in the order they arrived.
func (r *Recorder[T]) Snapshots() []T {
	r.m.Lock()
	defer r.m.Unlock()
	return append([]T{}, r.snapshots...)
}
