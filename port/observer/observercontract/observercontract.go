// Package observercontract holds the behavioural contract of observer.Subject implementations.
package observercontract

import (
	"context"
	"testing"

	"go.llib.dev/patterns/port/observer"
	"go.llib.dev/patterns/port/observer/observerstub"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"
)

// Subject describes what a consumer can expect from an observer.Subject implementation.
type Subject[T any] struct {
	MakeSubject  func(testing.TB) observer.Subject[T]
	MakeSnapshot func(testing.TB) T
	// MakeContext is optional, the default is context.Background.
	MakeContext func(testing.TB) context.Context
}

func (c Subject[T]) Test(t *testing.T) {
	c.Spec(testcase.NewSpec(t))
}

func (c Subject[T]) Benchmark(b *testing.B) {
	c.Spec(testcase.NewSpec(b))
}

func (c Subject[T]) String() string { return `Subject` }

func (c Subject[T]) makeContext(tb testing.TB) context.Context {
	if c.MakeContext == nil {
		return context.Background()
	}
	return c.MakeContext(tb)
}

func (c Subject[T]) Spec(s *testcase.Spec) {
	var (
		subject = testcase.Let(s, func(t *testcase.T) observer.Subject[T] {
			return c.MakeSubject(t)
		})
		ctx = testcase.Let(s, func(t *testcase.T) context.Context {
			return c.makeContext(t)
		})
		snapshot = testcase.Let(s, func(t *testcase.T) T {
			return c.MakeSnapshot(t)
		})
		log = testcase.Let(s, func(t *testcase.T) *observerstub.Log[T] {
			return &observerstub.Log[T]{}
		})
		observerA = testcase.Let(s, func(t *testcase.T) *observerstub.Recorder[T] {
			return &observerstub.Recorder[T]{Name: "A", Log: log.Get(t)}
		})
		observerB = testcase.Let(s, func(t *testcase.T) *observerstub.Recorder[T] {
			return &observerstub.Recorder[T]{Name: "B", Log: log.Get(t)}
		})
	)
	act := func(t *testcase.T) error {
		return subject.Get(t).Notify(ctx.Get(t), snapshot.Get(t))
	}

	s.When("no observer is registered", func(s *testcase.Spec) {
		s.Then("the notification round finishes without an error", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
		})
	})

	s.When("observers are registered", func(s *testcase.Spec) {
		s.Before(func(t *testcase.T) {
			assert.Must(t).NoError(subject.Get(t).Register(observerA.Get(t)))
			assert.Must(t).NoError(subject.Get(t).Register(observerB.Get(t)))
		})

		s.Then("each of them receives the snapshot exactly once", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			assert.Must(t).Equal([]T{snapshot.Get(t)}, observerA.Get(t).Snapshots())
			assert.Must(t).Equal([]T{snapshot.Get(t)}, observerB.Get(t).Snapshots())
		})

		s.Then("they are notified in registration order", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			assert.Must(t).Equal([]string{"A", "B"}, log.Get(t).Names())
		})

		s.Then("notifying with the same snapshot twice makes two full rounds", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			assert.Must(t).NoError(act(t))
			assert.Must(t).Equal([]string{"A", "B", "A", "B"}, log.Get(t).Names())
			assert.Must(t).Equal([]T{snapshot.Get(t), snapshot.Get(t)}, observerA.Get(t).Snapshots())
		})

		s.Then("consecutive rounds deliver the latest snapshot in the same order", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			next := c.MakeSnapshot(t)
			assert.Must(t).NoError(subject.Get(t).Notify(ctx.Get(t), next))

			calls := log.Get(t).Calls()
			assert.Must(t).Equal(4, len(calls))
			assert.Must(t).Equal([]string{"A", "B", "A", "B"}, log.Get(t).Names())
			assert.Must(t).Equal(next, calls[2].Snapshot)
			assert.Must(t).Equal(next, calls[3].Snapshot)
		})

		s.And("one of them is unregistered", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) {
				subject.Get(t).Unregister(observerA.Get(t))
			})

			s.Then("it no longer receives notifications", func(t *testcase.T) {
				assert.Must(t).NoError(act(t))
				assert.Must(t).Empty(observerA.Get(t).Snapshots())
				assert.Must(t).Equal([]string{"B"}, log.Get(t).Names())
			})
		})

		s.And("an observer that was never registered is unregistered", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) {
				subject.Get(t).Unregister(&observerstub.Recorder[T]{Name: "C", Log: log.Get(t)})
			})

			s.Then("it is a no-op", func(t *testcase.T) {
				assert.Must(t).NoError(act(t))
				assert.Must(t).Equal([]string{"A", "B"}, log.Get(t).Names())
			})
		})

		s.And("an observer unregisters itself during the round", func(s *testcase.Spec) {
			observerC := testcase.Let(s, func(t *testcase.T) *observerstub.Stub[T] {
				stub := &observerstub.Stub[T]{}
				stub.UpdateFunc = func(ctx context.Context, snapshot T) error {
					subject.Get(t).Unregister(stub)
					return nil
				}
				return stub
			})
			s.Before(func(t *testcase.T) {
				subject.Get(t).Unregister(observerB.Get(t))
				assert.Must(t).NoError(subject.Get(t).Register(observerC.Get(t)))
				assert.Must(t).NoError(subject.Get(t).Register(observerB.Get(t)))
			})

			s.Then("the ongoing round still reaches every observer", func(t *testcase.T) {
				assert.Must(t).NoError(act(t))
				assert.Must(t).Equal([]string{"A", "B"}, log.Get(t).Names())
			})
		})
	})

	s.When("the same observer is registered twice", func(s *testcase.Spec) {
		s.Before(func(t *testcase.T) {
			assert.Must(t).NoError(subject.Get(t).Register(observerA.Get(t)))
			assert.Must(t).NoError(subject.Get(t).Register(observerA.Get(t)))
		})

		s.Then("it receives two identical updates per round", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			assert.Must(t).Equal([]T{snapshot.Get(t), snapshot.Get(t)}, observerA.Get(t).Snapshots())
		})
	})

	s.When("the observer is registered then unregistered", func(s *testcase.Spec) {
		s.Before(func(t *testcase.T) {
			assert.Must(t).NoError(subject.Get(t).Register(observerA.Get(t)))
			subject.Get(t).Unregister(observerA.Get(t))
		})

		s.Then("it receives nothing", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			assert.Must(t).Empty(observerA.Get(t).Snapshots())
		})
	})

	s.When("a nil observer is registered", func(s *testcase.Spec) {
		s.Then("registration fails", func(t *testcase.T) {
			assert.Must(t).Error(subject.Get(t).Register(nil))
		})

		s.Then("a typed nil observer is rejected as well", func(t *testcase.T) {
			var rec *observerstub.Recorder[T]
			assert.Must(t).Error(subject.Get(t).Register(rec))
		})
	})
}
