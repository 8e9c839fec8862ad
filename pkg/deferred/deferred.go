// Package deferred provides a one-shot value that is set exactly once and can be
// awaited by a consumer while other readers poll it without blocking.
//
//	v := deferred.New[string]()
//	go func() { v.Set("ready") }()
//	s, err := v.Wait(ctx)
package deferred

import (
	"context"
	"sync"
)

// Value is a write-once container. The zero value is not usable; use New.
type Value[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
}

// New returns an unset Value.
func New[T any]() *Value[T] {
	return &Value[T]{done: make(chan struct{})}
}

// Resolved returns a Value that is already set to v.
func Resolved[T any](v T) *Value[T] {
	d := New[T]()
	d.Set(v)
	return d
}

// Set stores v and wakes every waiter. Only the first call has an effect;
// it reports whether this call was the one that set the value.
func (d *Value[T]) Set(v T) bool {
	set := false
	d.once.Do(func() {
		d.val = v
		set = true
		close(d.done)
	})
	return set
}

// Wait blocks until the value is set or ctx is done.
func (d *Value[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Ready reports whether the value has been set.
func (d *Value[T]) Ready() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Peek returns the value and true if it is set, the zero value and false otherwise.
func (d *Value[T]) Peek() (T, bool) {
	if d.Ready() {
		return d.val, true
	}
	var zero T
	return zero, false
}

// Done is closed once the value is set.
func (d *Value[T]) Done() <-chan struct{} {
	return d.done
}
