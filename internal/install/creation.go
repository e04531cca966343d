package install

import (
	"context"
	"sync"
)

// Creation signals that the provider has acknowledged an instance. It is
// resolved exactly once and can be awaited any number of times.
type Creation struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewCreation returns a pending creation signal.
func NewCreation() *Creation {
	return &Creation{done: make(chan struct{})}
}

// Created returns a creation signal that is already resolved successfully,
// for instances that existed before they were handed to a monitor.
func Created() *Creation {
	c := NewCreation()
	c.Resolve(nil)
	return c
}

// Resolve records the outcome of the creation request. Later calls are ignored.
func (c *Creation) Resolve(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Done is closed once the creation outcome is known.
func (c *Creation) Done() <-chan struct{} {
	return c.done
}

// Err returns the creation error. It is only meaningful after Done is closed.
func (c *Creation) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until creation is resolved or ctx is done.
func (c *Creation) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
