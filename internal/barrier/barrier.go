// Package barrier implements the early-return barrier (§5, §9): an N=2
// rendezvous where one party trips it once size estimation has
// completed and the other waits before replying to the HTTP caller.
package barrier

import (
	"context"
	"sync"
)

type Barrier struct {
	ch   chan error
	once sync.Once
}

func New() *Barrier {
	return &Barrier{ch: make(chan error, 1)}
}

// Trip releases the barrier with err. Idempotent: only the first call
// has any effect.
func (b *Barrier) Trip(err error) {
	b.once.Do(func() { b.ch <- err })
}

// Wait blocks until Trip is called or ctx is done.
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case err := <-b.ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
