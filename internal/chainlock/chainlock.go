// Package chainlock provides a mutex whose Lock returns itself so call
// sites can chain defer Lock().Unlock() the way the teacher's replication
// and snapper packages do.
package chainlock

import "sync"

type L struct {
	mu sync.Mutex
}

func New() *L { return &L{} }

func (l *L) Lock() *L {
	l.mu.Lock()
	return l
}

func (l *L) Unlock() {
	l.mu.Unlock()
}

// HoldWhile runs f with the lock held.
func (l *L) HoldWhile(f func()) {
	defer l.Lock().Unlock()
	f()
}
