// Package keylock provides mutual exclusion keyed by an arbitrary string.
// Holders of different keys never wait for each other.
package keylock

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync"
)

type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned unlock
	// function is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LocalLocker serializes holders of the same key inside one process.
type LocalLocker struct {
	// Every key owns a single-slot channel; sending takes the lock and
	// receiving releases it.
	slots *xsync.MapOf[string, chan struct{}]
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: xsync.NewMapOf[chan struct{}]()}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	slot, ok := l.slots.Load(key)
	if !ok {
		slot, _ = l.slots.LoadOrStore(key, make(chan struct{}, 1))
	}

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
