package store

import (
	"context"
	"sync"
)

// keyLocks hands out one mutex per inventory key. Entries are dropped once
// no transaction holds or waits for them.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func (k *keyLocks) acquire(ctx context.Context, key string) error {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*keyLock)
	}
	l, ok := k.m[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.m[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.mu.Lock()
		k.unref(key, l)
		k.mu.Unlock()
		return ctx.Err()
	}
}

func (k *keyLocks) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l := k.m[key]
	<-l.ch
	k.unref(key, l)
}

func (k *keyLocks) unref(key string, l *keyLock) {
	l.refs--
	if l.refs == 0 {
		delete(k.m, key)
	}
}
