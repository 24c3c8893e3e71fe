// Package keymutex provides mutual exclusion scoped to a key.
package keymutex

import "sync"

// KeyMutex serializes callers that lock the same key while callers on
// different keys proceed independently. The zero value is ready to use.
type KeyMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns the function releasing it.
func (km *KeyMutex[K]) Lock(key K) (unlock func()) {
	km.mu.Lock()
	if km.locks == nil {
		km.locks = make(map[K]*entry)
	}
	e, ok := km.locks[key]
	if !ok {
		e = &entry{}
		km.locks[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			km.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(km.locks, key)
			}
			km.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently locked or waited on.
func (km *KeyMutex[K]) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
