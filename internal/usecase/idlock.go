package usecase

import "sync"

// keyedMutex serializes the read-modify-write sequences (update, delete)
// per entity id. Without it, two concurrent updates on the same row can
// both commit while one of the freshly saved files ends up orphaned,
// because the losing update's row mutation still nominally succeeds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int]*refLock)}
}

// lock blocks until the id is free and returns the matching unlock func.
func (k *keyedMutex) lock(id int) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
