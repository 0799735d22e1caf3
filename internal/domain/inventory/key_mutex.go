package inventory

import (
	"sort"
	"sync"
)

// KeyMutex serializes mutating operations per position key. The database's
// optimistic version check is the hard guarantee; the key mutex turns
// same-key contention on one instance into waiting instead of retry storms.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyMutex creates a new KeyMutex
func NewKeyMutex() *KeyMutex {
	return &KeyMutex{
		locks: make(map[string]*keyLock),
	}
}

// Lock acquires the locks for the given keys in sorted order, so that two
// operations locking overlapping key sets (a transfer's source and
// destination) can never deadlock. The returned function releases them.
func (m *KeyMutex) Lock(keys ...string) func() {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	acquired := make([]*keyLock, 0, len(sorted))
	for _, k := range sorted {
		l := m.acquire(k)
		l.mu.Lock()
		acquired = append(acquired, l)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
		}
		for _, k := range sorted {
			m.release(k)
		}
	}
}

func (m *KeyMutex) acquire(key string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	return l
}

func (m *KeyMutex) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
