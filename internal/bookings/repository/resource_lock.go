package repository

import "sync"

// ResourceLockSet hands out one mutex per resource id. Entries are reference
// counted and dropped once nobody holds or waits on them, so the set only
// grows with the number of resources under contention.
type ResourceLockSet struct {
	mu    sync.Mutex
	locks map[string]*resourceLock
}

type resourceLock struct {
	mu   sync.Mutex
	refs int
}

func NewResourceLockSet() *ResourceLockSet {
	return &ResourceLockSet{locks: make(map[string]*resourceLock)}
}

// Acquire blocks until the lock for resourceID is held and returns its
// release func. Callers never hold two resource locks at once.
func (s *ResourceLockSet) Acquire(resourceID string) (release func()) {
	s.mu.Lock()
	l, ok := s.locks[resourceID]
	if !ok {
		l = &resourceLock{}
		s.locks[resourceID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			s.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, resourceID)
			}
			s.mu.Unlock()
		})
	}
}

// Len reports how many resource locks are currently tracked.
func (s *ResourceLockSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
