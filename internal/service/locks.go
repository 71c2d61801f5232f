package service

import (
	"sync"

	"github.com/google/uuid"
)

// EmployeeLocks serialises store writes per employee. Entries are removed
// once no goroutine holds or waits for them.
type EmployeeLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*employeeLock
}

type employeeLock struct {
	mu   sync.Mutex
	refs int
}

func NewEmployeeLocks() *EmployeeLocks {
	return &EmployeeLocks{locks: make(map[uuid.UUID]*employeeLock)}
}

// Lock blocks until the employee's lock is held and returns its release func
func (l *EmployeeLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &employeeLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *EmployeeLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
