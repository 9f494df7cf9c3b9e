package store

import "sync"

// Memory is an ephemeral, process-local Backend backed by a map,
// grounded on the teacher's typedb/memorydb.Database: a lock-guarded
// map of key to an owned copy of its value.
type Memory struct {
	mu     sync.RWMutex
	db     map[string][]byte
	closed bool
}

// NewMemory returns an empty in-memory Backend.
func NewMemory() *Memory {
	return &Memory{db: make(map[string][]byte)}
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}
	v, ok := m.db[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, v...), nil
}

func (m *Memory) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, errClosed
	}
	_, ok := m.db[string(key)]
	return ok, nil
}

func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.db[string(key)] = append([]byte{}, value...)
	return nil
}

func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	delete(m.db, string(key))
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.db = nil
	return nil
}

var errClosed = &backendClosedError{}

type backendClosedError struct{}

func (*backendClosedError) Error() string { return "store: backend closed" }
