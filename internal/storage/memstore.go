package storage

import (
	"fmt"
	"sync"

	"github.com/lbs-irtree/irtree/internal/types"
)

// MemStore is an in-memory PageStore used by unit tests and by any
// caller that doesn't need durability, avoiding the disk/buffer pool
// stack entirely.
type MemStore struct {
	mu     sync.RWMutex
	pages  map[types.PageID][]byte
	nextID types.PageID
	io     int64
}

func NewMemStore() *MemStore {
	return &MemStore{pages: make(map[types.PageID][]byte)}
}

func (m *MemStore) StoreNode(id types.PageID, data []byte) (types.PageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == types.NewPage {
		id = m.nextID
		m.nextID++
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.pages[id] = cp
	m.io++
	return id, nil
}

func (m *MemStore) LoadNode(id types.PageID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: page %d", ErrInvalidPage, id)
	}
	m.io++
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemStore) DeleteNode(id types.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pages, id)
	return nil
}

func (m *MemStore) GetIO() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.io
}
