package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the slot in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	score int
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return 0, ErrNotFound
	}
	return m.score, nil
}

func (m *MemoryStore) Save(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = score
	m.set = true
	return nil
}

func (m *MemoryStore) Close() error { return nil }
