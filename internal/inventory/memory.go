package inventory

import (
	"context"
	"sync"
)

// Memory is a mutex-guarded Ledger for tests and local runs.
type Memory struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewMemory(initial map[string]int) *Memory {
	m := &Memory{stock: make(map[string]int, len(initial))}
	for id, n := range initial {
		m.stock[id] = n
	}
	return m
}

func (m *Memory) Reserve(_ context.Context, itemID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.stock[itemID]
	if !ok {
		return ErrItemNotFound
	}
	if cur < qty {
		return ErrInsufficientStock
	}
	m.stock[itemID] = cur - qty
	return nil
}

func (m *Memory) Release(_ context.Context, itemID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stock[itemID]; !ok {
		return ErrItemNotFound
	}
	m.stock[itemID] += qty
	return nil
}

// Stock reports the current level; second result is false for unknown
// items.
func (m *Memory) Stock(itemID string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.stock[itemID]
	return n, ok
}
