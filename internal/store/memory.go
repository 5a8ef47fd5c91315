package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
)

// Memory keeps exhibitions in process. Callers always receive copies.
type Memory struct {
	mutations

	mu   sync.RWMutex
	docs map[string]*exhibition.Exhibition
}

// NewMemory creates an empty in-memory adapter.
func NewMemory(schema *exhibition.Schema, logger *zap.Logger) *Memory {
	m := &Memory{docs: make(map[string]*exhibition.Exhibition)}
	m.mutations = newMutations(schema, logger, m.update)
	return m
}

func (m *Memory) Load(ctx context.Context, eventID string) (*exhibition.Exhibition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ex, ok := m.docs[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	return ex.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, ex *exhibition.Exhibition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(ex.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[ex.ID] = ex.Clone()
	return nil
}

func (m *Memory) update(ctx context.Context, eventID string, fn func(*exhibition.Exhibition) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[eventID]
	if !ok {
		return ErrEventNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return err
	}
	m.docs[eventID] = next
	return nil
}

func (m *Memory) Close() error { return nil }
