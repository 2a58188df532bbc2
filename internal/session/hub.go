package session

import (
	"context"
	"sync"
)

// Hub hands out the single live Manager per candidate, rehydrating persisted
// sessions on first touch.
type Hub struct {
	mu       sync.Mutex
	managers map[string]*Manager
	deps     Deps
}

func NewHub(deps Deps) *Hub {
	return &Hub{
		managers: make(map[string]*Manager),
		deps:     deps,
	}
}

// Get returns the candidate's Manager, creating and rehydrating it if this
// is the first touch since process start. The Manager is cached only once
// rehydration succeeds, so a transient load failure never hides a persisted
// session behind a fresh one.
func (h *Hub) Get(ctx context.Context, candidateID string) (*Manager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if mgr, ok := h.managers[candidateID]; ok {
		return mgr, nil
	}

	persisted, err := h.deps.Store.Load(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	mgr := NewManager(candidateID, h.deps)
	if persisted != nil {
		mgr.rehydrate(ctx, persisted)
	}
	h.managers[candidateID] = mgr
	return mgr, nil
}

// Managers snapshots the live managers, for the archival retry sweep.
func (h *Hub) Managers() []*Manager {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Manager, 0, len(h.managers))
	for _, mgr := range h.managers {
		out = append(out, mgr)
	}
	return out
}
