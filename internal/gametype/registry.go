package gametype

import (
	"sort"
	"sync"

	"github.com/mcoot/gameroom-go/internal/model"
)

// Registration holds the capability set bound to a game type id
type Registration struct {
	Factory    Factory
	MaxPlayers int
}

// Registry maps game type ids to their registrations. Registration
// happens at process startup; resolution happens per request.
type Registry struct {
	mu      sync.RWMutex
	entries map[model.GameTypeID]Registration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[model.GameTypeID]Registration),
	}
}

// Register binds a game type id to a factory and max player count.
// Re-registering an id overwrites the previous registration.
func (r *Registry) Register(id model.GameTypeID, factory Factory, maxPlayers int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Registration{
		Factory:    factory,
		MaxPlayers: maxPlayers,
	}
}

// Resolve returns the registration for a game type id
func (r *Registry) Resolve(id model.GameTypeID) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, model.ErrUnknownGameType
	}
	return reg, nil
}

// List returns all registered game type ids, sorted
func (r *Registry) List() []model.GameTypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]model.GameTypeID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
