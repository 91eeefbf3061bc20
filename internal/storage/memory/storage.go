package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/gameroom-go/internal/model"
	"github.com/mcoot/gameroom-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu        sync.RWMutex
	summaries map[model.RoomID]*model.RoomSummary
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		summaries: make(map[model.RoomID]*model.RoomSummary),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSummary(ctx context.Context, summary *model.RoomSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.RoomID] = summary
	return nil
}

func (s *Storage) GetSummary(ctx context.Context, roomID model.RoomID) (*model.RoomSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[roomID]
	if !ok {
		return nil, model.ErrSummaryNotFound
	}
	return summary, nil
}

func (s *Storage) ListSummaries(ctx context.Context) ([]*model.RoomSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]*model.RoomSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		summaries = append(summaries, summary)
	}
	// Most recently closed first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ClosedAt.After(summaries[j].ClosedAt)
	})
	return summaries, nil
}

func (s *Storage) DeleteSummary(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.summaries, roomID)
	return nil
}
