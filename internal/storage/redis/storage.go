package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gameroom-go/internal/model"
	"github.com/mcoot/gameroom-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSummary(ctx context.Context, summary *model.RoomSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, summaryKey(summary.RoomID), data, s.cfg.SummaryTTL)
	pipe.SAdd(ctx, summaryIndexKey(), string(summary.RoomID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSummary(ctx context.Context, roomID model.RoomID) (*model.RoomSummary, error) {
	data, err := s.client.Get(ctx, summaryKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSummaryNotFound
		}
		return nil, err
	}

	var summary model.RoomSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Storage) ListSummaries(ctx context.Context) ([]*model.RoomSummary, error) {
	ids, err := s.client.SMembers(ctx, summaryIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.RoomSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.GetSummary(ctx, model.RoomID(id))
		if errors.Is(err, model.ErrSummaryNotFound) {
			// Summary expired but the index entry survived; self-heal
			_ = s.client.SRem(ctx, summaryIndexKey(), id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	// Most recently closed first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ClosedAt.After(summaries[j].ClosedAt)
	})
	return summaries, nil
}

func (s *Storage) DeleteSummary(ctx context.Context, roomID model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, summaryKey(roomID))
	pipe.SRem(ctx, summaryIndexKey(), string(roomID))
	_, err := pipe.Exec(ctx)
	return err
}
