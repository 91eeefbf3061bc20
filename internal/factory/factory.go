package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/gameroom-go/internal/dependencies/clock"
	"github.com/mcoot/gameroom-go/internal/dependencies/random"
	"github.com/mcoot/gameroom-go/internal/directory"
	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/gametype/relay"
	"github.com/mcoot/gameroom-go/internal/gametype/trivia"
	"github.com/mcoot/gameroom-go/internal/session"
	"github.com/mcoot/gameroom-go/internal/storage"
	"github.com/mcoot/gameroom-go/internal/storage/memory"
	redisstorage "github.com/mcoot/gameroom-go/internal/storage/redis"
	"github.com/mcoot/gameroom-go/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Player count limits for the built-in game types
const (
	TriviaMaxPlayers = 3
	RelayMaxPlayers  = 4
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Components
	Registry     *gametype.Registry
	Directory    *directory.Directory
	Fabric       *ws.Fabric
	Orchestrator *session.Orchestrator
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the room history backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	registry := gametype.NewRegistry()
	registry.Register("trivia", trivia.New, TriviaMaxPlayers)
	registry.Register("relay", relay.New, RelayMaxPlayers)

	dir := directory.New(registry, store, clk, rnd, logger)

	// The fabric is the orchestrator's sink, and the orchestrator is the
	// fabric's inbound handler; the handler side is wired second.
	fabric := ws.NewFabric(logger)
	orchestrator := session.NewOrchestrator(dir, fabric, logger)
	fabric.SetHandler(orchestrator)

	return &App{
		Storage:      store,
		Clock:        clk,
		Random:       rnd,
		Registry:     registry,
		Directory:    dir,
		Fabric:       fabric,
		Orchestrator: orchestrator,
	}
}
