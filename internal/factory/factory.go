package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/autosnake/internal/dependencies/clock"
	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/services/session"
	"github.com/mcoot/autosnake/internal/storage"
	"github.com/mcoot/autosnake/internal/storage/memory"
	redisstorage "github.com/mcoot/autosnake/internal/storage/redis"
	"github.com/mcoot/autosnake/internal/stream"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Sessions   *session.Manager
	HubManager *stream.HubManager
	Publisher  *stream.Publisher
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SessionConfig controls how hosted games are driven.
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

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

	sessionCfg := cfg.SessionConfig
	if sessionCfg.PollInterval == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, sessionCfg session.Config, logger *slog.Logger) *App {
	hubManager := stream.NewHubManager(logger)
	publisher := stream.NewPublisher(hubManager, logger)
	sessions := session.NewManager(sessionCfg, store, publisher, clk, rnd, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Sessions:   sessions,
		HubManager: hubManager,
		Publisher:  publisher,
	}
}

// Close stops every game driver, disconnects stream subscribers and
// releases the storage backend
func (a *App) Close() error {
	a.Sessions.Close()
	a.HubManager.CloseAll()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
