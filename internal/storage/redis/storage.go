package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/storage"
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

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	member := resultMember(result.GameID, result.Round)
	indexKey := resultsForGameIndexKey(result.GameID)

	// Use pipeline for atomic save + index + leaderboard update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, resultKey(member), data, s.cfg.ResultTTL)
	pipe.SAdd(ctx, indexKey, member)
	if s.cfg.ResultTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.ResultTTL) // Keep index TTL in sync
	}
	pipe.ZAdd(ctx, leaderboardKey(), redis.Z{Score: float64(result.Score), Member: member})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetResult(ctx context.Context, gameID model.GameID, round int) (*model.GameResult, error) {
	data, err := s.client.Get(ctx, resultKey(resultMember(gameID, round))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrResultNotFound
		}
		return nil, err
	}

	var result model.GameResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Storage) ListResultsForGame(ctx context.Context, gameID model.GameID) ([]*model.GameResult, error) {
	members, err := s.client.SMembers(ctx, resultsForGameIndexKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	results, _, err := s.fetchResults(ctx, members)
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Round < results[j].Round
	})
	return results, nil
}

func (s *Storage) DeleteResultsForGame(ctx context.Context, gameID model.GameID) error {
	indexKey := resultsForGameIndexKey(gameID)

	members, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	if len(members) == 0 {
		return nil
	}

	// Delete all results, their leaderboard entries and the index in one pipeline
	pipe := s.client.Pipeline()
	zMembers := make([]interface{}, len(members))
	for i, member := range members {
		pipe.Del(ctx, resultKey(member))
		zMembers[i] = member
	}
	pipe.ZRem(ctx, leaderboardKey(), zMembers...)
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) TopResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	if limit <= 0 {
		return []*model.GameResult{}, nil
	}

	members, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	results, expired, err := s.fetchResults(ctx, members)
	if err != nil {
		return nil, err
	}

	// Drop leaderboard entries whose result has expired
	if len(expired) > 0 {
		stale := make([]interface{}, len(expired))
		for i, member := range expired {
			stale[i] = member
		}
		if err := s.client.ZRem(ctx, leaderboardKey(), stale...).Err(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// fetchResults loads results with MGET in member order, reporting members
// whose key no longer exists
func (s *Storage) fetchResults(ctx context.Context, members []string) ([]*model.GameResult, []string, error) {
	if len(members) == 0 {
		return []*model.GameResult{}, nil, nil
	}

	keys := make([]string, len(members))
	for i, member := range members {
		keys[i] = resultKey(member)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, err
	}

	results := make([]*model.GameResult, 0, len(values))
	var expired []string
	for i, val := range values {
		if val == nil {
			expired = append(expired, members[i])
			continue
		}
		var result model.GameResult
		if err := json.Unmarshal([]byte(val.(string)), &result); err != nil {
			continue // Skip invalid data
		}
		results = append(results, &result)
	}
	return results, expired, nil
}
