package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	results map[resultKey]*model.GameResult
}

type resultKey struct {
	gameID model.GameID
	round  int
}

// member mirrors the Redis leaderboard member so tie ordering matches
func (k resultKey) member() string {
	return fmt.Sprintf("%s:%d", k.gameID, k.round)
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		results: make(map[resultKey]*model.GameResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *result
	s.results[resultKey{gameID: result.GameID, round: result.Round}] = &stored
	return nil
}

func (s *Storage) GetResult(ctx context.Context, gameID model.GameID, round int) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[resultKey{gameID: gameID, round: round}]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	out := *result
	return &out, nil
}

func (s *Storage) ListResultsForGame(ctx context.Context, gameID model.GameID) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]*model.GameResult, 0)
	for key, result := range s.results {
		if key.gameID == gameID {
			out := *result
			results = append(results, &out)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Round < results[j].Round
	})
	return results, nil
}

func (s *Storage) DeleteResultsForGame(ctx context.Context, gameID model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.results {
		if key.gameID == gameID {
			delete(s.results, key)
		}
	}
	return nil
}

func (s *Storage) TopResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return []*model.GameResult{}, nil
	}

	keys := make([]resultKey, 0, len(s.results))
	for key := range s.results {
		keys = append(keys, key)
	}
	// Same order as ZREVRANGE: score descending, then member descending
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.results[keys[i]], s.results[keys[j]]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return keys[i].member() > keys[j].member()
	})

	if len(keys) > limit {
		keys = keys[:limit]
	}
	results := make([]*model.GameResult, len(keys))
	for i, key := range keys {
		out := *s.results[key]
		results[i] = &out
	}
	return results, nil
}
