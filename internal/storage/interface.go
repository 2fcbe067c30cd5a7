package storage

import (
	"context"

	"github.com/mcoot/autosnake/internal/model"
)

// Storage defines the interface for recording finished rounds. Running games
// are never persisted.
type Storage interface {
	// SaveResult records a finished round, replacing any earlier record for
	// the same game and round
	SaveResult(ctx context.Context, result *model.GameResult) error
	GetResult(ctx context.Context, gameID model.GameID, round int) (*model.GameResult, error)
	// ListResultsForGame returns every round of a game in round order
	ListResultsForGame(ctx context.Context, gameID model.GameID) ([]*model.GameResult, error)
	DeleteResultsForGame(ctx context.Context, gameID model.GameID) error

	// TopResults returns up to limit results by descending score
	TopResults(ctx context.Context, limit int) ([]*model.GameResult, error)
}
