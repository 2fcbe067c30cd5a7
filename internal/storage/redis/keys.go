package redis

import (
	"fmt"

	"github.com/mcoot/autosnake/internal/model"
)

// Key prefix for all snake data
const keyPrefix = "autosnake"

// resultMember identifies a round inside indexes and the leaderboard
func resultMember(gameID model.GameID, round int) string {
	return fmt.Sprintf("%s:%d", gameID, round)
}

// resultKey returns the Redis key for a GameResult
func resultKey(member string) string {
	return fmt.Sprintf("%s:result:%s", keyPrefix, member)
}

// resultsForGameIndexKey returns the Redis key for the SET of result members for a game
func resultsForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:results_for_game:%s", keyPrefix, gameID)
}

// leaderboardKey returns the Redis key for the ZSET of result members by score
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
