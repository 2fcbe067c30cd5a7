package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSnapshot EventType = "snapshot" // A move happened
	EventGameOver EventType = "game-over"
	EventVictory  EventType = "victory"
	EventReset    EventType = "reset"
	EventDeleted  EventType = "deleted"
)

// Event is published to stream subscribers of a game
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id"`
	Round     int       `json:"round"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
}
