package stream

import (
	"log/slog"

	"github.com/mcoot/autosnake/internal/model"
)

// Publisher delivers game events to the hub of their game
type Publisher struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(hubs *HubManager, logger *slog.Logger) *Publisher {
	return &Publisher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "stream-publisher")),
	}
}

// Publish broadcasts event if anyone is subscribed to its game
func (p *Publisher) Publish(event model.Event) {
	hub := p.hubs.GetHub(event.GameID)
	if hub == nil {
		return
	}

	message, err := NewMessage(event)
	if err != nil {
		p.logger.Error("failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(message)
}

// Close disconnects every subscriber of a game
func (p *Publisher) Close(gameID model.GameID) {
	p.hubs.RemoveHub(gameID)
}
