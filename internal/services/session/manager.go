package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/autosnake/internal/dependencies/clock"
	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/game"
	"github.com/mcoot/autosnake/internal/storage"
)

const (
	// GameIDLength is the length of generated game IDs
	GameIDLength = 12
	// GameIDAlphabet is the characters used in game IDs
	GameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// ControlTokenLength is the length of generated control tokens
	ControlTokenLength = 32
	// ControlTokenAlphabet is the characters used in control tokens
	ControlTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxIDAttempts = 10
)

// Config holds session manager settings
type Config struct {
	// PollInterval is how often each game's driver calls Step. Zero disables
	// the drivers so that callers step games themselves.
	PollInterval time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: 20 * time.Millisecond,
	}
}

// Publisher receives the events of every hosted game
type Publisher interface {
	Publish(event model.Event)
	// Close disconnects every subscriber of a game
	Close(gameID model.GameID)
}

// CreateOptions are the per-game settings chosen by the creator
type CreateOptions struct {
	GridSize     int
	Autopilot    bool
	Strategy     string
	TickInterval time.Duration
	// Seed makes food placement and autopilot jitter reproducible
	Seed *uint64
}

type session struct {
	mu        sync.Mutex
	id        model.GameID
	token     string
	engine    *game.Engine
	round     int
	recorded  bool
	createdAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func (s *session) info() *model.GameInfo {
	return &model.GameInfo{
		ID:        s.id,
		Round:     s.round,
		CreatedAt: s.createdAt,
		Snapshot:  s.engine.Snapshot(),
	}
}

// Manager hosts independent games, drives their ticks and records finished
// rounds. Each engine is only touched while holding its session's lock.
type Manager struct {
	cfg       Config
	storage   storage.Storage
	publisher Publisher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[model.GameID]*session
	wg       sync.WaitGroup
}

// NewManager creates a new session Manager
func NewManager(
	cfg Config,
	storage storage.Storage,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		cfg:       cfg,
		storage:   storage,
		publisher: publisher,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "session")),
		sessions:  make(map[model.GameID]*session),
	}
}

// Create starts a new game and returns it along with its control token
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*model.GameInfo, string, error) {
	cfg := game.DefaultConfig()
	if opts.GridSize != 0 {
		cfg.GridSize = opts.GridSize
	}
	if opts.Strategy != "" {
		cfg.Strategy = opts.Strategy
	}
	if opts.TickInterval != 0 {
		cfg.TickInterval = opts.TickInterval
	}
	cfg.Autopilot = opts.Autopilot

	rnd := m.random
	if opts.Seed != nil {
		rnd = random.NewSeeded(*opts.Seed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate unique game ID
	var id model.GameID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return nil, "", errors.New("could not allocate a unique game id")
		}
		id = model.GameID(m.random.String(GameIDLength, GameIDAlphabet))
		if _, exists := m.sessions[id]; !exists {
			break
		}
	}
	token := m.random.String(ControlTokenLength, ControlTokenAlphabet)

	engine, err := game.New(cfg, m.clock, rnd, m.logger.With(slog.String("game_id", string(id))))
	if err != nil {
		return nil, "", err
	}

	s := &session{
		id:        id,
		token:     token,
		engine:    engine,
		createdAt: m.clock.Now(),
		cancel:    func() {},
		done:      make(chan struct{}),
	}
	m.sessions[id] = s

	if m.cfg.PollInterval > 0 {
		driverCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		m.wg.Add(1)
		go m.drive(driverCtx, s)
	} else {
		close(s.done)
	}

	m.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.Int("grid_size", cfg.GridSize),
		slog.Bool("autopilot", cfg.Autopilot),
		slog.String("strategy", cfg.Strategy),
		slog.Bool("seeded", opts.Seed != nil),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info(), token, nil
}

// Get returns the current state of a game
func (m *Manager) Get(ctx context.Context, id model.GameID) (*model.GameInfo, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info(), nil
}

// CurrentEvent returns a snapshot event describing the game as it is now,
// for subscribers that join mid-round
func (m *Manager) CurrentEvent(ctx context.Context, id model.GameID) (model.Event, error) {
	s, err := m.session(id)
	if err != nil {
		return model.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.event(s, model.EventSnapshot, model.OutcomeNone), nil
}

// Authorize checks a control token against a game
func (m *Manager) Authorize(id model.GameID, token string) error {
	s, err := m.session(id)
	if err != nil {
		return err
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return model.ErrInvalidControlToken
	}
	return nil
}

// RequestTurn buffers a manual turn. accepted is false when the turn was a
// reversal or the round has ended; that is not an error.
func (m *Manager) RequestTurn(ctx context.Context, id model.GameID, d model.Direction) (info *model.GameInfo, accepted bool, err error) {
	if !d.Valid() {
		return nil, false, fmt.Errorf("%w: %q", model.ErrInvalidDirection, d)
	}
	s, err := m.session(id)
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	accepted = s.engine.RequestTurn(d)
	return s.info(), accepted, nil
}

// SetAutopilot switches a game's autopilot on or off
func (m *Manager) SetAutopilot(ctx context.Context, id model.GameID, enabled bool) (*model.GameInfo, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.SetAutopilot(enabled) {
		m.publish(s, model.EventSnapshot, model.OutcomeNone)
	}
	return s.info(), nil
}

// Reset starts a new round of a game
func (m *Manager) Reset(ctx context.Context, id model.GameID) (*model.GameInfo, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.Reset(); err != nil {
		return nil, err
	}
	s.round++
	s.recorded = false
	m.publish(s, model.EventReset, model.OutcomeNone)

	m.logger.Info("game reset",
		slog.String("game_id", string(id)),
		slog.Int("round", s.round))
	return s.info(), nil
}

// Step ticks a game once at the current clock time. When the tick ends the
// round the result is saved and a terminal event published, once per round.
func (m *Manager) Step(ctx context.Context, id model.GameID) (game.TickResult, error) {
	s, err := m.session(id)
	if err != nil {
		return game.TickResult{}, err
	}
	return m.step(ctx, s)
}

func (m *Manager) step(ctx context.Context, s *session) (game.TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.engine.Tick(m.clock.Now())
	if res.Outcome == model.OutcomeNone {
		return res, nil
	}
	m.publish(s, model.EventSnapshot, res.Outcome)

	if !res.Status.IsTerminal() || s.recorded {
		return res, nil
	}
	s.recorded = true

	eventType := model.EventGameOver
	if res.Status == model.StatusVictory {
		eventType = model.EventVictory
	}
	m.publish(s, eventType, res.Outcome)

	snap := s.engine.Snapshot()
	result := &model.GameResult{
		GameID:     s.id,
		Round:      s.round,
		GridSize:   snap.GridSize,
		Status:     snap.Status,
		Score:      snap.Score,
		Length:     snap.Length,
		Steps:      snap.Steps,
		Autopilot:  snap.Autopilot,
		Strategy:   snap.Strategy,
		FinishedAt: m.clock.Now(),
	}
	if err := m.storage.SaveResult(ctx, result); err != nil {
		m.logger.Error("failed to save result",
			slog.String("game_id", string(s.id)),
			slog.Int("round", s.round),
			slog.String("error", err.Error()),
		)
		return res, err
	}

	m.logger.Info("round finished",
		slog.String("game_id", string(s.id)),
		slog.Int("round", s.round),
		slog.String("status", string(snap.Status)),
		slog.Int("score", snap.Score),
	)
	return res, nil
}

// Delete stops a game, disconnects its subscribers and removes its results
func (m *Manager) Delete(ctx context.Context, id model.GameID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return model.ErrGameNotFound
	}

	s.cancel()
	<-s.done

	s.mu.Lock()
	m.publish(s, model.EventDeleted, model.OutcomeNone)
	s.mu.Unlock()
	m.publisher.Close(id)

	if err := m.storage.DeleteResultsForGame(ctx, id); err != nil {
		return err
	}
	m.logger.Info("game deleted", slog.String("game_id", string(id)))
	return nil
}

// Results returns every recorded round of a game
func (m *Manager) Results(ctx context.Context, id model.GameID) ([]*model.GameResult, error) {
	if _, err := m.session(id); err != nil {
		return nil, err
	}
	return m.storage.ListResultsForGame(ctx, id)
}

// Leaderboard returns the best results across all games
func (m *Manager) Leaderboard(ctx context.Context, limit int) ([]*model.GameResult, error) {
	return m.storage.TopResults(ctx, limit)
}

// Count returns the number of hosted games
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every driver. Games stay readable but no longer advance.
func (m *Manager) Close() {
	m.mu.RLock()
	for _, s := range m.sessions {
		s.cancel()
	}
	m.mu.RUnlock()
	m.wg.Wait()
}

func (m *Manager) drive(ctx context.Context, s *session) {
	defer m.wg.Done()
	defer close(s.done)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Save failures are already logged; the game itself carries on
			_, _ = m.step(ctx, s)
		}
	}
}

func (m *Manager) session(id model.GameID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s, nil
}

// publish must be called with s.mu held
func (m *Manager) publish(s *session, eventType model.EventType, outcome model.Outcome) {
	m.publisher.Publish(m.event(s, eventType, outcome))
}

func (m *Manager) event(s *session, eventType model.EventType, outcome model.Outcome) model.Event {
	snap := s.engine.Snapshot()
	return model.Event{
		Type:      eventType,
		Timestamp: m.clock.Now(),
		GameID:    s.id,
		Round:     s.round,
		Outcome:   outcome,
		Snapshot:  &snap,
	}
}
