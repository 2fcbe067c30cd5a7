package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/autosnake/internal/dependencies/mocks"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/session"
	"github.com/mcoot/autosnake/internal/storage/memory"
	"github.com/mcoot/autosnake/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	closed []model.GameID
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close(gameID model.GameID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, gameID)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type ManagerSuite struct {
	suite.Suite
	storage   *memory.Storage
	publisher *recordingPublisher
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	manager   *session.Manager
	ctx       context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.storage = memory.New()
	s.publisher = &recordingPublisher{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.manager = session.NewManager(session.Config{}, s.storage, s.publisher, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ManagerSuite) TearDownTest() {
	s.manager.Close()
}

// createGame creates a game with a predictable ID and token
func (s *ManagerSuite) createGame(id string, opts session.CreateOptions) *model.GameInfo {
	s.random.QueueString(id, "token-"+id)
	info, token, err := s.manager.Create(s.ctx, opts)
	s.Require().NoError(err)
	s.Equal("token-"+id, token)
	return info
}

// lostGame creates a 3x3 game whose first move leaves the grid
func (s *ManagerSuite) lostGame(id string) *model.GameInfo {
	return s.createGame(id, session.CreateOptions{GridSize: 3})
}

func (s *ManagerSuite) advanceAndStep(id model.GameID) model.Outcome {
	s.clock.Advance(model.DefaultTickInterval)
	res, err := s.manager.Step(s.ctx, id)
	s.Require().NoError(err)
	return res.Outcome
}

// Create tests

func (s *ManagerSuite) TestCreateUsesDefaults() {
	info := s.createGame("GAME00000001", session.CreateOptions{})

	s.Equal(model.GameID("GAME00000001"), info.ID)
	s.Equal(0, info.Round)
	s.Equal(model.DefaultGridSize, info.Snapshot.GridSize)
	s.Equal(model.StrategySimulated, info.Snapshot.Strategy)
	s.False(info.Snapshot.Autopilot)
	s.Equal(model.StatusRunning, info.Snapshot.Status)
	s.Equal(1, s.manager.Count())
	s.Empty(s.publisher.types())
}

func (s *ManagerSuite) TestCreateRejectsInvalidOptions() {
	s.random.QueueString("GAME00000001", "token")
	_, _, err := s.manager.Create(s.ctx, session.CreateOptions{GridSize: 100})
	s.ErrorIs(err, model.ErrInvalidGridSize)

	s.random.QueueString("GAME00000002", "token")
	_, _, err = s.manager.Create(s.ctx, session.CreateOptions{Strategy: "teleport"})
	s.ErrorIs(err, model.ErrUnknownStrategy)

	s.Equal(0, s.manager.Count())
}

func (s *ManagerSuite) TestCreateRetriesDuplicateID() {
	s.createGame("GAME00000001", session.CreateOptions{})

	s.random.QueueString("GAME00000001", "GAME00000002", "token")
	info, _, err := s.manager.Create(s.ctx, session.CreateOptions{})
	s.Require().NoError(err)
	s.Equal(model.GameID("GAME00000002"), info.ID)
}

func (s *ManagerSuite) TestGetUnknownGame() {
	_, err := s.manager.Get(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ManagerSuite) TestCurrentEvent() {
	info := s.createGame("GAME00000001", session.CreateOptions{})

	event, err := s.manager.CurrentEvent(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Equal(model.EventSnapshot, event.Type)
	s.Equal(info.ID, event.GameID)
	s.Equal(s.clock.Now(), event.Timestamp)
	s.Require().NotNil(event.Snapshot)
	s.Equal(info.Snapshot.Body, event.Snapshot.Body)
	s.Empty(s.publisher.types())

	_, err = s.manager.CurrentEvent(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Authorize tests

func (s *ManagerSuite) TestAuthorize() {
	info := s.createGame("GAME00000001", session.CreateOptions{})

	s.NoError(s.manager.Authorize(info.ID, "token-GAME00000001"))
	s.ErrorIs(s.manager.Authorize(info.ID, "wrong"), model.ErrInvalidControlToken)
	s.ErrorIs(s.manager.Authorize(info.ID, ""), model.ErrInvalidControlToken)
	s.ErrorIs(s.manager.Authorize("NOPE", "token-GAME00000001"), model.ErrGameNotFound)
}

// Step tests

func (s *ManagerSuite) TestStepWaitsForTickInterval() {
	info := s.createGame("GAME00000001", session.CreateOptions{GridSize: 10})

	res, err := s.manager.Step(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Equal(model.OutcomeNone, res.Outcome)
	s.Empty(s.publisher.types())

	s.Equal(model.OutcomeMoved, s.advanceAndStep(info.ID))
	s.Equal([]model.EventType{model.EventSnapshot}, s.publisher.types())
	s.Equal(1, s.publisher.events[0].Snapshot.Steps)
}

func (s *ManagerSuite) TestStepRecordsResultOncePerRound() {
	info := s.lostGame("GAME00000001")

	s.Equal(model.OutcomeCollided, s.advanceAndStep(info.ID))
	s.Equal(model.OutcomeNone, s.advanceAndStep(info.ID))

	s.Equal([]model.EventType{model.EventSnapshot, model.EventGameOver}, s.publisher.types())

	results, err := s.manager.Results(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(model.StatusGameOver, results[0].Status)
	s.Equal(0, results[0].Round)
	s.Equal(0, results[0].Score)
	s.Equal(model.InitialLength, results[0].Length)
	s.Equal(3, results[0].GridSize)
	s.Equal(s.clock.Now().Add(-model.DefaultTickInterval), results[0].FinishedAt)
}

func (s *ManagerSuite) TestResetStartsNewRound() {
	info := s.lostGame("GAME00000001")
	s.advanceAndStep(info.ID)

	reset, err := s.manager.Reset(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Equal(1, reset.Round)
	s.Equal(model.StatusRunning, reset.Snapshot.Status)

	s.Equal(model.OutcomeCollided, s.advanceAndStep(info.ID))

	results, err := s.manager.Results(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(0, results[0].Round)
	s.Equal(1, results[1].Round)

	s.Equal([]model.EventType{
		model.EventSnapshot, model.EventGameOver,
		model.EventReset,
		model.EventSnapshot, model.EventGameOver,
	}, s.publisher.types())
}

func (s *ManagerSuite) TestLeaderboard() {
	first := s.lostGame("GAME00000001")
	second := s.lostGame("GAME00000002")
	s.advanceAndStep(first.ID)
	s.advanceAndStep(second.ID)

	top, err := s.manager.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(top, 2)
}

// Input tests

func (s *ManagerSuite) TestRequestTurn() {
	info := s.createGame("GAME00000001", session.CreateOptions{GridSize: 10})

	_, accepted, err := s.manager.RequestTurn(s.ctx, info.ID, model.DirectionLeft)
	s.Require().NoError(err)
	s.False(accepted)

	_, accepted, err = s.manager.RequestTurn(s.ctx, info.ID, model.DirectionUp)
	s.Require().NoError(err)
	s.True(accepted)

	_, _, err = s.manager.RequestTurn(s.ctx, info.ID, model.Direction("diagonal"))
	s.ErrorIs(err, model.ErrInvalidDirection)

	_, _, err = s.manager.RequestTurn(s.ctx, "NOPE", model.DirectionUp)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ManagerSuite) TestSetAutopilotPublishesSnapshot() {
	info := s.createGame("GAME00000001", session.CreateOptions{GridSize: 10})

	updated, err := s.manager.SetAutopilot(s.ctx, info.ID, true)
	s.Require().NoError(err)
	s.True(updated.Snapshot.Autopilot)

	s.Require().Len(s.publisher.events, 1)
	s.Equal(model.EventSnapshot, s.publisher.events[0].Type)
	s.Equal(model.OutcomeNone, s.publisher.events[0].Outcome)
	s.True(s.publisher.events[0].Snapshot.Autopilot)
}

// Delete tests

func (s *ManagerSuite) TestDelete() {
	info := s.lostGame("GAME00000001")
	s.advanceAndStep(info.ID)

	s.Require().NoError(s.manager.Delete(s.ctx, info.ID))

	_, err := s.manager.Get(s.ctx, info.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
	s.ErrorIs(s.manager.Delete(s.ctx, info.ID), model.ErrGameNotFound)

	types := s.publisher.types()
	s.Equal(model.EventDeleted, types[len(types)-1])
	s.Equal([]model.GameID{info.ID}, s.publisher.closed)

	results, _ := s.storage.ListResultsForGame(s.ctx, info.ID)
	s.Empty(results)
}

// Seeded games

func (s *ManagerSuite) TestSeededGamesAreReproducible() {
	seed := uint64(99)
	opts := session.CreateOptions{GridSize: 8, Autopilot: true, Seed: &seed}
	a := s.createGame("GAME0000000A", opts)
	b := s.createGame("GAME0000000B", opts)
	s.Equal(a.Snapshot.Food, b.Snapshot.Food)

	for i := 0; i < 200; i++ {
		s.clock.Advance(model.DefaultTickInterval)
		_, err := s.manager.Step(s.ctx, a.ID)
		s.Require().NoError(err)
		_, err = s.manager.Step(s.ctx, b.ID)
		s.Require().NoError(err)
	}

	gotA, _ := s.manager.Get(s.ctx, a.ID)
	gotB, _ := s.manager.Get(s.ctx, b.ID)
	s.Equal(gotA.Snapshot, gotB.Snapshot)
	// Seeded games never draw from the shared source
	s.Empty(s.random.IntnCalls)
}

// Driver

func TestManager_DriverAdvancesGames(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()
	rnd.QueueString("GAME00000001", "token")
	publisher := &recordingPublisher{}

	manager := session.NewManager(session.Config{PollInterval: time.Millisecond},
		memory.New(), publisher, clk, rnd, testutil.NopLogger())
	defer manager.Close()

	info, _, err := manager.Create(context.Background(), session.CreateOptions{GridSize: 10})
	if err != nil {
		t.Fatal(err)
	}

	clk.Advance(model.DefaultTickInterval)
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := manager.Get(context.Background(), info.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Snapshot.Steps == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("driver did not advance the game, steps = %d", got.Snapshot.Steps)
		}
		time.Sleep(time.Millisecond)
	}

	// Deleting stops the driver before the game is dropped
	if err := manager.Delete(context.Background(), info.ID); err != nil {
		t.Fatal(err)
	}
}
