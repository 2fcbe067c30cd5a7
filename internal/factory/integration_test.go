package factory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/session"
	redisstorage "github.com/mcoot/autosnake/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *IntegrationSuite) create(id string, opts session.CreateOptions) *model.GameInfo {
	s.app.MockRandom.QueueString(id, "token-"+id)
	info, _, err := s.app.Sessions.Create(s.ctx, opts)
	s.Require().NoError(err)
	return info
}

// Test: a manual game on a 3x3 grid runs into the right wall on the first
// tick, is recorded, reset, and lost again
func (s *IntegrationSuite) TestManualRoundsAreRecorded() {
	info := s.create("GAME01", session.CreateOptions{GridSize: 3})
	s.Equal([]model.Cell{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}, info.Snapshot.Body)

	s.Require().NoError(s.app.StepFor(s.ctx, info.ID, 1, model.DefaultTickInterval))

	info, err := s.app.Sessions.Get(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusGameOver, info.Snapshot.Status)

	// Further ticks change nothing and record nothing
	s.Require().NoError(s.app.StepFor(s.ctx, info.ID, 3, model.DefaultTickInterval))
	results, err := s.app.Sessions.Results(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(0, results[0].Round)
	s.Equal(model.StatusGameOver, results[0].Status)
	s.Equal(0, results[0].Score)
	s.Equal(model.InitialLength, results[0].Length)

	info, err = s.app.Sessions.Reset(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Equal(1, info.Round)
	s.Equal(model.StatusRunning, info.Snapshot.Status)

	s.Require().NoError(s.app.StepFor(s.ctx, info.ID, 1, model.DefaultTickInterval))
	results, err = s.app.Sessions.Results(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(0, results[0].Round)
	s.Equal(1, results[1].Round)
}

// Test: a seeded autopilot game eats food without any input
func (s *IntegrationSuite) TestAutopilotEatsFood() {
	seed := uint64(7)
	info := s.create("GAME01", session.CreateOptions{GridSize: 8, Autopilot: true, Seed: &seed})

	s.Require().NoError(s.app.StepFor(s.ctx, info.ID, 200, model.DefaultTickInterval))

	info, err := s.app.Sessions.Get(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Positive(info.Snapshot.Score)
	s.Equal(model.InitialLength+info.Snapshot.Score/model.FoodReward, info.Snapshot.Length)
}

// Test: the leaderboard spans games and deleting a game drops its results
func (s *IntegrationSuite) TestLeaderboardAndDelete() {
	first := s.create("GAME01", session.CreateOptions{GridSize: 3})
	second := s.create("GAME02", session.CreateOptions{GridSize: 3})

	s.Require().NoError(s.app.StepFor(s.ctx, first.ID, 1, model.DefaultTickInterval))
	s.Require().NoError(s.app.StepFor(s.ctx, second.ID, 1, model.DefaultTickInterval))

	top, err := s.app.Sessions.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(top, 2)

	s.Require().NoError(s.app.Sessions.Delete(s.ctx, first.ID))

	top, err = s.app.Sessions.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(second.ID, top[0].GameID)

	_, err = s.app.Sessions.Results(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
	s.Nil(s.app.HubManager.GetHub(first.ID))
}

func TestNew_MemoryByDefault(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	assert.NotNil(t, app.Sessions)
	assert.NotNil(t, app.HubManager)
	assert.Equal(t, 0, app.Sessions.Count())
}

func TestNew_InvalidStorage(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	assert.Error(t, err)

	_, err = New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	_, ok := app.Storage.(*redisstorage.Storage)
	assert.True(t, ok)
}
