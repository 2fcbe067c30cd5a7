package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/autosnake/internal/api/response"
	"github.com/mcoot/autosnake/internal/dependencies/mocks"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/game"
	"github.com/mcoot/autosnake/internal/testutil"
)

func TestConfig_Tokens(t *testing.T) {
	c := &Config{TokenDir: filepath.Join(t.TempDir(), "tokens")}

	token, err := c.LoadToken("GAME01")
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, c.SaveToken("GAME01", "secret"))
	token, err = c.LoadToken("GAME01")
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	info, err := os.Stat(filepath.Join(c.TokenDir, "GAME01"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// An explicit token wins
	c.Token = "override"
	token, err = c.LoadToken("GAME01")
	require.NoError(t, err)
	assert.Equal(t, "override", token)
	c.Token = ""

	require.NoError(t, c.DeleteToken("GAME01"))
	require.NoError(t, c.DeleteToken("GAME01"))
	token, err = c.LoadToken("GAME01")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestConfig_RejectsPathLikeIDs(t *testing.T) {
	c := &Config{TokenDir: t.TempDir()}

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.Error(t, c.SaveToken(id, "secret"), id)
	}
}

func TestRenderBoard(t *testing.T) {
	snap := response.Snapshot{
		GridSize: 4,
		Body:     []response.Cell{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		Head:     response.Cell{X: 2, Y: 1},
		Food:     &response.Cell{X: 3, Y: 3},
	}

	want := "+----+\n" +
		"|....|\n" +
		"|oo@.|\n" +
		"|....|\n" +
		"|...*|\n" +
		"+----+\n"
	assert.Equal(t, want, renderBoard(snap))
	assert.Empty(t, renderBoard(response.Snapshot{}))
}

func TestOutput_Results(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, "text")

	out.Print(response.ResultsResponse{})
	assert.Equal(t, "No results\n", buf.String())

	buf.Reset()
	out.Print(response.ResultsResponse{Results: []response.Result{
		{GameID: "GAME01", Round: 2, Status: "victory", Score: 130, Length: 16, Steps: 90, GridSize: 4, Autopilot: true, Strategy: "simulated"},
	}})
	assert.Contains(t, buf.String(), "GAME01")
	assert.Contains(t, buf.String(), "victory")
	assert.Contains(t, buf.String(), "simulated")
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput(&buf, "json").Print(response.HealthResponse{Status: "ok"})
	assert.JSONEq(t, `{"status":"ok"}`, buf.String())
}

func TestRunSim_IsReproducible(t *testing.T) {
	opts := SimOptions{GridSize: 8, Strategy: model.StrategySimulated, Seed: 99, MaxTicks: 2000}

	first, err := RunSim(opts, testutil.NopLogger())
	require.NoError(t, err)
	second, err := RunSim(opts, testutil.NopLogger())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(99), first.Seed)
	assert.LessOrEqual(t, first.Ticks, opts.MaxTicks)
	if first.Snapshot.Status == string(model.StatusGameOver) {
		assert.Equal(t, first.Ticks-1, first.Snapshot.Steps)
	} else {
		assert.Equal(t, first.Ticks, first.Snapshot.Steps)
	}
	assert.Equal(t, model.InitialLength+first.Snapshot.Score/model.FoodReward, first.Snapshot.Length)
	if first.Ticks < opts.MaxTicks {
		assert.NotEqual(t, string(model.StatusRunning), first.Snapshot.Status)
	}
}

func TestRunSim_BothStrategiesScore(t *testing.T) {
	for _, strategy := range model.ValidStrategies() {
		t.Run(strategy, func(t *testing.T) {
			result, err := RunSim(SimOptions{GridSize: 10, Strategy: strategy, Seed: 3, MaxTicks: 500}, testutil.NopLogger())
			require.NoError(t, err)
			assert.Positive(t, result.Snapshot.Score)
			assert.Equal(t, strategy, result.Strategy)
		})
	}
}

func TestRunSim_Errors(t *testing.T) {
	_, err := RunSim(SimOptions{GridSize: 8, MaxTicks: 0}, testutil.NopLogger())
	assert.Error(t, err)

	_, err = RunSim(SimOptions{GridSize: 2, MaxTicks: 10}, testutil.NopLogger())
	assert.ErrorIs(t, err, model.ErrInvalidGridSize)

	_, err = RunSim(SimOptions{GridSize: 8, Strategy: "teleport", MaxTicks: 10}, testutil.NopLogger())
	assert.ErrorIs(t, err, model.ErrUnknownStrategy)
}

func newTerminalGame(t *testing.T) (*terminalGame, *mocks.MockClock) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := game.DefaultConfig()
	cfg.GridSize = 8
	engine, err := game.New(cfg, clk, mocks.NewMockRandom(), testutil.NopLogger())
	require.NoError(t, err)

	return &terminalGame{engine: engine, screen: screen}, clk
}

func TestTerminalGame_Draw(t *testing.T) {
	g, _ := newTerminalGame(t)
	g.draw()

	snap := g.engine.Snapshot()
	x, y := cellPosition(snap.Head)
	r, _, _, _ := g.screen.GetContent(x, y)
	assert.Equal(t, glyphHead, r)
	r, _, _, _ = g.screen.GetContent(x+1, y)
	assert.Equal(t, glyphHead, r)

	x, y = cellPosition(snap.Body[0])
	r, _, _, _ = g.screen.GetContent(x, y)
	assert.Equal(t, glyphBody, r)

	x, y = cellPosition(*snap.Food)
	r, _, _, _ = g.screen.GetContent(x, y)
	assert.Equal(t, glyphFood, r)

	r, _, _, _ = g.screen.GetContent(0, 0)
	assert.Equal(t, '-', r)
}

func TestTerminalGame_Keys(t *testing.T) {
	g, clk := newTerminalGame(t)

	assert.False(t, g.handleKey(tcell.KeyUp, 0))
	clk.Advance(model.DefaultTickInterval)
	g.engine.Tick(clk.Now())
	assert.Equal(t, model.DirectionUp, g.engine.Snapshot().Heading)

	assert.False(t, g.handleKey(tcell.KeyEnter, 0))
	assert.True(t, g.engine.Snapshot().Autopilot)
	assert.False(t, g.handleKey(tcell.KeyEnter, 0))
	assert.False(t, g.engine.Snapshot().Autopilot)

	// Space only restarts a finished game
	assert.False(t, g.handleKey(tcell.KeyRune, ' '))
	assert.Equal(t, 1, g.engine.Snapshot().Steps)

	assert.True(t, g.handleKey(tcell.KeyRune, 'q'))
	assert.True(t, g.handleKey(tcell.KeyEscape, 0))
}

func TestTerminalGame_RestartAfterGameOver(t *testing.T) {
	g, clk := newTerminalGame(t)

	// Heading up from row 4 of an 8x8 grid leaves the board on the fifth move
	g.handleKey(tcell.KeyUp, 0)
	for i := 0; i < 5; i++ {
		clk.Advance(model.DefaultTickInterval)
		g.engine.Tick(clk.Now())
	}
	require.Equal(t, model.StatusGameOver, g.engine.Status())

	g.draw()
	g.handleKey(tcell.KeyRune, ' ')
	assert.Equal(t, model.StatusRunning, g.engine.Status())
	assert.Equal(t, 0, g.engine.Snapshot().Steps)
}

func TestPumpEvents_StopsWhenDoneWithNoReader(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)

	events := make(chan tcell.Event) // Never read
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		pumpEvents(screen, events, done)
		close(exited)
	}()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	close(done)

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("event pump still blocked after done was closed")
	}
}

func TestPumpEvents_StopsWhenScreenFinalized(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())

	events := make(chan tcell.Event, 16)
	exited := make(chan struct{})
	go func() {
		pumpEvents(screen, events, make(chan struct{}))
		close(exited)
	}()

	screen.Fini()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("event pump still running after the screen was finalized")
	}
}

func TestTerminalGame_RunQuitsOnKey(t *testing.T) {
	g, clk := newTerminalGame(t)

	returned := make(chan struct{})
	go func() {
		g.run(clk)
		close(returned)
	}()

	g.screen.(tcell.SimulationScreen).InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after q")
	}
	assert.NoError(t, g.err)
}
