package factory

import (
	"context"
	"time"

	"github.com/mcoot/autosnake/internal/dependencies/mocks"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/session"
	"github.com/mcoot/autosnake/internal/storage/memory"
	"github.com/mcoot/autosnake/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Games are not driven in the background; advance the clock and call
// Sessions.Step instead.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, session.Config{}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// StepFor advances the clock by interval n times, stepping the game after each advance
func (t *TestApp) StepFor(ctx context.Context, id model.GameID, n int, interval time.Duration) error {
	for i := 0; i < n; i++ {
		t.MockClock.Advance(interval)
		if _, err := t.Sessions.Step(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
