package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/mcoot/autosnake/internal/dependencies/clock"
	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/game"
)

const frameInterval = 16 * time.Millisecond

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = styleDefault.Foreground(tcell.ColorDarkGray)
	styleBody    = styleDefault.Foreground(tcell.ColorGreen)
	styleHead    = styleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleFood    = styleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus  = styleDefault.Foreground(tcell.ColorWhite)
	styleBanner  = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow).Bold(true)
	styleHelp    = styleDefault.Foreground(tcell.ColorGray)
)

// terminalGame renders an engine to a tcell screen and feeds it key presses
type terminalGame struct {
	engine *game.Engine
	screen tcell.Screen
	err    error // Set when the game cannot continue
}

// handleKey applies one key press. It returns true when the player quits.
func (g *terminalGame) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		g.engine.RequestTurn(model.DirectionUp)
	case tcell.KeyDown:
		g.engine.RequestTurn(model.DirectionDown)
	case tcell.KeyLeft:
		g.engine.RequestTurn(model.DirectionLeft)
	case tcell.KeyRight:
		g.engine.RequestTurn(model.DirectionRight)
	case tcell.KeyEnter:
		g.engine.SetAutopilot(!g.engine.Snapshot().Autopilot)
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return true
		case ' ':
			if g.engine.Status().IsTerminal() {
				if err := g.engine.Reset(); err != nil {
					g.err = fmt.Errorf("failed to restart game: %w", err)
					return true
				}
			}
		}
	}
	return false
}

// cellPosition maps a grid cell to its screen column and row. Cells are two
// columns wide so the board looks square.
func cellPosition(c model.Cell) (int, int) {
	return 1 + 2*c.X, 1 + c.Y
}

func (g *terminalGame) draw() {
	snap := g.engine.Snapshot()
	g.screen.Clear()

	width := 2*snap.GridSize + 2
	for x := 0; x < width; x++ {
		g.screen.SetContent(x, 0, '-', nil, styleBorder)
		g.screen.SetContent(x, snap.GridSize+1, '-', nil, styleBorder)
	}
	for y := 0; y <= snap.GridSize+1; y++ {
		g.screen.SetContent(0, y, '|', nil, styleBorder)
		g.screen.SetContent(width-1, y, '|', nil, styleBorder)
	}

	put := func(c model.Cell, r rune, style tcell.Style) {
		x, y := cellPosition(c)
		g.screen.SetContent(x, y, r, nil, style)
		g.screen.SetContent(x+1, y, r, nil, style)
	}
	if snap.Food != nil {
		put(*snap.Food, glyphFood, styleFood)
	}
	for _, c := range snap.Body {
		put(c, glyphBody, styleBody)
	}
	put(snap.Head, glyphHead, styleHead)

	autopilot := "off"
	if snap.Autopilot {
		autopilot = "on, " + model.StrategyDisplayName(snap.Strategy)
	}
	row := snap.GridSize + 2
	drawText(g.screen, 0, row, styleStatus,
		fmt.Sprintf("Score: %d  Length: %d  Autopilot: %s", snap.Score, snap.Length, autopilot))

	switch snap.Status {
	case model.StatusGameOver:
		drawText(g.screen, 0, row+1, styleBanner, " GAME OVER - space to restart ")
	case model.StatusVictory:
		drawText(g.screen, 0, row+1, styleBanner, " VICTORY - space to restart ")
	}
	drawText(g.screen, 0, row+2, styleHelp, "arrows: turn  enter: autopilot  space: restart  q/esc: quit")

	g.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

// pumpEvents forwards screen events until the screen is finalized or done
// is closed
func pumpEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// run ticks the engine every frame until the player quits
func (g *terminalGame) run(clk clock.Clock) {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(g.screen, events, done)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	g.draw()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if g.handleKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}
			g.draw()

		case <-ticker.C:
			if g.engine.Tick(clk.Now()).Outcome != model.OutcomeNone {
				g.draw()
			}
		}
	}
}

func newPlayCmd() *cobra.Command {
	cfgGame := game.DefaultConfig()
	var tickMS int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		Long: `Play a local game in the terminal.

  arrow keys  turn
  enter       toggle the autopilot
  space       restart after the game ends
  q, esc      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgGame.TickInterval = time.Duration(tickMS) * time.Millisecond

			clk := clock.New()
			engine, err := game.New(cfgGame, clk, random.New(), newLocalLogger(io.Discard))
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			defer screen.Fini()

			tg := &terminalGame{engine: engine, screen: screen}
			tg.run(clk)
			if tg.err != nil {
				return tg.err
			}

			snap := engine.Snapshot()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Final score: %d (%s)\n", snap.Score, snap.Status)
			return nil
		},
	}

	cmd.Flags().IntVarP(&cfgGame.GridSize, "grid-size", "g", cfgGame.GridSize, "Grid size")
	cmd.Flags().StringVarP(&cfgGame.Strategy, "strategy", "s", cfgGame.Strategy, "Autopilot strategy: "+strings.Join(model.ValidStrategies(), ", "))
	cmd.Flags().BoolVarP(&cfgGame.Autopilot, "autopilot", "a", false, "Start with the autopilot on")
	cmd.Flags().IntVar(&tickMS, "tick-ms", int(model.DefaultTickInterval/time.Millisecond), "Milliseconds between moves")

	return cmd
}
