package cli

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/autosnake/internal/api/response"
	"github.com/mcoot/autosnake/internal/dependencies/clock"
	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/game"
)

// SimOptions configures a headless autopilot run
type SimOptions struct {
	GridSize int
	Strategy string
	Seed     uint64
	MaxTicks int
}

// SimResult summarises a headless run
type SimResult struct {
	Strategy string            `json:"strategy"`
	Seed     uint64            `json:"seed"`
	Ticks    int               `json:"ticks"`
	Snapshot response.Snapshot `json:"snapshot"`
}

// RunSim plays a game on autopilot against a virtual clock until it ends or
// MaxTicks moves have been made
func RunSim(opts SimOptions, logger *slog.Logger) (SimResult, error) {
	if opts.MaxTicks < 1 {
		return SimResult{}, fmt.Errorf("max ticks must be positive, got %d", opts.MaxTicks)
	}

	clk := clock.NewVirtual(time.Unix(0, 0).UTC())
	engine, err := game.New(game.Config{
		GridSize:  opts.GridSize,
		Strategy:  opts.Strategy,
		Autopilot: true,
	}, clk, random.NewSeeded(opts.Seed), logger)
	if err != nil {
		return SimResult{}, err
	}

	ticks := 0
	for ticks < opts.MaxTicks && !engine.Status().IsTerminal() {
		engine.Tick(clk.Advance(engine.TickInterval()))
		ticks++
	}

	snap := engine.Snapshot()
	return SimResult{
		Strategy: snap.Strategy,
		Seed:     opts.Seed,
		Ticks:    ticks,
		Snapshot: response.SnapshotFromModel(snap),
	}, nil
}

func newSimCmd() *cobra.Command {
	opts := SimOptions{
		GridSize: model.DefaultGridSize,
		Strategy: model.DefaultStrategy,
		MaxTicks: 10000,
	}
	var seed int64

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a headless autopilot game locally",
		Long: `Run a game on autopilot in-process, as fast as possible, and print the
final board. Runs are reproducible: pass the printed seed back with --seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case !cmd.Flags().Changed("seed"):
				opts.Seed = uint64(random.New().Intn(math.MaxInt32))
			case seed < 0:
				return fmt.Errorf("seed must not be negative")
			default:
				opts.Seed = uint64(seed)
			}

			result, err := RunSim(opts, newLocalLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.GridSize, "grid-size", "g", opts.GridSize, "Grid size")
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", opts.Strategy, "Autopilot strategy: "+strings.Join(model.ValidStrategies(), ", "))
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for food placement (random if unset)")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", opts.MaxTicks, "Stop after this many moves")

	return cmd
}

// newLocalLogger logs engine events to w when --verbose is set
func newLocalLogger(w io.Writer) *slog.Logger {
	if !cfg.Verbose {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
