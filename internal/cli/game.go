package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/autosnake/internal/api/request"
	"github.com/mcoot/autosnake/internal/api/response"
	"github.com/mcoot/autosnake/internal/model"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameTurnCmd())
	cmd.AddCommand(newGameAutopilotCmd())
	cmd.AddCommand(newGameResetCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameResultsCmd())

	return cmd
}

func gamePath(id string, suffix ...string) string {
	return "/api/v1/games/" + url.PathEscape(id) + strings.Join(suffix, "")
}

// controlToken loads the token for a game, failing early when there is none
func controlToken(id string) (string, error) {
	token, err := cfg.LoadToken(id)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("no control token for game %s: pass --token or create the game with this CLI", id)
	}
	return token, nil
}

func newGameCreateCmd() *cobra.Command {
	var (
		req  request.CreateGameRequest
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new game and save its control token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				if seed < 0 {
					return fmt.Errorf("seed must not be negative")
				}
				s := uint64(seed)
				req.Seed = &s
			}

			var result response.CreateGameResponse
			if err := client.Post(cmd.Context(), "/api/v1/games", "", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Game.ID, result.ControlToken); err != nil {
				return fmt.Errorf("game %s created but its token could not be saved: %w", result.Game.ID, err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&req.GridSize, "grid-size", "g", 0, "Grid size (default 20)")
	cmd.Flags().BoolVarP(&req.Autopilot, "autopilot", "a", false, "Start with the autopilot on")
	cmd.Flags().StringVarP(&req.Strategy, "strategy", "s", "", "Autopilot strategy: "+strings.Join(model.ValidStrategies(), ", "))
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for food placement")
	cmd.Flags().IntVar(&req.TickIntervalMS, "tick-ms", 0, "Milliseconds between moves (default 200)")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get the current state of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get(cmd.Context(), gamePath(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "turn <id> <up|down|left|right>",
		Short: "Steer the snake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			direction, err := model.ParseDirection(args[1])
			if err != nil {
				return err
			}

			token, err := controlToken(id)
			if err != nil {
				return err
			}

			var result response.TurnResponse
			req := request.TurnRequest{Direction: string(direction)}
			if err := client.Post(cmd.Context(), gamePath(id, "/turn"), token, req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameAutopilotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autopilot <id> <on|off>",
		Short: "Switch the autopilot on or off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var enabled bool
			switch strings.ToLower(args[1]) {
			case "on", "true":
				enabled = true
			case "off", "false":
				enabled = false
			default:
				return fmt.Errorf("autopilot must be on or off, got %q", args[1])
			}

			token, err := controlToken(id)
			if err != nil {
				return err
			}

			var result response.Game
			req := request.AutopilotRequest{Enabled: &enabled}
			if err := client.Post(cmd.Context(), gamePath(id, "/autopilot"), token, req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Start a new round of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			var result response.Game
			if err := client.Post(cmd.Context(), gamePath(id, "/reset"), token, nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game and its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			if err := client.Delete(cmd.Context(), gamePath(id), token); err != nil {
				return err
			}
			if err := cfg.DeleteToken(id); err != nil {
				return err
			}

			output(cmd).PrintMessage("Game deleted")
			return nil
		},
	}
}

func newGameResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <id>",
		Short: "List the finished rounds of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ResultsResponse

			if err := client.Get(cmd.Context(), gamePath(args[0], "/results"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
