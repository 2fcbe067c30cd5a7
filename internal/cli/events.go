package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/autosnake/internal/model"
)

// Stream transports
const (
	transportSSE       = "sse"
	transportWebSocket = "ws"
)

// errStreamDone stops a stream once enough events have been printed
var errStreamDone = errors.New("stream done")

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		transport  string
		count      int
	)

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream live events from a game",
		Long: `Connect to a game's event stream and print events as they happen.

Events include:
  - snapshot: The snake moved, or the game changed state
  - game-over: The snake collided
  - victory: The snake filled the board
  - reset: A new round started
  - deleted: The game was removed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			printer := &eventPrinter{w: cmd.OutOrStdout(), json: jsonOutput, remaining: count}

			var err error
			switch transport {
			case transportSSE:
				err = streamSSE(ctx, args[0], printer)
			case transportWebSocket:
				err = streamWebSocket(ctx, args[0], printer)
			default:
				return fmt.Errorf("unknown transport %q: must be sse or ws", transport)
			}

			if errors.Is(err, errStreamDone) || ctx.Err() != nil {
				err = nil
			}
			if err == nil && !jsonOutput {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&transport, "transport", transportSSE, "Stream transport: sse or ws")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many game events (0 streams until the game ends)")

	return cmd
}

// StreamEvent is one line of --json output
type StreamEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type eventPrinter struct {
	w         io.Writer
	json      bool
	remaining int
}

// print writes one event. It returns errStreamDone when the stream should end.
func (p *eventPrinter) print(event string, data []byte) error {
	now := time.Now()

	if p.json {
		raw := json.RawMessage(data)
		if !json.Valid(raw) {
			raw, _ = json.Marshal(string(data))
		}
		line, _ := json.Marshal(StreamEvent{Time: now, Event: event, Data: raw})
		_, _ = fmt.Fprintln(p.w, string(line))
	} else {
		_, _ = fmt.Fprintf(p.w, "[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), event, summarizeEvent(data))
	}

	if event == "connected" {
		return nil
	}
	if event == string(model.EventDeleted) {
		return errStreamDone
	}
	if p.remaining > 0 {
		p.remaining--
		if p.remaining == 0 {
			return errStreamDone
		}
	}
	return nil
}

// summarizeEvent renders a game event on one line, falling back to the raw data
func summarizeEvent(data []byte) string {
	var event model.Event
	if err := json.Unmarshal(data, &event); err != nil || event.Snapshot == nil {
		display := strings.ReplaceAll(string(data), "\n", " ")
		if len(display) > 100 {
			display = display[:100] + "..."
		}
		return display
	}

	s := event.Snapshot
	summary := fmt.Sprintf("round=%d status=%s score=%d length=%d head=%s heading=%s",
		event.Round, s.Status, s.Score, s.Length, s.Head, s.Heading)
	if event.Outcome != "" && event.Outcome != model.OutcomeNone {
		summary += " outcome=" + string(event.Outcome)
	}
	return summary
}

func streamSSE(ctx context.Context, gameID string, printer *eventPrinter) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + gamePath(gameID, "/events")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout, the stream lasts as long as the game
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				if err := printer.print(currentEvent, []byte(strings.Join(dataLines, "\n"))); err != nil {
					return err
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

func streamWebSocket(ctx context.Context, gameID string, printer *eventPrinter) error {
	url := "ws" + strings.TrimPrefix(strings.TrimSuffix(cfg.ServerURL, "/"), "http") + gamePath(gameID, "/ws")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock ReadMessage when the context ends
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := printer.print("connected", []byte(`{"status":"connected"}`)); err != nil {
		return err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var event model.Event
		name := "message"
		if json.Unmarshal(data, &event) == nil && event.Type != "" {
			name = string(event.Type)
		}
		if err := printer.print(name, data); err != nil {
			return err
		}
	}
}
