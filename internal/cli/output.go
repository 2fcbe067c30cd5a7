package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/autosnake/internal/api/response"
)

// Board glyphs
const (
	glyphEmpty = '.'
	glyphBody  = 'o'
	glyphHead  = '@'
	glyphFood  = '*'
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Game:
		o.printGame(v)
	case response.CreateGameResponse:
		o.printGame(v.Game)
		o.printf("Control token saved (%d chars)\n", len(v.ControlToken))
	case response.TurnResponse:
		if !v.Accepted {
			o.printf("Turn ignored\n")
		}
		o.printGame(v.Game)
	case response.ResultsResponse:
		o.printResults(v.Results)
	case response.HealthResponse:
		o.printf("Status: %s\n", v.Status)
	case SimResult:
		o.printSimResult(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printGame(g response.Game) {
	s := g.Snapshot
	o.printf("Game: %s (round %d)\n", g.ID, g.Round)
	o.printf("Status: %s\n", s.Status)
	o.printf("Score: %d  Length: %d  Steps: %d\n", s.Score, s.Length, s.Steps)
	o.printf("Heading: %s\n", s.Heading)
	autopilot := "off"
	if s.Autopilot {
		autopilot = "on"
	}
	o.printf("Autopilot: %s (%s)\n", autopilot, s.StrategyLabel)
	o.printBoard(s)
}

func (o *Output) printResults(results []response.Result) {
	if len(results) == 0 {
		o.printf("No results\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "GAME\tROUND\tSTATUS\tSCORE\tLENGTH\tSTEPS\tGRID\tSTRATEGY")
	for _, r := range results {
		strategy := "manual"
		if r.Autopilot {
			strategy = r.Strategy
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.GameID, r.Round, r.Status, r.Score, r.Length, r.Steps, r.GridSize, strategy)
	}
	_ = tw.Flush()
}

func (o *Output) printSimResult(r SimResult) {
	o.printf("Strategy: %s\n", r.Strategy)
	o.printf("Seed: %d\n", r.Seed)
	o.printf("Status: %s after %d ticks\n", r.Snapshot.Status, r.Ticks)
	o.printf("Score: %d  Length: %d  Steps: %d\n", r.Snapshot.Score, r.Snapshot.Length, r.Snapshot.Steps)
	o.printBoard(r.Snapshot)
}

func (o *Output) printBoard(s response.Snapshot) {
	_, _ = io.WriteString(o.w, renderBoard(s))
}

// renderBoard draws the grid with a border, one text row per grid row
func renderBoard(s response.Snapshot) string {
	if s.GridSize <= 0 {
		return ""
	}

	rows := make([][]rune, s.GridSize)
	for y := range rows {
		rows[y] = []rune(strings.Repeat(string(glyphEmpty), s.GridSize))
	}
	set := func(c response.Cell, r rune) {
		if c.X >= 0 && c.X < s.GridSize && c.Y >= 0 && c.Y < s.GridSize {
			rows[c.Y][c.X] = r
		}
	}
	if s.Food != nil {
		set(*s.Food, glyphFood)
	}
	for _, c := range s.Body {
		set(c, glyphBody)
	}
	if len(s.Body) > 0 {
		set(s.Head, glyphHead)
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", s.GridSize) + "+\n"
	b.WriteString(border)
	for _, row := range rows {
		b.WriteString("|" + string(row) + "|\n")
	}
	b.WriteString(border)
	return b.String()
}
