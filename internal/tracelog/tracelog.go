// Package tracelog reads newline-delimited JSON event logs for the operator
// CLI: filter by trace identifier, round, and phase, then render a chosen
// output encoding. The tool manager itself never touches this format.
package tracelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Event is one line of the trace log. Raw retains the full decoded object so
// renderers can show fields beyond the common envelope.
type Event struct {
	TraceID string  `json:"trace_id"`
	Phase   string  `json:"phase"`
	Round   int     `json:"round"`
	TS      float64 `json:"ts"`

	Raw map[string]any `json:"-"`
}

// ReadResult carries the parsed events plus a count of lines that were not
// valid JSON objects.
type ReadResult struct {
	Events  []Event
	Skipped int
}

// Read parses one JSON object per line, skipping blank and malformed lines.
func Read(r io.Reader) (*ReadResult, error) {
	result := &ReadResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			result.Skipped++
			continue
		}
		event := Event{Raw: raw}
		if v, ok := raw["trace_id"].(string); ok {
			event.TraceID = v
		}
		if v, ok := raw["phase"].(string); ok {
			event.Phase = v
		}
		if v, ok := raw["round"].(float64); ok {
			event.Round = int(v)
		}
		if v, ok := raw["ts"].(float64); ok {
			event.TS = v
		}
		result.Events = append(result.Events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tracelog: reading log: %w", err)
	}
	return result, nil
}

// Filter selects events matching the given criteria. Empty strings and a
// negative round match everything.
type Filter struct {
	TraceID string
	Phase   string
	Round   int
}

// NewFilter returns a filter that matches all events.
func NewFilter() Filter {
	return Filter{Round: -1}
}

// Apply returns the events accepted by the filter, preserving order.
func (f Filter) Apply(events []Event) []Event {
	matched := make([]Event, 0, len(events))
	for _, e := range events {
		if f.TraceID != "" && e.TraceID != f.TraceID {
			continue
		}
		if f.Phase != "" && e.Phase != f.Phase {
			continue
		}
		if f.Round >= 0 && e.Round != f.Round {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

// Output encodings supported by Render.
const (
	OutputJSON  = "json"
	OutputTable = "table"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Render encodes the events in the requested format: one JSON object per
// line, or an aligned table of the envelope fields.
func Render(events []Event, format string) (string, error) {
	switch format {
	case OutputJSON, "":
		var b strings.Builder
		for _, e := range events {
			encoded, err := json.Marshal(e.Raw)
			if err != nil {
				return "", fmt.Errorf("tracelog: encoding event: %w", err)
			}
			b.Write(encoded)
			b.WriteByte('\n')
		}
		return b.String(), nil
	case OutputTable:
		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return lipgloss.NewStyle()
			}).
			Headers("TRACE", "ROUND", "PHASE", "TS")
		for _, e := range events {
			tbl.Row(e.TraceID, fmt.Sprintf("%d", e.Round), e.Phase, fmt.Sprintf("%.3f", e.TS))
		}
		return tbl.Render(), nil
	default:
		return "", fmt.Errorf("tracelog: unsupported output format %q", format)
	}
}
