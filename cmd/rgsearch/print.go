package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/report"
	"github.com/poiesic/rgsearch/stream"
	"github.com/urfave/cli/v2"
)

// Colors
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorSuccess = lipgloss.Color("#22C55E") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorDanger  = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

// Styles
var (
	pathStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	lineNoStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	matchStyle   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Underline(true)
)

type outputMode int

const (
	modePretty outputMode = iota
	modeRaw
	modeJSON
)

func printMode(c *cli.Context) outputMode {
	switch {
	case c.Bool("json"):
		return modeJSON
	case c.Bool("raw"):
		return modeRaw
	default:
		return modePretty
	}
}

// printer writes search events to a terminal.
type printer struct {
	w    io.Writer
	mode outputMode
	json *stream.JSONSink
}

func newPrinter(w io.Writer, mode outputMode) *printer {
	return &printer{w: w, mode: mode, json: stream.NewJSONSink(w)}
}

func (p *printer) header(session core.SessionID) {
	if p.mode == modePretty {
		fmt.Fprintln(p.w, headerStyle.Render(fmt.Sprintf("search %d", session)))
	}
}

func (p *printer) event(event core.SearchEvent) error {
	if p.mode == modeJSON {
		return p.json.Emit(event)
	}

	if event.IsFinished() {
		if p.mode == modePretty {
			fmt.Fprintln(p.w, mutedStyle.Render("-- done --"))
		}
		return nil
	}

	for _, line := range event.Lines {
		if p.mode == modeRaw {
			if _, err := fmt.Fprintln(p.w, line); err != nil {
				return err
			}
			continue
		}

		match, err := report.ParseMatch(line)
		if err != nil {
			// begin/end/context/summary messages are not printed
			continue
		}
		if _, err := fmt.Fprintln(p.w, formatMatch(match)); err != nil {
			return err
		}
	}
	return nil
}

// formatMatch renders "path:line:text" with submatches highlighted.
func formatMatch(m *report.Match) string {
	var b strings.Builder
	b.WriteString(pathStyle.Render(m.Path))
	b.WriteString(":")
	b.WriteString(lineNoStyle.Render(fmt.Sprintf("%d", m.LineNumber)))
	b.WriteString(":")
	b.WriteString(highlight(m.Text, m.Submatches))
	return b.String()
}

func highlight(text string, subs []report.Submatch) string {
	var b strings.Builder
	pos := 0
	for _, s := range subs {
		if s.Start < pos || s.End > len(text) || s.Start >= s.End {
			continue
		}
		b.WriteString(text[pos:s.Start])
		b.WriteString(matchStyle.Render(text[s.Start:s.End]))
		pos = s.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

func formatSummary(s report.Snapshot, elapsed time.Duration) string {
	msg := fmt.Sprintf("%d matches in %d files (%s)", s.Matches, s.Files, elapsed.Round(time.Millisecond))
	if s.Capped {
		return warningStyle.Render(msg + ", result limit reached")
	}
	return successStyle.Render(msg)
}

func formatHistoryEntry(e *core.HistoryEntry) string {
	var flags []string
	if e.Options.CaseSensitive {
		flags = append(flags, "case")
	}
	if e.Options.WholeWord {
		flags = append(flags, "word")
	}
	if e.Options.Regex {
		flags = append(flags, "regex")
	}
	for _, g := range e.Options.Globs {
		flags = append(flags, "glob="+g)
	}

	path := e.Path
	if path == "" {
		path = "."
	}

	line := fmt.Sprintf("%s  %s  %s",
		mutedStyle.Render(e.Timestamp.Local().Format(time.DateTime)),
		e.Query,
		pathStyle.Render(path))
	if len(flags) > 0 {
		line += "  " + mutedStyle.Render("["+strings.Join(flags, ",")+"]")
	}
	return line
}
