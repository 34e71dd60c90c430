// Package view renders session state for terminal output.
package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/fsm"
	"github.com/rbright/courtside/internal/media"
	"github.com/rbright/courtside/internal/session"
)

// Result returns the insight verbatim while status is succeeded and nothing otherwise.
func Result(status fsm.State, insight string) (string, bool) {
	if status != fsm.StateSucceeded {
		return "", false
	}
	return insight, true
}

// StatusLine renders one status line, colored when colorize is set.
func StatusLine(status session.Status, colorize bool) string {
	var label string
	var color text.Colors
	switch status.State {
	case fsm.StateIdle:
		label, color = "Ready", text.Colors{text.FgBlue}
	case fsm.StateInFlight:
		label, color = "Analyzing...", text.Colors{text.FgYellow}
	case fsm.StateSucceeded:
		label, color = "Analysis complete", text.Colors{text.FgGreen}
	case fsm.StateFailed:
		label, color = "Analysis failed", text.Colors{text.FgRed}
		if status.Message != "" {
			label += ": " + status.Message
		}
	default:
		label = string(status.State)
	}
	if colorize && color != nil {
		return color.Sprint(label)
	}
	return label
}

// Summary renders the pending request as a table.
func Summary(state form.State) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"Media", describeMedia(state.Media)})
	tw.AppendRow(table.Row{"Transcript", describeTranscript(state.Transcript)})
	tw.AppendRow(table.Row{"Quarter", state.Quarter.String()})
	tw.AppendRow(table.Row{"Category", state.Category.String()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func describeMedia(m form.Media) string {
	if m.Kind == form.MediaNone || m.Encoded == "" {
		return "none"
	}
	data, mimeType, err := media.DecodeDataURI(m.Encoded)
	if err != nil {
		return m.Kind.String() + " (unreadable)"
	}
	return fmt.Sprintf("%s %s (%s)", m.Kind, mimeType, humanize.IBytes(uint64(len(data))))
}

func describeTranscript(transcript string) string {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return "empty"
	}
	lines := strings.Count(trimmed, "\n") + 1
	return fmt.Sprintf("%s lines, %s", humanize.Comma(int64(lines)), humanize.IBytes(uint64(len(transcript))))
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
