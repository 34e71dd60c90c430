// Package engine runs the model call behind the analysis server.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/courtside/internal/form"
)

// Attachment is one decoded media input.
type Attachment struct {
	MIMEType string
	Data     []byte
	// DataURI is the original encoded form, forwarded as-is where a provider accepts URIs.
	DataURI string
}

// Present reports whether the attachment carries data.
func (a Attachment) Present() bool { return len(a.Data) > 0 }

// Input is everything an engine needs to find the momentum-shifting play.
type Input struct {
	Quarter    form.Quarter
	Category   form.Category
	Transcript string
	Image      Attachment
	Video      Attachment
}

// Engine produces the insight text for one analysis.
type Engine interface {
	Name() string
	Analyze(ctx context.Context, in Input) (string, error)
}

// SystemPrompt frames the coach persona for one quarter and court level.
func SystemPrompt(quarter form.Quarter, category form.Category) string {
	focus := "the full game"
	if quarter != form.QuarterFullGame {
		focus = quarter.String() + " only"
	}
	return fmt.Sprintf(
		"You are a veteran basketball coach who can see both text and images. "+
			"The game was played on a %s court. Focus on %s. "+
			"Identify the exact spot on the court where the most momentum-shifting 3-pointer occurred, "+
			"explain why that shot shifted momentum, and state the score immediately afterward. "+
			"Format: Location on court - Quarter, Time, Player, Description.",
		strings.ToLower(category.String()),
		focus,
	)
}

// TranscriptPrompt wraps the filtered play-by-play for the user turn.
func TranscriptPrompt(transcript string, hasCourt bool) string {
	intro := "Below is the play-by-play transcript."
	if hasCourt {
		intro = "Using the court diagram provided, read the play-by-play transcript below."
	}
	return intro + "\n\n" + transcript
}
