package analysis

import (
	"strings"

	"github.com/rbright/courtside/internal/form"
)

// FilterQuarter keeps the transcript lines that start with "<quarter> " and stops at the first
// line of the following quarter. The full game returns the transcript unchanged.
func FilterQuarter(transcript string, quarter form.Quarter) string {
	if quarter == form.QuarterFullGame {
		return transcript
	}

	prefix := quarter.String() + " "
	var nextPrefix string
	if next := quarter.Next(); next != "" {
		nextPrefix = next.String() + " "
	}

	kept := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(transcript, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
			continue
		}
		if nextPrefix != "" && strings.HasPrefix(line, nextPrefix) {
			break
		}
	}
	return strings.Join(kept, "\n")
}
