package goals

import (
	"fmt"
	"strings"
)

// Checklist renders goals one per line as "✓ text (N pt)" or "▢ text (N pt)".
func Checklist(goals []Goal) string {
	lines := make([]string, len(goals))
	for i, g := range goals {
		mark := "▢"
		if g.Complete {
			mark = "✓"
		}
		lines[i] = fmt.Sprintf("%s %s (%d pt)", mark, g.Text, g.Points)
	}
	return strings.Join(lines, "\n")
}

// Progress renders the day aggregate line.
func (s Summary) Progress() string {
	return fmt.Sprintf("Progress: %d/%d pts", s.CompletedPoints, s.TotalPoints)
}
