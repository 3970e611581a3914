// Package goals stores per-day goals and completes them from free-text phrases.
package goals

import (
	"errors"
	"time"
)

// DayKeyLayout formats the user-local calendar date that scopes a day's goals.
const DayKeyLayout = "2006-01-02"

// ErrNotFound is returned when a goal id is unknown for the user and day.
var ErrNotFound = errors.New("goal not found")

// Goal is a single day-scoped objective.
type Goal struct {
	ID          string
	UserID      string
	DayKey      string
	Text        string
	Points      int
	Complete    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	CompletedAt *time.Time
}

// Draft is a goal awaiting storage.
type Draft struct {
	Text   string
	Points int
}

// Summary aggregates a day's goals.
type Summary struct {
	TotalPoints     int
	CompletedPoints int
	Open            int
	Done            int
}

// Summarize derives the day aggregate from goals.
func Summarize(goals []Goal) Summary {
	var s Summary
	for _, g := range goals {
		s.TotalPoints += g.Points
		if g.Complete {
			s.CompletedPoints += g.Points
			s.Done++
		} else {
			s.Open++
		}
	}
	return s
}
