package goals

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/goaltext/goaltext/internal/matcher"
)

// Service manages a user's goals for the current day.
type Service struct {
	repo            Repository
	matcher         *matcher.Matcher
	defaultTimezone string
	now             func() time.Time
}

// NewService creates a goal service. Users without a usable timezone are
// scoped to defaultTimezone.
func NewService(repo Repository, m *matcher.Matcher, defaultTimezone string) *Service {
	if m == nil {
		m = matcher.New(matcher.DefaultConfig())
	}
	return &Service{repo: repo, matcher: m, defaultTimezone: defaultTimezone, now: time.Now}
}

// DayKey returns today's calendar date in tz.
func (s *Service) DayKey(tz string) string {
	return s.now().In(s.location(tz)).Format(DayKeyLayout)
}

func (s *Service) location(tz string) *time.Location {
	for _, name := range []string{tz, s.defaultTimezone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// AddToday stores drafts under today's day key and returns the stored goals.
func (s *Service) AddToday(ctx context.Context, userID, tz string, drafts []Draft) ([]Goal, error) {
	dayKey := s.DayKey(tz)
	now := s.now().UTC()

	goals := make([]Goal, 0, len(drafts))
	for i, d := range drafts {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		if d.Points < 0 {
			return nil, fmt.Errorf("goal %q: points must not be negative", text)
		}
		goals = append(goals, Goal{
			ID:     uuid.New().String(),
			UserID: userID,
			DayKey: dayKey,
			Text:   text,
			Points: d.Points,
			// Keep insertion order stable for drafts written in the same instant.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	if err := s.repo.Add(ctx, goals); err != nil {
		return nil, fmt.Errorf("add goals: %w", err)
	}
	return goals, nil
}

// Today lists the user's goals for today.
func (s *Service) Today(ctx context.Context, userID, tz string) ([]Goal, error) {
	return s.repo.ListDay(ctx, userID, s.DayKey(tz))
}

// CompleteToday matches targets against today's open goals and completes the
// claimed ones in a single batch. It returns the matches and the day's goals
// after the update.
func (s *Service) CompleteToday(ctx context.Context, userID, tz string, targets []string) ([]matcher.Match, []Goal, error) {
	dayKey := s.DayKey(tz)
	goals, err := s.repo.ListDay(ctx, userID, dayKey)
	if err != nil {
		return nil, nil, fmt.Errorf("list goals: %w", err)
	}

	var open []matcher.Candidate
	for _, g := range goals {
		if !g.Complete {
			open = append(open, matcher.Candidate{ID: g.ID, Text: g.Text})
		}
	}
	matches := s.matcher.Match(targets, open)
	if len(matches) == 0 {
		return nil, goals, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.GoalID
	}
	now := s.now().UTC()
	if err := s.repo.MarkComplete(ctx, userID, dayKey, ids, now); err != nil {
		return nil, nil, fmt.Errorf("complete goals: %w", err)
	}

	claimed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		claimed[id] = struct{}{}
	}
	for i := range goals {
		if _, ok := claimed[goals[i].ID]; ok {
			ts := now
			goals[i].Complete = true
			goals[i].CompletedAt = &ts
			goals[i].UpdatedAt = &ts
		}
	}
	return matches, goals, nil
}
