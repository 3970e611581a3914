// Package reminder sends the daily morning prompt and evening status to
// active users.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/goaltext/goaltext/internal/goals"
	"github.com/goaltext/goaltext/internal/identity"
	"github.com/goaltext/goaltext/internal/notification"
)

const defaultConcurrency = 8

// MorningText asks for the day's goals.
const MorningText = `Good morning! 🌞

What are your top goals for today?

You can include points with your goals to set priorities:
- "Walk the dog 5"
- "Go to the gym 10"
- "Finish project 3"

Send multiple goals on separate lines.`

// EveningFallbackText is sent when the day's goals cannot be loaded.
const EveningFallbackText = `Good evening! 🌆

How did your day go? Text me any updates!`

// Users lists reminder recipients.
type Users interface {
	ListActive(ctx context.Context) ([]identity.User, error)
}

// Goals reads a user's goals for today.
type Goals interface {
	Today(ctx context.Context, userID, tz string) ([]goals.Goal, error)
}

// Report counts the outcome of one run.
type Report struct {
	Sent    int64
	Failed  int64
	Skipped int64
}

// Job fans reminders out to active users.
type Job struct {
	users       Users
	goals       Goals
	sender      notification.Sender
	logger      *slog.Logger
	concurrency int
}

// NewJob builds a reminder job. concurrency bounds parallel sends; values
// below one use a default.
func NewJob(users Users, goalStore Goals, sender notification.Sender, logger *slog.Logger, concurrency int) *Job {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Job{users: users, goals: goalStore, sender: sender, logger: logger, concurrency: concurrency}
}

// Morning sends the goal-setting prompt.
func (j *Job) Morning(ctx context.Context) (Report, error) {
	return j.run(ctx, notification.KindMorningPrompt, func(context.Context, identity.User) string {
		return MorningText
	})
}

// Evening sends each user's progress for today.
func (j *Job) Evening(ctx context.Context) (Report, error) {
	return j.run(ctx, notification.KindEveningStatus, j.eveningMessage)
}

func (j *Job) eveningMessage(ctx context.Context, user identity.User) string {
	today, err := j.goals.Today(ctx, user.ID, user.Timezone)
	if err != nil {
		j.logger.Error("load goals for evening status", slog.String("user_id", user.ID), slog.Any("error", err))
		return EveningFallbackText
	}
	return EveningText(today)
}

// EveningText renders the evening check-in for goals.
func EveningText(today []goals.Goal) string {
	if len(today) == 0 {
		return "Good evening! 🌆\n\nYou didn't set any goals today. Reply with a few for tomorrow, one per line."
	}
	return fmt.Sprintf(`Good evening! 🌆

Here's your progress today:

%s

%s

Reply with "done <goal name>" to mark any incomplete goals as done!`, goals.Checklist(today), goals.Summarize(today).Progress())
}

func (j *Job) run(ctx context.Context, kind string, build func(context.Context, identity.User) string) (Report, error) {
	users, err := j.users.ListActive(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list active users: %w", err)
	}
	j.logger.Info("reminder run started", slog.String("kind", kind), slog.Int("users", len(users)))

	var sent, failed, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for _, user := range users {
		to := user.PrimaryPhone()
		if to == "" {
			skipped.Add(1)
			continue
		}
		user := user
		g.Go(func() error {
			msg := notification.Message{Kind: kind, To: to, Body: build(gctx, user)}
			if err := j.sender.Send(gctx, msg); err != nil {
				failed.Add(1)
				j.logger.Error("send reminder", slog.String("kind", kind), slog.String("user_id", user.ID), slog.Any("error", err))
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Sent: sent.Load(), Failed: failed.Load(), Skipped: skipped.Load()}
	j.logger.Info("reminder run finished",
		slog.String("kind", kind),
		slog.Int64("sent", report.Sent),
		slog.Int64("failed", report.Failed),
		slog.Int64("skipped", report.Skipped),
	)
	return report, ctx.Err()
}
