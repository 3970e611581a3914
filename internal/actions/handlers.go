package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/goaltext/goaltext/internal/goals"
	"github.com/goaltext/goaltext/internal/identity"
	"github.com/goaltext/goaltext/internal/matcher"
)

const (
	PromptSignupText = "We don't recognize this number yet. Reply YES to link your phone, or visit the app to sign in."
	SignupText       = "You're all set! Text me your goals for today, one per line. Add points like \"Walk the dog 5\". Reply HELP for commands."
	ConflictText     = "This number is already linked to another account."
	HelpText         = "Send goals one per line, e.g. \"Walk the dog 5\".\nMark one done with \"done: walk the dog\".\nLIST shows today's goals. STOP pauses reminders."
	StopText         = "You're unsubscribed from reminders. You can still text me goals anytime."
	NoGoalsText      = "You have no goals for today yet. Text me a few, one per line."
	NoMatchText      = "No matching goals found."
	HelpRequestText  = "Sorry, I didn't catch that. Try \"done: workout\" or send goals one per line. Reply HELP for more."
)

// Identities is the identity store used by the handlers.
type Identities interface {
	Get(ctx context.Context, userID string) (identity.User, error)
	Bind(ctx context.Context, e164, userID string) (identity.PhoneBinding, error)
	SetActivated(ctx context.Context, userID string, activated bool) error
	PairDevice(ctx context.Context, userID, deviceID string) error
}

// Goals is the goal store used by the handlers.
type Goals interface {
	AddToday(ctx context.Context, userID, tz string, drafts []goals.Draft) ([]goals.Goal, error)
	Today(ctx context.Context, userID, tz string) ([]goals.Goal, error)
	CompleteToday(ctx context.Context, userID, tz string, targets []string) ([]matcher.Match, []goals.Goal, error)
}

type handlers struct {
	identities Identities
	goals      Goals
}

// Handlers returns the dispatch table for every Kind.
func Handlers(identities Identities, goalStore Goals) map[Kind]Handler {
	h := &handlers{identities: identities, goals: goalStore}
	return map[Kind]Handler{
		PromptSignup: h.promptSignup,
		Signup:       h.signup,
		SendHelp:     h.sendHelp,
		Stop:         h.stop,
		ListGoals:    h.listGoals,
		SetGoals:     h.setGoals,
		MarkDone:     h.markDone,
		PairDevice:   h.pairDevice,
		HelpRequest:  h.helpRequest,
	}
}

func (h *handlers) promptSignup(context.Context, Call) (string, error) {
	return PromptSignupText, nil
}

func (h *handlers) signup(ctx context.Context, call Call) (string, error) {
	if _, err := h.identities.Bind(ctx, call.Phone, call.UserID); err != nil {
		if errors.Is(err, identity.ErrBindingConflict) {
			return ConflictText, nil
		}
		return "", err
	}
	return SignupText, nil
}

func (h *handlers) sendHelp(context.Context, Call) (string, error) {
	return HelpText, nil
}

func (h *handlers) stop(ctx context.Context, call Call) (string, error) {
	if err := h.identities.SetActivated(ctx, call.UserID, false); err != nil {
		return "", err
	}
	return StopText, nil
}

func (h *handlers) listGoals(ctx context.Context, call Call) (string, error) {
	tz, err := h.timezone(ctx, call.UserID)
	if err != nil {
		return "", err
	}
	today, err := h.goals.Today(ctx, call.UserID, tz)
	if err != nil {
		return "", err
	}
	if len(today) == 0 {
		return NoGoalsText, nil
	}
	return "Today's goals:\n" + goals.Checklist(today) + "\n" + goals.Summarize(today).Progress(), nil
}

func (h *handlers) setGoals(ctx context.Context, call Call) (string, error) {
	tz, err := h.timezone(ctx, call.UserID)
	if err != nil {
		return "", err
	}
	drafts := make([]goals.Draft, len(call.Request.NewGoals))
	for i, g := range call.Request.NewGoals {
		drafts[i] = goals.Draft{Text: g.Text, Points: g.Points}
	}
	added, err := h.goals.AddToday(ctx, call.UserID, tz, drafts)
	if err != nil {
		return "", err
	}
	if len(added) == 0 {
		return "", nil
	}
	titles := make([]string, len(added))
	for i, g := range added {
		titles[i] = g.Text
	}
	return "Got it! I logged these goals:\n- " + strings.Join(titles, "\n- "), nil
}

func (h *handlers) markDone(ctx context.Context, call Call) (string, error) {
	tz, err := h.timezone(ctx, call.UserID)
	if err != nil {
		return "", err
	}
	matches, today, err := h.goals.CompleteToday(ctx, call.UserID, tz, call.Request.MarkDone)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return NoMatchText, nil
	}
	done := make([]string, len(matches))
	for i, m := range matches {
		done[i] = m.Stored
	}
	return "Nice work! Marked done:\n- " + strings.Join(done, "\n- ") + "\n" + goals.Summarize(today).Progress(), nil
}

func (h *handlers) pairDevice(ctx context.Context, call Call) (string, error) {
	if err := h.identities.PairDevice(ctx, call.UserID, call.Request.DeviceID); err != nil {
		return "", err
	}
	return "Paired device " + strings.TrimSpace(call.Request.DeviceID) + ".", nil
}

func (h *handlers) helpRequest(context.Context, Call) (string, error) {
	return HelpRequestText, nil
}

func (h *handlers) timezone(ctx context.Context, userID string) (string, error) {
	user, err := h.identities.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Timezone, nil
}
