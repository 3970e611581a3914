package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goaltext/goaltext/internal/parser"
)

// ErrNoHandler is wrapped when a planned action has no registered handler.
var ErrNoHandler = errors.New("no handler registered")

// Call carries everything a handler may need about the message.
type Call struct {
	Phone   string
	UserID  string
	Request parser.Request
}

// Handler runs one action and returns its reply fragment, possibly empty.
type Handler func(ctx context.Context, call Call) (string, error)

// ExecutorError reports a failed or panicking action.
type ExecutorError struct {
	Kind Kind
	Err  error
}

func (e *ExecutorError) Error() string {
	return fmt.Sprintf("action %s: %v", e.Kind, e.Err)
}

func (e *ExecutorError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one executed action.
type Outcome struct {
	Kind Kind
	Text string
	Err  error
}

// Executor runs plans against a dispatch table.
type Executor struct {
	handlers map[Kind]Handler
	logger   *slog.Logger
}

// NewExecutor builds an executor over handlers.
func NewExecutor(handlers map[Kind]Handler, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{handlers: handlers, logger: logger}
}

// Run executes the plan in order. A failing action yields an empty outcome
// carrying an *ExecutorError; the remaining actions still run.
func (e *Executor) Run(ctx context.Context, plan Plan, call Call) []Outcome {
	outcomes := make([]Outcome, 0, len(plan.kinds))
	for _, kind := range plan.kinds {
		text, err := e.run(ctx, kind, call)
		if err != nil {
			execErr := &ExecutorError{Kind: kind, Err: err}
			e.logger.Error("action failed",
				slog.String("action", kind.String()),
				slog.String("user_id", call.UserID),
				slog.String("error", err.Error()),
			)
			outcomes = append(outcomes, Outcome{Kind: kind, Err: execErr})
			continue
		}
		outcomes = append(outcomes, Outcome{Kind: kind, Text: text})
	}
	return outcomes
}

func (e *Executor) run(ctx context.Context, kind Kind, call Call) (text string, err error) {
	handler, ok := e.handlers[kind]
	if !ok {
		return "", ErrNoHandler
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, call)
}
