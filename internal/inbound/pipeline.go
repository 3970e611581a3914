// Package inbound runs one inbound SMS through normalization, identity
// resolution, logging, parsing, routing, execution and reply composition.
package inbound

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goaltext/goaltext/internal/actions"
	"github.com/goaltext/goaltext/internal/ledger"
	"github.com/goaltext/goaltext/internal/parser"
	"github.com/goaltext/goaltext/internal/phone"
	"github.com/goaltext/goaltext/internal/reply"
)

const (
	// InvalidPhoneText is returned when the sender's number cannot be read.
	InvalidPhoneText = "We couldn't read your phone number."
	// ThrottledText is returned to senders over the inbound rate limit.
	ThrottledText = "You're sending messages too quickly. Please try again in a minute."
	// DuplicateText answers a redelivery of a message that was already handled.
	DuplicateText = "We already got that message, thanks!"
)

// Message is an inbound delivery as received by the transport.
type Message struct {
	From              string
	Body              string
	To                string
	ProviderMessageID string
}

// Result describes how a message was handled.
type Result struct {
	Phone     string
	UserID    string
	MessageID string
	State     actions.State
	Actions   []actions.Kind
	Reply     string
	// Duplicate is set when the provider id was already on record.
	Duplicate bool
}

// Identities resolves senders to users.
type Identities interface {
	Resolve(ctx context.Context, e164 string) (string, bool, error)
	IsBound(ctx context.Context, e164, userID string) (bool, error)
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Region     string
	Identities Identities
	Ledger     ledger.Ledger
	Executor   *actions.Executor
	Logger     *slog.Logger
}

// Pipeline processes inbound messages. It is safe for concurrent use when its
// collaborators are.
type Pipeline struct {
	region     string
	identities Identities
	ledger     ledger.Ledger
	executor   *actions.Executor
	logger     *slog.Logger
}

// New builds a pipeline from deps.
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		region:     deps.Region,
		identities: deps.Identities,
		ledger:     deps.Ledger,
		executor:   deps.Executor,
		logger:     logger,
	}
}

// Process handles msg and always returns a reply. Failures are logged and
// turned into a friendly fallback.
func (p *Pipeline) Process(ctx context.Context, msg Message) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("inbound pipeline panic",
				slog.String("from", msg.From),
				slog.String("message_sid", msg.ProviderMessageID),
				slog.String("panic", fmt.Sprint(r)),
			)
			res.Reply = reply.Fallback
		}
	}()

	e164, err := phone.Normalize(msg.From, p.region)
	if err != nil {
		p.logger.Warn("unreadable sender phone", slog.String("from", msg.From), slog.String("error", err.Error()))
		// Keep the delivery on record under the raw sender.
		if _, _, logErr := p.append(ctx, msg, msg.From, ""); logErr != nil {
			p.logger.Error("ledger append failed", slog.String("error", logErr.Error()))
		}
		return Result{Reply: InvalidPhoneText}
	}
	res.Phone = e164

	userID, found, err := p.identities.Resolve(ctx, e164)
	if err != nil {
		p.logger.Error("resolve identity failed", slog.String("phone", e164), slog.String("error", err.Error()))
		res.Reply = reply.Fallback
		return res
	}
	res.UserID = userID

	var created bool
	res.MessageID, created, err = p.append(ctx, msg, e164, userID)
	if err != nil {
		p.logger.Error("ledger append failed", slog.String("phone", e164), slog.String("error", err.Error()))
		res.Reply = reply.Fallback
		return res
	}
	if !created {
		p.logger.Info("duplicate delivery skipped", slog.String("phone", e164), slog.String("message_id", res.MessageID))
		res.Duplicate = true
		res.Reply = DuplicateText
		return res
	}

	req := parser.Parse(msg.Body)
	if _, err := p.ledger.SaveResponse(ctx, ledger.Response{
		UserID:          userID,
		From:            e164,
		Parsed:          req,
		Status:          ledger.StatusFor(req),
		SourceMessageID: res.MessageID,
	}); err != nil {
		p.logger.Warn("save parsed response failed", slog.String("message_id", res.MessageID), slog.String("error", err.Error()))
	}

	res.State = actions.NoIdentity
	if found {
		bound, err := p.identities.IsBound(ctx, e164, userID)
		if err != nil {
			p.logger.Error("binding check failed", slog.String("phone", e164), slog.String("error", err.Error()))
			res.Reply = reply.Fallback
			return res
		}
		res.State = actions.Unbound
		if bound {
			res.State = actions.Bound
		}
	}

	plan := actions.Route(res.State, req)
	res.Actions = plan.Kinds()
	outcomes := p.executor.Run(ctx, plan, actions.Call{Phone: e164, UserID: userID, Request: req})
	res.Reply = reply.Compose(reply.FromOutcomes(outcomes))

	p.logger.Info("inbound processed",
		slog.String("phone", e164),
		slog.String("user_id", userID),
		slog.String("message_id", res.MessageID),
		slog.String("state", res.State.String()),
		slog.Int("actions", len(res.Actions)),
	)
	return res
}

// Throttle records a delivery that arrived over the sender's rate limit
// without acting on it, and returns the slow-down notice.
func (p *Pipeline) Throttle(ctx context.Context, msg Message) Result {
	from := msg.From
	if e164, err := phone.Normalize(msg.From, p.region); err == nil {
		from = e164
	}
	res := Result{Phone: from, Reply: ThrottledText}

	id, _, err := p.append(ctx, msg, from, "")
	if err != nil {
		p.logger.Error("ledger append failed", slog.String("phone", from), slog.String("error", err.Error()))
		return res
	}
	res.MessageID = id
	p.logger.Warn("inbound throttled", slog.String("phone", from), slog.String("message_id", id))
	return res
}

func (p *Pipeline) append(ctx context.Context, msg Message, from, userID string) (string, bool, error) {
	return p.ledger.Append(ctx, ledger.Message{
		Body:              msg.Body,
		From:              from,
		To:                msg.To,
		UserID:            userID,
		ProviderMessageID: msg.ProviderMessageID,
		Source:            ledger.SourceTwilio,
	})
}
