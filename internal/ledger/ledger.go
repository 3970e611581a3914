// Package ledger keeps the write-once log of inbound messages and their parsed
// interpretation.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/goaltext/goaltext/internal/parser"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("ledger record not found")

const (
	// SourceTwilio marks messages delivered by the SMS webhook.
	SourceTwilio = "twilio"

	// ResponseParsed marks a response whose message yielded at least one field.
	ResponseParsed = "parsed"
	// ResponseEmpty marks a response whose message yielded nothing.
	ResponseEmpty = "empty"
)

// Message is a raw inbound delivery. It is never mutated after Append.
type Message struct {
	ID                string
	Body              string
	From              string
	To                string
	UserID            string
	ReceivedAt        time.Time
	ProviderMessageID string
	Source            string
}

// Response is the structured interpretation of a logged message.
type Response struct {
	ID              string
	UserID          string
	From            string
	Parsed          parser.Request
	Status          string
	SourceMessageID string
	CreatedAt       time.Time
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
//
// Append is idempotent on ProviderMessageID: a repeated provider id leaves the
// stored record untouched and returns its id with created set to false.
// Messages without a provider id always produce a new record.
type Ledger interface {
	Append(ctx context.Context, msg Message) (id string, created bool, err error)
	Get(ctx context.Context, id string) (Message, error)
	SaveResponse(ctx context.Context, resp Response) (string, error)
}

// StatusFor classifies a parsed request for the response log.
func StatusFor(req parser.Request) string {
	if req.Empty() {
		return ResponseEmpty
	}
	return ResponseParsed
}

func prepare(msg Message) Message {
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}
	if msg.Source == "" {
		msg.Source = SourceTwilio
	}
	return msg
}
