package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists messages and responses in PostgreSQL.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Append inserts msg, keyed by its provider id when one is present.
func (l *PostgresLedger) Append(ctx context.Context, msg Message) (string, bool, error) {
	msg = prepare(msg)

	id := msg.ProviderMessageID
	if id == "" {
		id = uuid.NewString()
	}

	tag, err := l.db.Exec(ctx, `INSERT INTO messages
        (id, provider_message_id, body, from_phone, to_phone, user_id, received_at, source)
        VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
        ON CONFLICT (id) DO NOTHING`,
		id, msg.ProviderMessageID, msg.Body, msg.From, msg.To, msg.UserID, msg.ReceivedAt.UTC(), msg.Source)
	if err != nil {
		return "", false, fmt.Errorf("append message: %w", err)
	}
	return id, tag.RowsAffected() == 1, nil
}

// Get fetches a message by record id.
func (l *PostgresLedger) Get(ctx context.Context, id string) (Message, error) {
	row := l.db.QueryRow(ctx, `SELECT id, COALESCE(provider_message_id, ''), body, from_phone,
        COALESCE(to_phone, ''), COALESCE(user_id, ''), received_at, source
        FROM messages WHERE id = $1`, id)
	var (
		msg        Message
		receivedAt time.Time
	)
	if err := row.Scan(&msg.ID, &msg.ProviderMessageID, &msg.Body, &msg.From, &msg.To, &msg.UserID, &receivedAt, &msg.Source); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, ErrNotFound
		}
		return Message{}, err
	}
	msg.ReceivedAt = receivedAt.UTC()
	return msg, nil
}

// SaveResponse records the parsed interpretation of a message.
func (l *PostgresLedger) SaveResponse(ctx context.Context, resp Response) (string, error) {
	parsed, err := json.Marshal(resp.Parsed)
	if err != nil {
		return "", fmt.Errorf("encode parsed request: %w", err)
	}
	if resp.Status == "" {
		resp.Status = StatusFor(resp.Parsed)
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}

	id := uuid.New()
	_, err = l.db.Exec(ctx, `INSERT INTO user_responses
        (id, user_id, from_phone, parsed, parse_status, source_message_id, created_at)
        VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, ''), $7)`,
		id, resp.UserID, resp.From, parsed, resp.Status, resp.SourceMessageID, resp.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("save response: %w", err)
	}
	return id.String(), nil
}
