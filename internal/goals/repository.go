package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goaltext/goaltext/internal/infra"
)

// Repository persists goals.
type Repository interface {
	Add(ctx context.Context, goals []Goal) error
	ListDay(ctx context.Context, userID, dayKey string) ([]Goal, error)
	// MarkComplete flags every id as complete in one all-or-nothing write.
	MarkComplete(ctx context.Context, userID, dayKey string, ids []string, at time.Time) error
}

// PostgresRepository stores goals in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts goals in a single transaction.
func (r *PostgresRepository) Add(ctx context.Context, goals []Goal) error {
	if len(goals) == 0 {
		return nil
	}
	return infra.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, g := range goals {
			id, err := uuid.Parse(g.ID)
			if err != nil {
				return err
			}
			userID, err := uuid.Parse(g.UserID)
			if err != nil {
				return err
			}
			batch.Queue(`INSERT INTO goals (id, user_id, day_key, goal_text, points, complete, created_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id, userID, g.DayKey, g.Text, g.Points, g.Complete, g.CreatedAt.UTC())
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert goals: %w", err)
		}
		return nil
	})
}

// ListDay returns the user's goals for dayKey in creation order.
func (r *PostgresRepository) ListDay(ctx context.Context, userID, dayKey string) ([]Goal, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, day_key, goal_text, points, complete, created_at, updated_at, completed_at
        FROM goals WHERE user_id = $1 AND day_key = $2 ORDER BY created_at, id`, uid, dayKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var (
			g         Goal
			id, owner uuid.UUID
		)
		if err := rows.Scan(&id, &owner, &g.DayKey, &g.Text, &g.Points, &g.Complete, &g.CreatedAt, &g.UpdatedAt, &g.CompletedAt); err != nil {
			return nil, err
		}
		g.ID = id.String()
		g.UserID = owner.String()
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// MarkComplete completes all ids in one transaction.
func (r *PostgresRepository) MarkComplete(ctx context.Context, userID, dayKey string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	goalIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("goal id %q: %w", id, ErrNotFound)
		}
		goalIDs = append(goalIDs, parsed)
	}

	return infra.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `UPDATE goals SET complete = TRUE, completed_at = $1, updated_at = $1
            WHERE user_id = $2 AND day_key = $3 AND id = ANY($4)`, at.UTC(), uid, dayKey, goalIDs)
		if err != nil {
			return fmt.Errorf("mark goals complete: %w", err)
		}
		// Any id outside the user's day rolls the whole batch back.
		if int(cmd.RowsAffected()) != len(goalIDs) {
			return ErrNotFound
		}
		return nil
	})
}
