package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goaltext/goaltext/internal/infra"
)

// Repository persists users and phone bindings.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByPhone(ctx context.Context, e164 string) (User, error)
	ListActive(ctx context.Context) ([]User, error)
	SetActivated(ctx context.Context, id string, activated bool, at time.Time) error
	UpdateDevice(ctx context.Context, id, deviceID string, at time.Time) error

	GetBinding(ctx context.Context, e164 string) (PhoneBinding, error)
	// BindPhone atomically binds e164 to userID. It fails with
	// ErrBindingConflict when an active binding points at another user and is
	// a no-op when the same active binding already exists.
	BindPhone(ctx context.Context, e164, userID string, at time.Time) (PhoneBinding, error)
	ReleaseBinding(ctx context.Context, e164 string, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, COALESCE(display_name, ''), COALESCE(email, ''), timezone, phones,
    activated, COALESCE(device_id, ''), created_at, updated_at`

// CreateUser inserts a new user.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	phones := user.Phones
	if phones == nil {
		phones = []string{}
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users
        (id, display_name, email, timezone, phones, activated, device_id, created_at, updated_at)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9)`,
		userID, user.DisplayName, user.Email, user.Timezone, phones, user.Activated, user.DeviceID,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	return err
}

// GetUser fetches a user by identifier.
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// FindUserByPhone returns the first user whose phone list contains e164.
func (r *PostgresRepository) FindUserByPhone(ctx context.Context, e164 string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
        WHERE phones @> ARRAY[$1]::text[] ORDER BY created_at LIMIT 1`, e164))
}

// ListActive returns every user with notifications enabled.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE activated ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetActivated toggles the user's notification state.
func (r *PostgresRepository) SetActivated(ctx context.Context, id string, activated bool, at time.Time) error {
	return r.updateUser(ctx, `UPDATE users SET activated = $1, updated_at = $2 WHERE id = $3`, id, activated, at.UTC())
}

// UpdateDevice stores the user's paired device identifier.
func (r *PostgresRepository) UpdateDevice(ctx context.Context, id, deviceID string, at time.Time) error {
	return r.updateUser(ctx, `UPDATE users SET device_id = $1, updated_at = $2 WHERE id = $3`, id, deviceID, at.UTC())
}

func (r *PostgresRepository) updateUser(ctx context.Context, query, id string, value any, at time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, value, at, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBinding fetches the binding row for e164, active or released.
func (r *PostgresRepository) GetBinding(ctx context.Context, e164 string) (PhoneBinding, error) {
	return scanBinding(r.db.QueryRow(ctx, `SELECT e164, user_id, verified, bound_at, released_at, last_seen, labels
        FROM phone_bindings WHERE e164 = $1`, e164))
}

// BindPhone performs the read-check-write inside one transaction. The upsert
// is additionally guarded so a concurrent insert for the same phone cannot
// steal an active binding.
func (r *PostgresRepository) BindPhone(ctx context.Context, e164, userID string, at time.Time) (PhoneBinding, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return PhoneBinding{}, ErrNotFound
	}

	var bound PhoneBinding
	err = infra.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		existing, err := scanBinding(tx.QueryRow(ctx, `SELECT e164, user_id, verified, bound_at, released_at, last_seen, labels
            FROM phone_bindings WHERE e164 = $1 FOR UPDATE`, e164))
		switch {
		case err == nil && existing.Active() && existing.UserID != userID:
			return ErrBindingConflict
		case err == nil && existing.Active():
			bound = existing
			return nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}

		cmd, err := tx.Exec(ctx, `INSERT INTO phone_bindings (e164, user_id, verified, bound_at, released_at, last_seen, labels)
            VALUES ($1, $2, TRUE, $3, NULL, $3, $4)
            ON CONFLICT (e164) DO UPDATE SET user_id = EXCLUDED.user_id, verified = TRUE,
                bound_at = EXCLUDED.bound_at, released_at = NULL, last_seen = EXCLUDED.last_seen,
                labels = EXCLUDED.labels
            WHERE phone_bindings.released_at IS NOT NULL OR phone_bindings.user_id = EXCLUDED.user_id`,
			e164, uid, at.UTC(), []string{LabelPrimary})
		if err != nil {
			return fmt.Errorf("upsert binding: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrBindingConflict
		}

		cmd, err = tx.Exec(ctx, `UPDATE users
            SET phones = CASE WHEN phones @> ARRAY[$1]::text[] THEN phones ELSE array_append(phones, $1) END,
                updated_at = $2
            WHERE id = $3`, e164, at.UTC(), uid)
		if err != nil {
			return fmt.Errorf("sync user phones: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}

		seen := at.UTC()
		bound = PhoneBinding{
			E164:     e164,
			UserID:   userID,
			Verified: true,
			BoundAt:  seen,
			LastSeen: &seen,
			Labels:   []string{LabelPrimary},
		}
		return nil
	})
	if err != nil {
		return PhoneBinding{}, err
	}
	return bound, nil
}

// ReleaseBinding marks the binding for e164 inactive.
func (r *PostgresRepository) ReleaseBinding(ctx context.Context, e164 string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE phone_bindings SET released_at = $1
        WHERE e164 = $2 AND released_at IS NULL`, at.UTC(), e164)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id   uuid.UUID
		user User
	)
	if err := row.Scan(&id, &user.DisplayName, &user.Email, &user.Timezone, &user.Phones,
		&user.Activated, &user.DeviceID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func scanBinding(row pgx.Row) (PhoneBinding, error) {
	var (
		userID uuid.UUID
		b      PhoneBinding
	)
	if err := row.Scan(&b.E164, &userID, &b.Verified, &b.BoundAt, &b.ReleasedAt, &b.LastSeen, &b.Labels); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PhoneBinding{}, ErrNotFound
		}
		return PhoneBinding{}, err
	}
	b.UserID = userID.String()
	return b, nil
}
