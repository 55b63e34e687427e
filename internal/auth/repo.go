package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByLogin(ctx context.Context, login string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error
	RecordLoginFailure(ctx context.Context, id int64, lockAfter int, lockFor time.Duration) (int, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UnlockAccount(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, username, email, password_hash, role, is_active, created_at, created_by, last_login, failed_login_attempts, locked_until`

func (r *PGRepository) scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var role string
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.IsActive,
		&a.CreatedAt, &a.CreatedBy, &a.LastLogin, &a.FailedLoginAttempts, &a.LockedUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	a.Role = authz.ParseRole(role)
	return &a, nil
}

// FindByLogin fetches an account by username or email.
func (r *PGRepository) FindByLogin(ctx context.Context, login string) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM admin_users WHERE username = $1 OR email = $1`, login)
	return r.scanAccount(row)
}

// FindByID fetches an account by ID.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM admin_users WHERE id = $1`, id)
	return r.scanAccount(row)
}

// RecordLoginSuccess resets failure counters and stamps the login time.
func (r *PGRepository) RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET failed_login_attempts = 0, locked_until = NULL, last_login = $2 WHERE id = $1`,
		id, at.UTC())
	return err
}

// RecordLoginFailure increments the failure counter and applies a lockout
// once the threshold is crossed. Returns the new attempt count.
func (r *PGRepository) RecordLoginFailure(ctx context.Context, id int64, lockAfter int, lockFor time.Duration) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx,
		`UPDATE admin_users
		 SET failed_login_attempts = failed_login_attempts + 1,
		     locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN now() + $3::interval ELSE locked_until END
		 WHERE id = $1
		 RETURNING failed_login_attempts`,
		id, lockAfter, lockFor.String()).Scan(&attempts)
	return attempts, err
}

// UpdatePassword replaces the stored password hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	return err
}

// UnlockAccount clears lockout state and failure counters.
func (r *PGRepository) UnlockAccount(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET failed_login_attempts = 0, locked_until = NULL WHERE id = $1`, id)
	return err
}

// CreateSession persists a login session record for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admin_sessions (id, user_id, created_at, expires_at, ip, ua) VALUES ($1, $2, now(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	return err
}

// DeleteExpiredSessions removes session records that expired before the cutoff.
func (r *PGRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
