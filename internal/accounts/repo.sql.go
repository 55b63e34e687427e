package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for admin accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const adminColumns = `id, username, email, role, is_active, created_at, created_by, last_login, locked_until`

func scanAdmin(row pgx.Row) (*Admin, error) {
	var a Admin
	var role string
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &role, &a.IsActive,
		&a.CreatedAt, &a.CreatedBy, &a.LastLogin, &a.LockedUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	a.Role = authz.ParseRole(role)
	return &a, nil
}

// List returns admin accounts matching the optional search, newest first.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Admin, int, error) {
	pattern := "%" + search + "%"
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM admin_users WHERE $1 = '' OR username ILIKE $2 OR email ILIKE $2`,
		search, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+adminColumns+` FROM admin_users
		 WHERE $1 = '' OR username ILIKE $2 OR email ILIKE $2
		 ORDER BY id
		 LIMIT $3 OFFSET $4`,
		search, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admins []Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, 0, err
		}
		admins = append(admins, *admin)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

// Get fetches an admin account by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Admin, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id)
	return scanAdmin(row)
}

// Create inserts a new admin account. Unique constraint violations map to
// shared.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, username, email, passwordHash string, role authz.Role, createdBy int64) (*Admin, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO admin_users (username, email, password_hash, role, is_active, created_at, created_by)
		 VALUES ($1, $2, $3, $4, TRUE, now(), $5)
		 RETURNING `+adminColumns,
		username, email, passwordHash, role.String(), createdBy)
	admin, err := scanAdmin(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return admin, nil
}

// UpdateFields applies the provided optional fields to an account.
func (r *Repository) UpdateFields(ctx context.Context, id int64, username, email *string, isActive *bool, role *authz.Role) (*Admin, error) {
	var roleStr *string
	if role != nil {
		s := role.String()
		roleStr = &s
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE admin_users SET
		   username  = COALESCE($2, username),
		   email     = COALESCE($3, email),
		   is_active = COALESCE($4, is_active),
		   role      = COALESCE($5, role)
		 WHERE id = $1
		 RETURNING `+adminColumns,
		id, username, email, isActive, roleStr)
	admin, err := scanAdmin(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return admin, nil
}

// Delete removes an admin account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ResetPassword replaces the hash and clears lockout state.
func (r *Repository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET password_hash = $2, failed_login_attempts = 0, locked_until = NULL WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
