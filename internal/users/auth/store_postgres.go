// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, fullname, phone, role, isactive, isverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, fullname, phone, role, isactive, isverified, createdat, updatedat
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, fullname, phone, role, isactive, isverified, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user := &User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindPrincipal resolves an account ID into a request principal in one read.

Description: Left-joins the vendor profile so vendor accounts carry their
approval status and the admin-supplied reason; non-vendor accounts come back
with an empty status.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *sec.Principal: Identity snapshot for the access chain
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindPrincipal(context context.Context, id string) (*sec.Principal, error) {
	const query = `
		SELECT account.id, account.role, account.isactive,
		       COALESCE(profile.status, ''), COALESCE(profile.statusreason, '')
		FROM users.account AS account
		LEFT JOIN vendors.profile AS profile ON profile.userid = account.id
		WHERE account.id = $1 AND account.deletedat IS NULL`

	principal := &sec.Principal{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&principal.UserID,
		&principal.Role,
		&principal.IsActive,
		&principal.VendorStatus,
		&principal.VendorStatusReason,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_principal_failed: %w", err)
	}

	return principal, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
UpdateRole replaces the account's role.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.Role

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateRole(context context.Context, userID string, role sec.Role) error {
	const query = `
		UPDATE users.account
		SET role = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_role_failed: %w", err)
	}

	return nil
}

/*
SetActive flips the account's active flag.

Description: Admin-driven deactivation or reactivation. The row is kept.

Parameters:
  - context: context.Context
  - userID: string
  - active: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetActive(context context.Context, userID string, active bool) error {
	const query = "UPDATE users.account SET isactive = $2, updatedat = $3 WHERE id = $1 AND deletedat IS NULL"
	_, err := repository.pool.Exec(context, query, userID, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_active_failed: %w", err)
	}
	return nil
}

/*
MarkVerified updates the user's status to isverified = true.

Description: Post-verification cleanup to activate the account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = "UPDATE users.account SET isverified = TRUE, updatedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements the SessionRepository interface.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new session record into the users.session table.

Description: Records a successful authentication session in persistent storage.
The client metadata map is stored as JSONB.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, userid, tokenhash, clientmeta, useragent, ipaddress, isactive, expiresat, lastseenat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = now
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ClientMeta,
		session.UserAgent,
		session.IPAddress,
		session.IsActive,
		session.ExpiresAt,
		session.LastSeenAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindUsableByTokenHash retrieves an active, unexpired session by its token hash.

Description: Securely resolves an opaque token hash into a usable session.
A miss (unknown, invalidated, or expired) surfaces as apperr.SessionNotFound.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.SessionNotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindUsableByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, userid, tokenhash, clientmeta, useragent, ipaddress, isactive, expiresat, lastseenat, createdat
		FROM users.session
		WHERE tokenhash = $1 AND isactive = TRUE AND expiresat > NOW()`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.ClientMeta,
		&session.UserAgent,
		&session.IPAddress,
		&session.IsActive,
		&session.ExpiresAt,
		&session.LastSeenAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.SessionNotFound()
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
Touch updates the session's last-seen timestamp.

Description: Activity tracking only. The expiry window is fixed at creation
and never moves.

Parameters:
  - context: context.Context
  - sessionID: string
  - seenAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresSessionRepository) Touch(context context.Context, sessionID string, seenAt time.Time) error {
	const query = "UPDATE users.session SET lastseenat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, sessionID, seenAt)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_touch_failed: %w", err)
	}
	return nil
}

/*
InvalidateByTokenHash marks the session with the given token hash as unusable.

Description: Idempotent revocation. Zero affected rows is a success.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresSessionRepository) InvalidateByTokenHash(context context.Context, tokenHash string) error {
	const query = "UPDATE users.session SET isactive = FALSE, lastseenat = $2 WHERE tokenhash = $1 AND isactive = TRUE"
	_, err := repository.pool.Exec(context, query, tokenHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_session_repo_invalidate_failed: %w", err)
	}
	return nil
}

/*
InvalidateAll marks all active sessions for a user as unusable.

Description: Security nuking of every device the user is signed in on.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresSessionRepository) InvalidateAll(context context.Context, userID string) error {
	const query = "UPDATE users.session SET isactive = FALSE, lastseenat = $2 WHERE userid = $1 AND isactive = TRUE"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_session_repo_invalidate_all_failed: %w", err)
	}
	return nil
}

/*
DeleteSweepable permanently removes sessions the sweeper is allowed to reclaim.

Description: Deletes rows that are past their expiry window, plus invalidated
rows whose last activity predates the retention cutoff.

Parameters:
  - context: context.Context
  - now: time.Time
  - retention: time.Duration

Returns:
  - int64: Number of rows removed
  - error: Cleanup failures
*/
func (repository *PostgresSessionRepository) DeleteSweepable(context context.Context, now time.Time, retention time.Duration) (int64, error) {
	const query = `
		DELETE FROM users.session
		WHERE expiresat <= $1
		   OR (isactive = FALSE AND lastseenat < $2)`

	tag, err := repository.pool.Exec(context, query, now, now.Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_sweepable_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

/*
ListActive returns summaries of the user's active, unexpired sessions.

Description: Powers the "devices" screen. Newest first, no token material.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionSummary: Device list
  - error: Execution errors
*/
func (repository *PostgresSessionRepository) ListActive(context context.Context, userID string) ([]SessionSummary, error) {
	const query = `
		SELECT id, useragent, ipaddress, createdat, lastseenat, expiresat
		FROM users.session
		WHERE userid = $1 AND isactive = TRUE AND expiresat > NOW()
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_active_failed: %w", err)
	}
	defer rows.Close()

	summaries := []SessionSummary{}
	for rows.Next() {
		var summary SessionSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.UserAgent,
			&summary.IPAddress,
			&summary.CreatedAt,
			&summary.LastSeenAt,
			&summary.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_session_repo_list_scan_failed: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_rows_failed: %w", err)
	}

	return summaries, nil
}
