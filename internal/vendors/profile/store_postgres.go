// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package profile

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

// # Profile Repository

// PostgresProfileRepository implements the ProfileRepository interface using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL implementation of ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

/*
Create persists a new vendor application into the vendors.profile table.

Parameters:
  - context: context.Context
  - profile: *VendorProfile

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresProfileRepository) Create(context context.Context, profile *VendorProfile) error {
	const query = `
		INSERT INTO vendors.profile (
			id, userid, businessname, description, status, statusreason, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		profile.ID,
		profile.UserID,
		profile.BusinessName,
		profile.Description,
		profile.Status,
		profile.StatusReason,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a vendor profile by its ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *VendorProfile: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByID(context context.Context, id string) (*VendorProfile, error) {
	const query = `
		SELECT id, userid, businessname, description, status, statusreason,
		       COALESCE(reviewedby, ''), reviewedat, createdat, updatedat
		FROM vendors.profile
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(context, query, id))
}

/*
FindByUserID retrieves the vendor profile belonging to an account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *VendorProfile: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByUserID(context context.Context, userID string) (*VendorProfile, error) {
	const query = `
		SELECT id, userid, businessname, description, status, statusreason,
		       COALESCE(reviewedby, ''), reviewedat, createdat, updatedat
		FROM vendors.profile
		WHERE userid = $1`

	return repository.scanOne(repository.pool.QueryRow(context, query, userID))
}

/*
List returns vendor profiles filtered by status, newest applications first.

Parameters:
  - context: context.Context
  - status: sec.VendorStatus (empty matches all)
  - limit: int
  - offset: int

Returns:
  - []*VendorProfile: Matched profiles
  - int: Total match count
  - error: Execution errors
*/
func (repository *PostgresProfileRepository) List(context context.Context, status sec.VendorStatus, limit, offset int) ([]*VendorProfile, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM vendors.profile
		WHERE ($1 = '' OR status = $1)`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, userid, businessname, description, status, statusreason,
		       COALESCE(reviewedby, ''), reviewedat, createdat, updatedat
		FROM vendors.profile
		WHERE ($1 = '' OR status = $1)
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, listQuery, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_list_failed: %w", err)
	}
	defer rows.Close()

	profiles := []*VendorProfile{}
	for rows.Next() {
		profile, err := repository.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_list_rows_failed: %w", err)
	}

	return profiles, total, nil
}

/*
UpdateStatus records a reviewed transition on the profile row.

Parameters:
  - context: context.Context
  - profile: *VendorProfile

Returns:
  - error: Execution errors
*/
func (repository *PostgresProfileRepository) UpdateStatus(context context.Context, profile *VendorProfile) error {
	const query = `
		UPDATE vendors.profile
		SET status = $2, statusreason = $3, reviewedby = $4, reviewedat = $5, updatedat = $6
		WHERE id = $1`

	profile.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		profile.ID,
		profile.Status,
		profile.StatusReason,
		profile.ReviewedBy,
		profile.ReviewedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_repo_update_status_failed: %w", err)
	}

	return nil
}

// scanOne hydrates a single profile from a row scanner.
func (repository *PostgresProfileRepository) scanOne(row pgx.Row) (*VendorProfile, error) {
	profile := &VendorProfile{}
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.BusinessName,
		&profile.Description,
		&profile.Status,
		&profile.StatusReason,
		&profile.ReviewedBy,
		&profile.ReviewedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Vendor profile")
		}
		return nil, fmt.Errorf("postgres_profile_repo_scan_failed: %w", err)
	}

	return profile, nil
}
