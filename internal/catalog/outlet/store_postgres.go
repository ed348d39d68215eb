// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package outlet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/dberr"
)

// # Outlet Repository

// PostgresOutletRepository implements the OutletRepository interface using pgx.
type PostgresOutletRepository struct {
	pool *pgxpool.Pool
}

// NewOutletRepository creates a new PostgreSQL implementation of OutletRepository.
func NewOutletRepository(pool *pgxpool.Pool) *PostgresOutletRepository {
	return &PostgresOutletRepository{pool: pool}
}

const outletColumns = "id, vendorid, name, slug, description, cuisine, address, isopen, createdat, updatedat"

/*
Create persists a new outlet into the catalog.outlet table.

Description: A duplicate slug violates the unique index and surfaces as a
client-safe Conflict.

Parameters:
  - context: context.Context
  - outlet: *Outlet

Returns:
  - error: apperr.Conflict or connectivity errors
*/
func (repository *PostgresOutletRepository) Create(context context.Context, outlet *Outlet) error {
	const query = `
		INSERT INTO catalog.outlet (
			id, vendorid, name, slug, description, cuisine, address, isopen, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if outlet.CreatedAt.IsZero() {
		outlet.CreatedAt = now
	}
	outlet.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		outlet.ID,
		outlet.VendorID,
		outlet.Name,
		outlet.Slug,
		outlet.Description,
		outlet.Cuisine,
		outlet.Address,
		outlet.IsOpen,
		outlet.CreatedAt,
		outlet.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Outlet")
	}

	return nil
}

/*
FindByID retrieves an outlet by its ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Outlet: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresOutletRepository) FindByID(context context.Context, id string) (*Outlet, error) {
	query := "SELECT " + outletColumns + " FROM catalog.outlet WHERE id = $1"
	return repository.scanOne(repository.pool.QueryRow(context, query, id))
}

/*
FindBySlug retrieves an outlet by its public slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Outlet: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresOutletRepository) FindBySlug(context context.Context, slug string) (*Outlet, error) {
	query := "SELECT " + outletColumns + " FROM catalog.outlet WHERE slug = $1"
	return repository.scanOne(repository.pool.QueryRow(context, query, slug))
}

/*
List returns outlets for public browsing, newest first.

Parameters:
  - context: context.Context
  - cuisine: string (empty matches all)
  - limit: int
  - offset: int

Returns:
  - []*Outlet: Matched outlets
  - int: Total match count
  - error: Execution errors
*/
func (repository *PostgresOutletRepository) List(context context.Context, cuisine string, limit, offset int) ([]*Outlet, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM catalog.outlet
		WHERE ($1 = '' OR cuisine = $1)`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, cuisine).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_outlet_repo_count_failed: %w", err)
	}

	listQuery := "SELECT " + outletColumns + `
		FROM catalog.outlet
		WHERE ($1 = '' OR cuisine = $1)
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, listQuery, cuisine, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_outlet_repo_list_failed: %w", err)
	}
	defer rows.Close()

	outlets, err := repository.scanMany(rows)
	if err != nil {
		return nil, 0, err
	}

	return outlets, total, nil
}

/*
ListByVendor returns every outlet owned by the vendor, newest first.

Parameters:
  - context: context.Context
  - vendorID: string

Returns:
  - []*Outlet: Owned outlets
  - error: Execution errors
*/
func (repository *PostgresOutletRepository) ListByVendor(context context.Context, vendorID string) ([]*Outlet, error) {
	query := "SELECT " + outletColumns + `
		FROM catalog.outlet
		WHERE vendorid = $1
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(context, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("postgres_outlet_repo_list_by_vendor_failed: %w", err)
	}
	defer rows.Close()

	return repository.scanMany(rows)
}

/*
Update persists changes to the outlet's mutable fields.

Parameters:
  - context: context.Context
  - outlet: *Outlet

Returns:
  - error: Update failures
*/
func (repository *PostgresOutletRepository) Update(context context.Context, outlet *Outlet) error {
	const query = `
		UPDATE catalog.outlet
		SET name = $2, description = $3, cuisine = $4, address = $5, isopen = $6, updatedat = $7
		WHERE id = $1`

	outlet.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		outlet.ID,
		outlet.Name,
		outlet.Description,
		outlet.Cuisine,
		outlet.Address,
		outlet.IsOpen,
		outlet.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_outlet_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete removes the outlet. Menu items follow via ON DELETE CASCADE.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresOutletRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM catalog.outlet WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_outlet_repo_delete_failed: %w", err)
	}
	return nil
}

// scanOne hydrates a single outlet from a row scanner.
func (repository *PostgresOutletRepository) scanOne(row pgx.Row) (*Outlet, error) {
	outlet := &Outlet{}
	err := row.Scan(
		&outlet.ID,
		&outlet.VendorID,
		&outlet.Name,
		&outlet.Slug,
		&outlet.Description,
		&outlet.Cuisine,
		&outlet.Address,
		&outlet.IsOpen,
		&outlet.CreatedAt,
		&outlet.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Outlet")
		}
		return nil, fmt.Errorf("postgres_outlet_repo_scan_failed: %w", err)
	}

	return outlet, nil
}

// scanMany hydrates a result set of outlets.
func (repository *PostgresOutletRepository) scanMany(rows pgx.Rows) ([]*Outlet, error) {
	outlets := []*Outlet{}
	for rows.Next() {
		outlet, err := repository.scanOne(rows)
		if err != nil {
			return nil, err
		}
		outlets = append(outlets, outlet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_outlet_repo_rows_failed: %w", err)
	}

	return outlets, nil
}

// # Menu Repository

// PostgresMenuRepository implements the MenuRepository interface.
type PostgresMenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository creates a new PostgreSQL implementation of MenuRepository.
func NewMenuRepository(pool *pgxpool.Pool) *PostgresMenuRepository {
	return &PostgresMenuRepository{pool: pool}
}

/*
Create persists a new menu item into the catalog.menu_item table.

Parameters:
  - context: context.Context
  - item: *MenuItem

Returns:
  - error: Storage failures
*/
func (repository *PostgresMenuRepository) Create(context context.Context, item *MenuItem) error {
	const query = `
		INSERT INTO catalog.menu_item (
			id, outletid, name, description, pricecents, isavailable, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		item.ID,
		item.OutletID,
		item.Name,
		item.Description,
		item.PriceCents,
		item.IsAvailable,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_menu_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a menu item by its ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *MenuItem: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresMenuRepository) FindByID(context context.Context, id string) (*MenuItem, error) {
	const query = `
		SELECT id, outletid, name, description, pricecents, isavailable, createdat, updatedat
		FROM catalog.menu_item
		WHERE id = $1`

	item := &MenuItem{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&item.ID,
		&item.OutletID,
		&item.Name,
		&item.Description,
		&item.PriceCents,
		&item.IsAvailable,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Menu item")
		}
		return nil, fmt.Errorf("postgres_menu_repo_find_failed: %w", err)
	}

	return item, nil
}

/*
ListByOutlet returns the outlet's menu in insertion order.

Parameters:
  - context: context.Context
  - outletID: string

Returns:
  - []*MenuItem: Menu items
  - error: Execution errors
*/
func (repository *PostgresMenuRepository) ListByOutlet(context context.Context, outletID string) ([]*MenuItem, error) {
	const query = `
		SELECT id, outletid, name, description, pricecents, isavailable, createdat, updatedat
		FROM catalog.menu_item
		WHERE outletid = $1
		ORDER BY createdat ASC`

	rows, err := repository.pool.Query(context, query, outletID)
	if err != nil {
		return nil, fmt.Errorf("postgres_menu_repo_list_failed: %w", err)
	}
	defer rows.Close()

	items := []*MenuItem{}
	for rows.Next() {
		item := &MenuItem{}
		if err := rows.Scan(
			&item.ID,
			&item.OutletID,
			&item.Name,
			&item.Description,
			&item.PriceCents,
			&item.IsAvailable,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_menu_repo_scan_failed: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_menu_repo_rows_failed: %w", err)
	}

	return items, nil
}

/*
Update persists changes to the item's mutable fields.

Parameters:
  - context: context.Context
  - item: *MenuItem

Returns:
  - error: Update failures
*/
func (repository *PostgresMenuRepository) Update(context context.Context, item *MenuItem) error {
	const query = `
		UPDATE catalog.menu_item
		SET name = $2, description = $3, pricecents = $4, isavailable = $5, updatedat = $6
		WHERE id = $1`

	item.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		item.ID,
		item.Name,
		item.Description,
		item.PriceCents,
		item.IsAvailable,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_menu_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete removes a menu item.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresMenuRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM catalog.menu_item WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_menu_repo_delete_failed: %w", err)
	}
	return nil
}
