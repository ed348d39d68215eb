// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
)

// # Order Repository

// PostgresOrderRepository implements the OrderRepository interface using pgx.
//
// Orders live in orders.purchase and their lines in orders.purchase_item.
// The table is named purchase rather than order so queries never have to
// quote a reserved word.
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new PostgreSQL implementation of OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

const orderColumns = "id, customerid, outletid, vendorid, status, totalcents, note, cancelreason, acceptedat, deliveredat, cancelledat, createdat, updatedat"

/*
Create persists the order and all of its lines in one transaction.

Description: Either the whole purchase lands or none of it does; a partially
written order would show a total that disagrees with its lines.

Parameters:
  - context: context.Context
  - order: *Order

Returns:
  - error: Storage failures
*/
func (repository *PostgresOrderRepository) Create(context context.Context, order *Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_order_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const orderQuery = `
		INSERT INTO orders.purchase (
			id, customerid, outletid, vendorid, status, totalcents, note, cancelreason,
			acceptedat, deliveredat, cancelledat, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = transaction.Exec(context, orderQuery,
		order.ID,
		order.CustomerID,
		order.OutletID,
		order.VendorID,
		order.Status,
		order.TotalCents,
		order.Note,
		order.CancelReason,
		order.AcceptedAt,
		order.DeliveredAt,
		order.CancelledAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_order_repo_create_failed: %w", err)
	}

	const lineQuery = `
		INSERT INTO orders.purchase_item (id, purchaseid, menuitemid, name, pricecents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, line := range order.Lines {
		_, err = transaction.Exec(context, lineQuery,
			line.ID,
			line.OrderID,
			line.MenuItemID,
			line.Name,
			line.PriceCents,
			line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("postgres_order_repo_create_line_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_order_repo_commit_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves an order together with its lines.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Order: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresOrderRepository) FindByID(context context.Context, id string) (*Order, error) {
	query := "SELECT " + orderColumns + " FROM orders.purchase WHERE id = $1"

	order, err := repository.scanOne(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, err
	}

	if err := repository.attachLines(context, []*Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

/*
ListByCustomer returns the customer's orders, newest first.

Parameters:
  - context: context.Context
  - customerID: string
  - limit: int
  - offset: int

Returns:
  - []*Order: Matched orders with lines
  - int: Total match count
  - error: Execution errors
*/
func (repository *PostgresOrderRepository) ListByCustomer(context context.Context, customerID string, limit, offset int) ([]*Order, int, error) {
	const countQuery = "SELECT COUNT(*) FROM orders.purchase WHERE customerid = $1"

	var total int
	if err := repository.pool.QueryRow(context, countQuery, customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_order_repo_count_failed: %w", err)
	}

	listQuery := "SELECT " + orderColumns + `
		FROM orders.purchase
		WHERE customerid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	orders, err := repository.queryMany(context, listQuery, customerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

/*
ListByVendor returns orders placed against the vendor's outlets, optionally
narrowed to one outlet and to the given statuses.

Parameters:
  - context: context.Context
  - vendorID: string
  - outletID: string (empty matches all)
  - statuses: []Status (empty matches all)
  - limit: int
  - offset: int

Returns:
  - []*Order: Matched orders with lines
  - int: Total match count
  - error: Execution errors
*/
func (repository *PostgresOrderRepository) ListByVendor(context context.Context, vendorID, outletID string, statuses []Status, limit, offset int) ([]*Order, int, error) {
	filter := statusStrings(statuses)

	const countQuery = `
		SELECT COUNT(*)
		FROM orders.purchase
		WHERE vendorid = $1
		  AND ($2 = '' OR outletid::text = $2)
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3::text[]))`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, vendorID, outletID, filter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_order_repo_count_failed: %w", err)
	}

	listQuery := "SELECT " + orderColumns + `
		FROM orders.purchase
		WHERE vendorid = $1
		  AND ($2 = '' OR outletid::text = $2)
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3::text[]))
		ORDER BY createdat DESC
		LIMIT $4 OFFSET $5`

	orders, err := repository.queryMany(context, listQuery, vendorID, outletID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

/*
List returns orders across the whole platform, newest first.

Parameters:
  - context: context.Context
  - statuses: []Status (empty matches all)
  - limit: int
  - offset: int

Returns:
  - []*Order: Matched orders with lines
  - int: Total match count
  - error: Execution errors
*/
func (repository *PostgresOrderRepository) List(context context.Context, statuses []Status, limit, offset int) ([]*Order, int, error) {
	filter := statusStrings(statuses)

	const countQuery = `
		SELECT COUNT(*)
		FROM orders.purchase
		WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, filter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_order_repo_count_failed: %w", err)
	}

	listQuery := "SELECT " + orderColumns + `
		FROM orders.purchase
		WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	orders, err := repository.queryMany(context, listQuery, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

/*
UpdateStatus persists the order's status, lifecycle timestamps and
cancellation reason.

Parameters:
  - context: context.Context
  - order: *Order

Returns:
  - error: Update failures
*/
func (repository *PostgresOrderRepository) UpdateStatus(context context.Context, order *Order) error {
	const query = `
		UPDATE orders.purchase
		SET status = $2, cancelreason = $3, acceptedat = $4, deliveredat = $5, cancelledat = $6, updatedat = $7
		WHERE id = $1`

	order.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		order.ID,
		order.Status,
		order.CancelReason,
		order.AcceptedAt,
		order.DeliveredAt,
		order.CancelledAt,
		order.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_order_repo_update_failed: %w", err)
	}

	return nil
}

// # Hydration

// queryMany runs a list query and attaches each order's lines in a single
// follow-up query rather than one per order.
func (repository *PostgresOrderRepository) queryMany(context context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_order_repo_list_failed: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		order, err := repository.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_order_repo_rows_failed: %w", err)
	}

	if err := repository.attachLines(context, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// scanOne hydrates a single order, without lines, from a row scanner.
func (repository *PostgresOrderRepository) scanOne(row pgx.Row) (*Order, error) {
	order := &Order{Lines: []*Line{}}
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.OutletID,
		&order.VendorID,
		&order.Status,
		&order.TotalCents,
		&order.Note,
		&order.CancelReason,
		&order.AcceptedAt,
		&order.DeliveredAt,
		&order.CancelledAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Order")
		}
		return nil, fmt.Errorf("postgres_order_repo_scan_failed: %w", err)
	}

	return order, nil
}

// attachLines loads the lines of every order in the batch.
func (repository *PostgresOrderRepository) attachLines(context context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	const query = `
		SELECT id, purchaseid, menuitemid, name, pricecents, quantity
		FROM orders.purchase_item
		WHERE purchaseid = ANY($1)
		ORDER BY id ASC`

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return fmt.Errorf("postgres_order_repo_lines_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := &Line{}
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.MenuItemID,
			&line.Name,
			&line.PriceCents,
			&line.Quantity,
		); err != nil {
			return fmt.Errorf("postgres_order_repo_line_scan_failed: %w", err)
		}
		if order, ok := byID[line.OrderID]; ok {
			order.Lines = append(order.Lines, line)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres_order_repo_line_rows_failed: %w", err)
	}

	return nil
}

// statusStrings converts the status filter for the text[] query parameter.
// A nil slice becomes an empty array, never NULL.
func statusStrings(statuses []Status) []string {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return values
}
