// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package orders

import (
	"context"

	"github.com/mealgrid/mealgrid/internal/catalog/outlet"
)

// # Repository Contracts

// OrderRepository persists orders and their lines.
type OrderRepository interface {
	// Create inserts the order and all of its lines atomically.
	Create(context context.Context, order *Order) error

	// FindByID returns the order with its lines, or a not-found error.
	FindByID(context context.Context, id string) (*Order, error)

	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(context context.Context, customerID string, limit, offset int) ([]*Order, int, error)

	// ListByVendor returns orders placed against the vendor's outlets,
	// optionally narrowed to one outlet and to the given statuses. An empty
	// outlet id or status slice matches everything.
	ListByVendor(context context.Context, vendorID, outletID string, statuses []Status, limit, offset int) ([]*Order, int, error)

	// List returns orders across the whole platform for administrators.
	List(context context.Context, statuses []Status, limit, offset int) ([]*Order, int, error)

	// UpdateStatus persists the order's status, lifecycle timestamps and
	// cancellation reason.
	UpdateStatus(context context.Context, order *Order) error
}

// # Catalog Access

// OutletReader is the slice of the catalog this package needs to resolve
// the outlet an order is placed against. Satisfied by the catalog's outlet
// repository.
type OutletReader interface {
	FindByID(context context.Context, id string) (*outlet.Outlet, error)
}

// MenuReader resolves the priced menu of an outlet at placement time.
// Satisfied by the catalog's menu repository.
type MenuReader interface {
	ListByOutlet(context context.Context, outletID string) ([]*outlet.MenuItem, error)
}
