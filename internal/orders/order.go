// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Package orders implements the purchase lifecycle: customers place orders
// against an outlet's menu, vendors move them through preparation, and either
// side may cancel within its window.
package orders

import "time"

// # Status Machine

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the value is a known order status.
func (status Status) Valid() bool {
	switch status {
	case StatusPlaced, StatusAccepted, StatusPreparing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (status Status) Terminal() bool {
	return status == StatusDelivered || status == StatusCancelled
}

// CanAdvanceTo reports whether the vendor-side progression allows moving
// from the current status to the target. Cancellation is handled separately
// because its rules depend on who is asking.
func (status Status) CanAdvanceTo(target Status) bool {
	switch status {
	case StatusPlaced:
		return target == StatusAccepted
	case StatusAccepted:
		return target == StatusPreparing
	case StatusPreparing:
		return target == StatusDelivered
	}
	return false
}

// # Entities

// Line is a single dish on an order. Name and price are snapshots taken at
// placement time so later menu edits do not rewrite purchase history.
type Line struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

// Subtotal returns the line's contribution to the order total.
func (line *Line) Subtotal() int64 {
	return line.PriceCents * int64(line.Quantity)
}

// Order is a customer's purchase from a single outlet.
type Order struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	OutletID   string `json:"outlet_id"`

	// VendorID is denormalized from the outlet at placement time so vendor
	// access checks and listings never need a catalog join.
	VendorID string `json:"vendor_id"`

	Status       Status  `json:"status"`
	Lines        []*Line `json:"lines"`
	TotalCents   int64   `json:"total_cents"`
	Note         string  `json:"note,omitempty"`
	CancelReason string  `json:"cancel_reason,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OwnerID identifies the customer for ownership checks.
func (order *Order) OwnerID() string { return order.CustomerID }

// # Field Names

const (
	FieldOrderID    = "order_id"
	FieldOutletID   = "outlet_id"
	FieldLines      = "lines"
	FieldMenuItemID = "menu_item_id"
	FieldQuantity   = "quantity"
	FieldStatus     = "status"
	FieldReason     = "reason"
)
