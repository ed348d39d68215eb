// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
Package outlet implements the restaurant catalog: vendor-owned outlets and
their menus.

# Architecture

Outlets are the public face of a vendor. Browsing is anonymous; management is
restricted to the owning approved vendor, with an admin override on every
mutating route. Ownership is checked after the lookup, so a missing outlet is
a 404 even for a stranger.
*/
package outlet

import (
	"time"
)

// # Domain Entities

// Outlet represents one restaurant location operated by a vendor.
type Outlet struct {
	ID          string    `json:"id"`
	VendorID    string    `json:"vendor_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Cuisine     string    `json:"cuisine,omitempty"`
	Address     string    `json:"address"`
	IsOpen      bool      `json:"is_open"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnerID implements the ownership contract used by the access gates.
func (outlet *Outlet) OwnerID() string { return outlet.VendorID }

// MenuItem represents one orderable dish on an outlet's menu.
//
// Prices are integer cents. Floating point money is how marketplaces
// lose fractions of yen.
type MenuItem struct {
	ID          string    `json:"id"`
	OutletID    string    `json:"outlet_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCuisine     = "cuisine"
	FieldAddress     = "address"
	FieldPriceCents  = "price_cents"
	FieldMessage     = "message"
)
