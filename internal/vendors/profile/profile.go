// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
Package profile implements the vendor application and approval lifecycle.

A customer applies to become a vendor; the application sits in a pending state
until a platform admin reviews it. The approval state machine is the single
point of truth for which transitions exist:

	pending   -> approved | rejected
	approved  -> suspended
	suspended -> approved

Every transition is admin-initiated and records who decided, when, and why.
*/
package profile

import (
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # Domain Entities

// VendorProfile represents one restaurant operator's standing on the platform.
type VendorProfile struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	BusinessName string           `json:"business_name"`
	Description  string           `json:"description,omitempty"`
	Status       sec.VendorStatus `json:"status"`

	// StatusReason is the admin-supplied note attached to a rejection or
	// suspension. Cleared on approval.
	StatusReason string `json:"status_reason,omitempty"`

	// ReviewedBy is the admin user id of the last decision maker.
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldBusinessName = "business_name"
	FieldDescription  = "description"
	FieldReason       = "reason"
	FieldStatus       = "status"
	FieldMessage      = "message"
)
