// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
This file provides the HTTP interface for the vendor lifecycle.

# Routing Strategy

  - Customer (v1): POST /vendors/apply files an application.
  - Vendor (v1): GET /vendors/me/status is the status screen; it uses the
    relaxed vendor gate so pending and suspended vendors can still see where
    they stand.
  - Admin (v1): the review queue and the four decision endpoints.

The handler translates between the web/JSON layer and the internal domain [Service].
*/

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealgrid/mealgrid/internal/platform/middleware"
	requestutil "github.com/mealgrid/mealgrid/internal/platform/request"
	"github.com/mealgrid/mealgrid/internal/platform/respond"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/internal/platform/validate"
	"github.com/mealgrid/mealgrid/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for vendor profile management.
type Handler struct {
	service    *Service
	verifier   middleware.TokenVerifier
	identities middleware.IdentityResolver
}

// NewHandler constructs a new vendor profile [Handler].
func NewHandler(service *Service, verifier middleware.TokenVerifier, identities middleware.IdentityResolver) *Handler {
	return &Handler{service: service, verifier: verifier, identities: identities}
}

// RegisterRoutes attaches vendor lifecycle endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {

	// A signed-in customer files the application.
	api.Group(func(customer chi.Router) {
		customer.Use(middleware.RequireCustomer(handler.verifier, handler.identities))
		customer.Post("/vendors/apply", handler.apply)
	})

	// The status screen admits pending and suspended vendors.
	api.Group(func(vendor chi.Router) {
		vendor.Use(middleware.RequireVendorStatusScreen(handler.verifier, handler.identities))
		vendor.Get("/vendors/me/status", handler.status)
	})

	// Admin review queue and decisions.
	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(handler.verifier, handler.identities))
		admin.Get("/admin/vendors", handler.list)
		admin.Post("/admin/vendors/{id}/approve", handler.approve)
		admin.Post("/admin/vendors/{id}/reject", handler.reject)
		admin.Post("/admin/vendors/{id}/suspend", handler.suspend)
		admin.Post("/admin/vendors/{id}/reinstate", handler.reinstate)
	})
}

// # Request Payloads

type applyRequest struct {
	BusinessName string `json:"business_name"`
	Description  string `json:"description"`
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

/*
Apply files a vendor application for the authenticated customer.

POST /api/v1/vendors/apply

Response:
  - 201: VendorProfile: Pending application
  - 409: ErrConflict: An application already exists
*/
func (handler *Handler) apply(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input applyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldBusinessName, input.BusinessName).
		MinLen(FieldBusinessName, input.BusinessName, 2).
		MaxLen(FieldBusinessName, input.BusinessName, 120).
		MaxLen(FieldDescription, input.Description, 2000)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.Apply(request.Context(), ApplyInput{
		UserID:       userID,
		BusinessName: input.BusinessName,
		Description:  input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, profile)
}

/*
Status shows the authenticated vendor's application standing.

GET /api/v1/vendors/me/status

Response:
  - 200: VendorProfile: Current status with any admin-supplied reason
  - 404: ErrNotFound: No application on file
*/
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.StatusFor(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
List returns the admin review queue.

GET /api/v1/admin/vendors?status=pending&page=1&limit=20

Response:
  - 200: []VendorProfile: Paginated queue, newest first
  - 400: ErrValidation: Unknown status filter
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	status := sec.VendorStatus(request.URL.Query().Get(FieldStatus))

	if status != sec.VendorStatusNone && !status.Valid() {
		respond.Error(writer, request, validate.RequiredError(FieldStatus, "is not a recognized vendor status"))
		return
	}

	params := pagination.FromRequest(request)

	profiles, total, err := handler.service.List(request.Context(), status, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, profiles, pagination.NewMeta(params.Page, params.Limit, total))
}

// decide runs one admin transition with an optional reason requirement.
func (handler *Handler) decide(writer http.ResponseWriter, request *http.Request, target sec.VendorStatus, reasonRequired bool) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input decisionRequest
	_ = requestutil.DecodeJSON(request, &input)

	if reasonRequired && input.Reason == "" {
		respond.Error(writer, request, validate.RequiredError(FieldReason, "is required for this decision"))
		return
	}

	profile, err := handler.service.Transition(
		request.Context(),
		requestutil.ID(request, "id"),
		target,
		input.Reason,
		adminID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
Approve moves a pending or suspended vendor to approved.

POST /api/v1/admin/vendors/{id}/approve

Response:
  - 200: VendorProfile: Approved profile
  - 404: ErrNotFound: Unknown profile
  - 409: ErrConflict: Illegal transition
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, sec.VendorStatusApproved, false)
}

/*
Reject declines a pending application. The reason is mandatory and is shown
to the vendor on the status screen.

POST /api/v1/admin/vendors/{id}/reject
*/
func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, sec.VendorStatusRejected, true)
}

/*
Suspend takes an approved vendor off the platform. The reason is mandatory.
All of the vendor's sessions are invalidated.

POST /api/v1/admin/vendors/{id}/suspend
*/
func (handler *Handler) suspend(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, sec.VendorStatusSuspended, true)
}

/*
Reinstate returns a suspended vendor to approved standing.

POST /api/v1/admin/vendors/{id}/reinstate
*/
func (handler *Handler) reinstate(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, sec.VendorStatusApproved, false)
}
