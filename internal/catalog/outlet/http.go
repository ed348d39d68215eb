// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
This file provides the HTTP interface for catalog browsing and outlet management.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors, with optional
    authentication for personalization (GET /outlets).
  - Vendor (v1): Mutative endpoints gated by the approved-vendor chain plus
    per-resource ownership checks.

The handler translates between the web/JSON layer and the internal domain [Service].
*/

package outlet

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealgrid/mealgrid/internal/platform/middleware"
	requestutil "github.com/mealgrid/mealgrid/internal/platform/request"
	"github.com/mealgrid/mealgrid/internal/platform/respond"
	"github.com/mealgrid/mealgrid/internal/platform/validate"
	"github.com/mealgrid/mealgrid/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the outlet catalog.
type Handler struct {
	service    *Service
	verifier   middleware.TokenVerifier
	identities middleware.IdentityResolver
}

// NewHandler constructs a new outlet [Handler].
func NewHandler(service *Service, verifier middleware.TokenVerifier, identities middleware.IdentityResolver) *Handler {
	return &Handler{service: service, verifier: verifier, identities: identities}
}

// RegisterRoutes attaches catalog endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {

	// Public discovery; anonymous requests pass through.
	api.Group(func(public chi.Router) {
		public.Use(middleware.OptionalCustomer(handler.verifier, handler.identities))
		public.Get("/outlets", handler.listOutlets)
		public.Get("/outlets/{slug}", handler.getOutlet)
		public.Get("/outlets/{slug}/menu", handler.getMenu)
	})

	// Vendor management, approved vendors only.
	api.Group(func(vendor chi.Router) {
		vendor.Use(middleware.RequireApprovedVendor(handler.verifier, handler.identities))
		vendor.Get("/vendor/outlets", handler.myOutlets)
		vendor.Post("/vendor/outlets", handler.createOutlet)
		vendor.Put("/vendor/outlets/{id}", handler.updateOutlet)
		vendor.Delete("/vendor/outlets/{id}", handler.deleteOutlet)
		vendor.Post("/vendor/outlets/{id}/menu", handler.addMenuItem)
		vendor.Put("/vendor/menu/{itemID}", handler.updateMenuItem)
		vendor.Delete("/vendor/menu/{itemID}", handler.removeMenuItem)
	})
}

// # Request Payloads

type outletRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cuisine     string `json:"cuisine"`
	Address     string `json:"address"`
	IsOpen      bool   `json:"is_open"`
}

func (input outletRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, 2).
		MaxLen(FieldName, input.Name, 120).
		Required(FieldAddress, input.Address).
		MaxLen(FieldDescription, input.Description, 2000)
	return validator.Err()
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
}

func (input menuItemRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 120).
		Custom(FieldPriceCents, input.PriceCents <= 0, "Price must be positive")
	return validator.Err()
}

// # Public Endpoints

/*
ListOutlets returns the public outlet catalog.

GET /api/v1/outlets?cuisine=ramen&page=1&limit=20

Response:
  - 200: []Outlet: Paginated catalog, newest first
*/
func (handler *Handler) listOutlets(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	cuisine := request.URL.Query().Get(FieldCuisine)

	outlets, total, err := handler.service.ListOutlets(request.Context(), cuisine, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, outlets, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GetOutlet returns one outlet by slug.

GET /api/v1/outlets/{slug}

Response:
  - 200: Outlet: Outlet detail
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) getOutlet(writer http.ResponseWriter, request *http.Request) {
	found, err := handler.service.GetOutletBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
GetMenu returns an outlet's menu by slug.

GET /api/v1/outlets/{slug}/menu

Response:
  - 200: []MenuItem: Menu in insertion order
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) getMenu(writer http.ResponseWriter, request *http.Request) {
	found, err := handler.service.GetOutletBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	menu, err := handler.service.Menu(request.Context(), found.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, menu)
}

// # Vendor Endpoints

/*
MyOutlets lists the authenticated vendor's outlets.

GET /api/v1/vendor/outlets
*/
func (handler *Handler) myOutlets(writer http.ResponseWriter, request *http.Request) {
	vendorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	outlets, err := handler.service.MyOutlets(request.Context(), vendorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, outlets)
}

/*
CreateOutlet opens a new outlet for the authenticated vendor.

POST /api/v1/vendor/outlets

Response:
  - 201: Outlet: Created outlet with its public slug
  - 409: ErrConflict: Slug already taken
*/
func (handler *Handler) createOutlet(writer http.ResponseWriter, request *http.Request) {
	vendorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input outletRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateOutlet(request.Context(), vendorID, OutletInput{
		Name:        input.Name,
		Description: input.Description,
		Cuisine:     input.Cuisine,
		Address:     input.Address,
		IsOpen:      input.IsOpen,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
UpdateOutlet modifies an outlet the caller owns.

PUT /api/v1/vendor/outlets/{id}

Response:
  - 200: Outlet: Updated outlet
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Unknown outlet (checked before ownership)
*/
func (handler *Handler) updateOutlet(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input outletRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateOutlet(request.Context(), principal, requestutil.ID(request, "id"), OutletInput{
		Name:        input.Name,
		Description: input.Description,
		Cuisine:     input.Cuisine,
		Address:     input.Address,
		IsOpen:      input.IsOpen,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DeleteOutlet removes an outlet the caller owns.

DELETE /api/v1/vendor/outlets/{id}

Response:
  - 204: No Content
*/
func (handler *Handler) deleteOutlet(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteOutlet(request.Context(), principal, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
AddMenuItem appends a dish to an outlet the caller owns.

POST /api/v1/vendor/outlets/{id}/menu

Response:
  - 201: MenuItem: Created dish
*/
func (handler *Handler) addMenuItem(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input menuItemRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.AddMenuItem(request.Context(), principal, requestutil.ID(request, "id"), MenuItemInput{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		IsAvailable: input.IsAvailable,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, item)
}

/*
UpdateMenuItem modifies a dish on an outlet the caller owns.

PUT /api/v1/vendor/menu/{itemID}
*/
func (handler *Handler) updateMenuItem(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input menuItemRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.UpdateMenuItem(request.Context(), principal, requestutil.ID(request, "itemID"), MenuItemInput{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		IsAvailable: input.IsAvailable,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, item)
}

/*
RemoveMenuItem deletes a dish from an outlet the caller owns.

DELETE /api/v1/vendor/menu/{itemID}

Response:
  - 204: No Content
*/
func (handler *Handler) removeMenuItem(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveMenuItem(request.Context(), principal, requestutil.ID(request, "itemID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
