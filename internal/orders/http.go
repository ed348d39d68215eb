// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
This file provides the HTTP interface for the order lifecycle.

# Routing Strategy

  - Customer (v1): Placement and own-order listing behind the customer chain.
  - Shared (v1): Single-order read and cancellation behind plain
    authentication; the service decides who a given order admits.
  - Vendor (v1): Kitchen-side listing and status advancement behind the
    approved-vendor chain.
  - Admin (v1): Platform-wide order listing.
*/

package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealgrid/mealgrid/internal/platform/middleware"
	requestutil "github.com/mealgrid/mealgrid/internal/platform/request"
	"github.com/mealgrid/mealgrid/internal/platform/respond"
	"github.com/mealgrid/mealgrid/internal/platform/validate"
	"github.com/mealgrid/mealgrid/pkg/pagination"
	"github.com/mealgrid/mealgrid/pkg/query"
	"github.com/mealgrid/mealgrid/pkg/slice"
)

// # Handler Implementation

// Handler implements the HTTP layer for orders.
type Handler struct {
	service    *Service
	verifier   middleware.TokenVerifier
	identities middleware.IdentityResolver
}

// NewHandler constructs a new order [Handler].
func NewHandler(service *Service, verifier middleware.TokenVerifier, identities middleware.IdentityResolver) *Handler {
	return &Handler{service: service, verifier: verifier, identities: identities}
}

// RegisterRoutes attaches order endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {

	// Customer side.
	api.Group(func(customer chi.Router) {
		customer.Use(middleware.RequireCustomer(handler.verifier, handler.identities))
		customer.Post("/orders", handler.placeOrder)
		customer.Get("/orders", handler.listMine)
	})

	// Any authenticated caller; the service gates per order.
	api.Group(func(authenticated chi.Router) {
		authenticated.Use(middleware.RequireAuthenticated(handler.verifier, handler.identities))
		authenticated.Get("/orders/{id}", handler.getOrder)
		authenticated.Post("/orders/{id}/cancel", handler.cancelOrder)
	})

	// Kitchen side, approved vendors only.
	api.Group(func(vendor chi.Router) {
		vendor.Use(middleware.RequireApprovedVendor(handler.verifier, handler.identities))
		vendor.Get("/vendor/orders", handler.listForVendor)
		vendor.Post("/vendor/orders/{id}/status", handler.advanceOrder)
	})

	// Platform oversight.
	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(handler.verifier, handler.identities))
		admin.Get("/admin/orders", handler.listAll)
	})
}

// # Request Payloads

type orderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type placeOrderRequest struct {
	OutletID string             `json:"outlet_id"`
	Lines    []orderLineRequest `json:"lines"`
	Note     string             `json:"note"`
}

func (input placeOrderRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldOutletID, input.OutletID).
		UUID(FieldOutletID, input.OutletID).
		Custom(FieldLines, len(input.Lines) == 0, "An order needs at least one item").
		Custom(FieldLines, len(input.Lines) > 50, "An order cannot exceed 50 lines")

	for _, line := range input.Lines {
		validator.Required(FieldMenuItemID, line.MenuItemID).
			Custom(FieldQuantity, line.Quantity < 1 || line.Quantity > 50, "Quantity must be between 1 and 50")
	}

	return validator.Err()
}

type advanceOrderRequest struct {
	Status string `json:"status"`
}

func (input advanceOrderRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldStatus, input.Status).
		Custom(FieldStatus, input.Status != "" && !Status(input.Status).Valid(), "Unknown order status")
	return validator.Err()
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// statusFilter parses the comma-separated ?status= query parameter.
// Unknown values are rejected rather than silently dropped.
func statusFilter(request *http.Request) ([]Status, error) {
	raw := query.StringSlice(request.URL.Query().Get(FieldStatus))

	validator := &validate.Validator{}
	for _, value := range raw {
		validator.Custom(FieldStatus, !Status(value).Valid(), "Unknown order status: "+value)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return slice.Map(raw, func(value string) Status { return Status(value) }), nil
}

// # Customer Endpoints

/*
PlaceOrder creates a new order for the authenticated customer.

POST /api/v1/orders

Response:
  - 201: Order: Created order in status "placed"
  - 404: ErrNotFound: Unknown outlet or menu item
  - 409: ErrConflict: Outlet closed or dish unavailable
*/
func (handler *Handler) placeOrder(writer http.ResponseWriter, request *http.Request) {
	customerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input placeOrderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	placed, err := handler.service.Place(request.Context(), customerID, PlaceInput{
		OutletID: input.OutletID,
		Note:     input.Note,
		Lines: slice.Map(input.Lines, func(line orderLineRequest) LineInput {
			return LineInput{MenuItemID: line.MenuItemID, Quantity: line.Quantity}
		}),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, placed)
}

/*
ListMine lists the authenticated customer's orders.

GET /api/v1/orders?page=1&limit=20
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	customerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	orders, total, err := handler.service.ListMine(request.Context(), customerID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Shared Endpoints

/*
GetOrder returns one order.

GET /api/v1/orders/{id}

Response:
  - 200: Order: The order with its lines
  - 403: ErrForbidden: Caller is neither customer, serving vendor, nor admin
  - 404: ErrNotFound: Unknown order (checked before access)
*/
func (handler *Handler) getOrder(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.service.Get(request.Context(), principal, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, order)
}

/*
CancelOrder cancels an order within the caller's window.

POST /api/v1/orders/{id}/cancel

Response:
  - 200: Order: Cancelled order
  - 409: ErrConflict: Cancellation window closed
*/
func (handler *Handler) cancelOrder(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The reason is optional for customers, so an empty body is fine.
	var input cancelOrderRequest
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
	}

	cancelled, err := handler.service.Cancel(request.Context(), principal, requestutil.ID(request, "id"), input.Reason)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cancelled)
}

// # Vendor Endpoints

/*
ListForVendor lists orders placed against the vendor's outlets.

GET /api/v1/vendor/orders?outlet={id}&status=placed,accepted&page=1
*/
func (handler *Handler) listForVendor(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	statuses, err := statusFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	outletID := request.URL.Query().Get("outlet")
	params := pagination.FromRequest(request)
	orders, total, err := handler.service.ListForVendor(request.Context(), principal, outletID, statuses, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
AdvanceOrder moves an order one step along the preparation path.

POST /api/v1/vendor/orders/{id}/status

Response:
  - 200: Order: Updated order
  - 409: ErrConflict: Illegal transition
*/
func (handler *Handler) advanceOrder(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input advanceOrderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	advanced, err := handler.service.Advance(request.Context(), principal, requestutil.ID(request, "id"), Status(input.Status))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, advanced)
}

// # Admin Endpoints

/*
ListAll lists every order on the platform.

GET /api/v1/admin/orders?status=cancelled&page=1
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	statuses, err := statusFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	orders, total, err := handler.service.ListAll(request.Context(), statuses, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}
