// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/pkg/pointer"
	"github.com/mealgrid/mealgrid/pkg/uuid"
)

// # Service Layer

// Service orchestrates the order lifecycle.
type Service struct {
	orderRepository OrderRepository
	outlets         OutletReader
	menus           MenuReader
	logger          *slog.Logger
}

// NewService constructs a new [Service].
func NewService(orderRepo OrderRepository, outlets OutletReader, menus MenuReader, logger *slog.Logger) *Service {
	return &Service{
		orderRepository: orderRepo,
		outlets:         outlets,
		menus:           menus,
		logger:          logger,
	}
}

// # Placement

// LineInput is one requested dish in a placement request.
type LineInput struct {
	MenuItemID string
	Quantity   int
}

// PlaceInput holds the customer-supplied fields of a new order.
type PlaceInput struct {
	OutletID string
	Lines    []LineInput
	Note     string
}

/*
Place creates a new order for the customer.

Description: The outlet must exist and be open, and every requested dish must
belong to that outlet's menu and be available. Prices are read from the menu
on the server side and snapshotted onto the order lines, so the total can
never be steered by the client.

Parameters:
  - context: context.Context
  - customerID: string
  - input: PlaceInput

Returns:
  - *Order: Created order in status "placed"
  - error: NotFound, Conflict, validation, or persistence errors
*/
func (service *Service) Place(context context.Context, customerID string, input PlaceInput) (*Order, error) {

	servedBy, err := service.outlets.FindByID(context, input.OutletID)
	if err != nil {
		return nil, err
	}

	if !servedBy.IsOpen {
		return nil, apperr.Conflict("Outlet is currently closed")
	}

	menu, err := service.menus.ListByOutlet(context, servedBy.ID)
	if err != nil {
		return nil, fmt.Errorf("order_service_menu_load_failed: %w", err)
	}

	menuByID := make(map[string]*menuEntry, len(menu))
	for _, item := range menu {
		menuByID[item.ID] = &menuEntry{name: item.Name, priceCents: item.PriceCents, available: item.IsAvailable}
	}

	order := &Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		OutletID:   servedBy.ID,
		VendorID:   servedBy.VendorID,
		Status:     StatusPlaced,
		Note:       input.Note,
	}

	for _, requested := range input.Lines {
		entry, onMenu := menuByID[requested.MenuItemID]
		if !onMenu {
			return nil, apperr.NotFound("Menu item")
		}
		if !entry.available {
			return nil, apperr.Conflict(fmt.Sprintf("%q is currently unavailable", entry.name))
		}

		line := &Line{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: requested.MenuItemID,
			Name:       entry.name,
			PriceCents: entry.priceCents,
			Quantity:   requested.Quantity,
		}
		order.Lines = append(order.Lines, line)
		order.TotalCents += line.Subtotal()
	}

	if err := service.orderRepository.Create(context, order); err != nil {
		return nil, err
	}

	service.logger.Info("order placed",
		"order_id", order.ID, "customer_id", customerID,
		"outlet_id", servedBy.ID, "total_cents", order.TotalCents)

	return order, nil
}

type menuEntry struct {
	name       string
	priceCents int64
	available  bool
}

// # Retrieval

/*
Get fetches a single order.

Description: Lookup first, access second: a missing order is 404 before any
403. The customer who placed it, the vendor whose outlet serves it, and
administrators may read it; everyone else is forbidden.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - orderID: string

Returns:
  - *Order: The order with its lines
  - error: NotFound, Forbidden, or storage errors
*/
func (service *Service) Get(context context.Context, principal *sec.Principal, orderID string) (*Order, error) {

	order, err := service.orderRepository.FindByID(context, orderID)
	if err != nil {
		return nil, err
	}

	if err := service.requireParticipant(principal, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ListMine lists the customer's own orders, newest first.
func (service *Service) ListMine(context context.Context, customerID string, limit, offset int) ([]*Order, int, error) {
	return service.orderRepository.ListByCustomer(context, customerID, limit, offset)
}

/*
ListForVendor lists orders placed against the vendor's outlets.

Description: When an outlet id is given, the outlet must exist and belong to
the caller; a stranger probing another vendor's outlet id sees that vendor's
404-before-403 behavior, never an empty page.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - outletID: string (empty matches all owned outlets)
  - statuses: []Status (empty matches all)
  - limit: int
  - offset: int

Returns:
  - []*Order: Matched orders, newest first
  - int: Total match count
  - error: NotFound, Forbidden, or storage errors
*/
func (service *Service) ListForVendor(context context.Context, principal *sec.Principal, outletID string, statuses []Status, limit, offset int) ([]*Order, int, error) {
	if outletID != "" {
		owned, err := service.outlets.FindByID(context, outletID)
		if err != nil {
			return nil, 0, err
		}
		if err := sec.RequireOwnerOrAdmin(principal, owned); err != nil {
			return nil, 0, err
		}
	}

	return service.orderRepository.ListByVendor(context, principal.UserID, outletID, statuses, limit, offset)
}

// ListAll lists every order on the platform. Administrators only; the route
// layer enforces the role.
func (service *Service) ListAll(context context.Context, statuses []Status, limit, offset int) ([]*Order, int, error) {
	return service.orderRepository.List(context, statuses, limit, offset)
}

// # Lifecycle

/*
Advance moves an order one step along the preparation path.

Description: Only the vendor serving the order or an administrator may
advance it, and only along placed, accepted, preparing, delivered in that
sequence. Anything else is a conflict, not a validation error, because the
order exists but is in the wrong state.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - orderID: string
  - target: Status

Returns:
  - *Order: Updated order
  - error: NotFound, Forbidden, Conflict, or persistence errors
*/
func (service *Service) Advance(context context.Context, principal *sec.Principal, orderID string, target Status) (*Order, error) {

	order, err := service.orderRepository.FindByID(context, orderID)
	if err != nil {
		return nil, err
	}

	if !service.isServingVendor(principal, order) && !principal.IsAdmin() {
		return nil, apperr.Forbidden("Only the serving vendor may update this order")
	}

	if !order.Status.CanAdvanceTo(target) {
		return nil, apperr.Conflict(fmt.Sprintf("Cannot move order from %q to %q", order.Status, target))
	}

	now := time.Now()
	order.Status = target
	switch target {
	case StatusAccepted:
		order.AcceptedAt = pointer.To(now)
	case StatusDelivered:
		order.DeliveredAt = pointer.To(now)
	}

	if err := service.orderRepository.UpdateStatus(context, order); err != nil {
		return nil, fmt.Errorf("order_service_advance_failed: %w", err)
	}

	service.logger.Info("order advanced",
		"order_id", order.ID, "status", order.Status, "by", principal.UserID)

	return order, nil
}

/*
Cancel cancels an order.

Description: The customer may cancel only while the order is still "placed";
once the vendor has accepted it the window is closed. The serving vendor and
administrators may cancel at any point before delivery. Cancelling a
delivered or already-cancelled order is a conflict.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - orderID: string
  - reason: string

Returns:
  - *Order: Updated order
  - error: NotFound, Forbidden, Conflict, or persistence errors
*/
func (service *Service) Cancel(context context.Context, principal *sec.Principal, orderID string, reason string) (*Order, error) {

	order, err := service.orderRepository.FindByID(context, orderID)
	if err != nil {
		return nil, err
	}

	if err := service.requireParticipant(principal, order); err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, apperr.Conflict(fmt.Sprintf("Cannot cancel an order that is %q", order.Status))
	}

	customerCancelling := principal.UserID == order.CustomerID && !principal.IsAdmin()
	if customerCancelling && order.Status != StatusPlaced {
		return nil, apperr.Conflict("The outlet has already accepted this order")
	}

	order.Status = StatusCancelled
	order.CancelReason = reason
	order.CancelledAt = pointer.To(time.Now())

	if err := service.orderRepository.UpdateStatus(context, order); err != nil {
		return nil, fmt.Errorf("order_service_cancel_failed: %w", err)
	}

	service.logger.Info("order cancelled",
		"order_id", order.ID, "by", principal.UserID, "reason", reason)

	return order, nil
}

// # Access Helpers

// requireParticipant admits the owning customer, the serving vendor, and
// administrators.
func (service *Service) requireParticipant(principal *sec.Principal, order *Order) error {
	if service.isServingVendor(principal, order) {
		return nil
	}
	return sec.RequireOwnerOrAdmin(principal, order)
}

func (service *Service) isServingVendor(principal *sec.Principal, order *Order) bool {
	return principal != nil && principal.Role == sec.RoleVendor && principal.UserID == order.VendorID
}
