// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package outlet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/pkg/slug"
	"github.com/mealgrid/mealgrid/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for outlets and menus.
type Service struct {
	outletRepository OutletRepository
	menuRepository   MenuRepository
	logger           *slog.Logger
}

// NewService constructs a new [Service] with its required repositories.
func NewService(outletRepo OutletRepository, menuRepo MenuRepository, logger *slog.Logger) *Service {
	return &Service{
		outletRepository: outletRepo,
		menuRepository:   menuRepo,
		logger:           logger,
	}
}

// # Public Browsing

/*
ListOutlets retrieves outlets for the public catalog.

Parameters:
  - context: context.Context
  - cuisine: string (empty matches all)
  - limit: int
  - offset: int

Returns:
  - []*Outlet: Matched outlets, newest first
  - int: Total match count
  - error: Storage or execution errors
*/
func (service *Service) ListOutlets(context context.Context, cuisine string, limit, offset int) ([]*Outlet, int, error) {
	return service.outletRepository.List(context, cuisine, limit, offset)
}

/*
GetOutletBySlug retrieves a single outlet by its public slug.

Parameters:
  - context: context.Context
  - outletSlug: string

Returns:
  - *Outlet: The hydrated domain entity
  - error: apperr.NotFound if no outlet carries the slug
*/
func (service *Service) GetOutletBySlug(context context.Context, outletSlug string) (*Outlet, error) {
	return service.outletRepository.FindBySlug(context, outletSlug)
}

/*
Menu retrieves the outlet's menu for public display.

Parameters:
  - context: context.Context
  - outletID: string

Returns:
  - []*MenuItem: Menu in insertion order
  - error: Storage errors
*/
func (service *Service) Menu(context context.Context, outletID string) ([]*MenuItem, error) {
	if _, err := service.outletRepository.FindByID(context, outletID); err != nil {
		return nil, err
	}
	return service.menuRepository.ListByOutlet(context, outletID)
}

// # Vendor Management

// OutletInput holds the vendor-editable fields of an outlet.
type OutletInput struct {
	Name        string
	Description string
	Cuisine     string
	Address     string
	IsOpen      bool
}

/*
CreateOutlet opens a new outlet for the vendor.

Description: Generates the public slug from the outlet name (normalized, so
"Tonkotsu House Shibuya" becomes "tonkotsu-house-shibuya"). A duplicate name
surfaces as a slug-uniqueness conflict from storage.

Parameters:
  - context: context.Context
  - vendorID: string (Owner)
  - input: OutletInput

Returns:
  - *Outlet: Created entity
  - error: Validation or persistence errors
*/
func (service *Service) CreateOutlet(context context.Context, vendorID string, input OutletInput) (*Outlet, error) {

	created := &Outlet{
		ID:          uuid.New(),
		VendorID:    vendorID,
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		Cuisine:     input.Cuisine,
		Address:     input.Address,
		IsOpen:      input.IsOpen,
	}

	if err := service.outletRepository.Create(context, created); err != nil {
		return nil, err
	}

	service.logger.Info("outlet created",
		"outlet_id", created.ID, "vendor_id", vendorID, "slug", created.Slug)

	return created, nil
}

/*
UpdateOutlet modifies an outlet owned by the principal.

Description: Lookup first, ownership second: a missing outlet is 404 before
any 403, so strangers learn nothing from probing ids. Admins bypass the
ownership check.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - outletID: string
  - input: OutletInput

Returns:
  - *Outlet: Updated entity
  - error: NotFound, Forbidden, or persistence errors
*/
func (service *Service) UpdateOutlet(context context.Context, principal *sec.Principal, outletID string, input OutletInput) (*Outlet, error) {

	existing, err := service.outletRepository.FindByID(context, outletID)
	if err != nil {
		return nil, err
	}

	if err := sec.RequireOwnerOrAdmin(principal, existing); err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Cuisine = input.Cuisine
	existing.Address = input.Address
	existing.IsOpen = input.IsOpen

	if err := service.outletRepository.Update(context, existing); err != nil {
		return nil, fmt.Errorf("outlet_service_update_failed: %w", err)
	}

	return existing, nil
}

/*
DeleteOutlet removes an outlet owned by the principal.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - outletID: string

Returns:
  - error: NotFound, Forbidden, or persistence errors
*/
func (service *Service) DeleteOutlet(context context.Context, principal *sec.Principal, outletID string) error {

	existing, err := service.outletRepository.FindByID(context, outletID)
	if err != nil {
		return err
	}

	if err := sec.RequireOwnerOrAdmin(principal, existing); err != nil {
		return err
	}

	if err := service.outletRepository.Delete(context, outletID); err != nil {
		return fmt.Errorf("outlet_service_delete_failed: %w", err)
	}

	service.logger.Info("outlet deleted", "outlet_id", outletID, "by", principal.UserID)

	return nil
}

/*
MyOutlets lists the vendor's own outlets.

Parameters:
  - context: context.Context
  - vendorID: string

Returns:
  - []*Outlet: Owned outlets, newest first
  - error: Storage errors
*/
func (service *Service) MyOutlets(context context.Context, vendorID string) ([]*Outlet, error) {
	return service.outletRepository.ListByVendor(context, vendorID)
}

// # Menu Management

// MenuItemInput holds the vendor-editable fields of a menu item.
type MenuItemInput struct {
	Name        string
	Description string
	PriceCents  int64
	IsAvailable bool
}

/*
AddMenuItem appends a dish to an outlet the principal owns.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - outletID: string
  - input: MenuItemInput

Returns:
  - *MenuItem: Created entity
  - error: NotFound, Forbidden, or persistence errors
*/
func (service *Service) AddMenuItem(context context.Context, principal *sec.Principal, outletID string, input MenuItemInput) (*MenuItem, error) {

	owner, err := service.outletRepository.FindByID(context, outletID)
	if err != nil {
		return nil, err
	}

	if err := sec.RequireOwnerOrAdmin(principal, owner); err != nil {
		return nil, err
	}

	item := &MenuItem{
		ID:          uuid.New(),
		OutletID:    outletID,
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		IsAvailable: input.IsAvailable,
	}

	if err := service.menuRepository.Create(context, item); err != nil {
		return nil, fmt.Errorf("outlet_service_add_item_failed: %w", err)
	}

	return item, nil
}

/*
UpdateMenuItem modifies a dish on an outlet the principal owns.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - itemID: string
  - input: MenuItemInput

Returns:
  - *MenuItem: Updated entity
  - error: NotFound, Forbidden, or persistence errors
*/
func (service *Service) UpdateMenuItem(context context.Context, principal *sec.Principal, itemID string, input MenuItemInput) (*MenuItem, error) {

	item, err := service.menuRepository.FindByID(context, itemID)
	if err != nil {
		return nil, err
	}

	owner, err := service.outletRepository.FindByID(context, item.OutletID)
	if err != nil {
		return nil, err
	}

	if err := sec.RequireOwnerOrAdmin(principal, owner); err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.Description = input.Description
	item.PriceCents = input.PriceCents
	item.IsAvailable = input.IsAvailable

	if err := service.menuRepository.Update(context, item); err != nil {
		return nil, fmt.Errorf("outlet_service_update_item_failed: %w", err)
	}

	return item, nil
}

/*
RemoveMenuItem deletes a dish from an outlet the principal owns.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - itemID: string

Returns:
  - error: NotFound, Forbidden, or persistence errors
*/
func (service *Service) RemoveMenuItem(context context.Context, principal *sec.Principal, itemID string) error {

	item, err := service.menuRepository.FindByID(context, itemID)
	if err != nil {
		return err
	}

	owner, err := service.outletRepository.FindByID(context, item.OutletID)
	if err != nil {
		return err
	}

	if err := sec.RequireOwnerOrAdmin(principal, owner); err != nil {
		return err
	}

	if err := service.menuRepository.Delete(context, itemID); err != nil {
		return fmt.Errorf("outlet_service_remove_item_failed: %w", err)
	}

	return nil
}
