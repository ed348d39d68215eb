// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package outlet

import (
	"context"
)

// # Outlet Data Access

// OutletRepository defines the data access contract for outlets.
type OutletRepository interface {

	/*
		Create persists a brand-new outlet.

		Parameters:
		  - context: context.Context
		  - outlet: *Outlet

		Returns:
		  - error: Persistence failures (including slug uniqueness conflicts)
	*/
	Create(context context.Context, outlet *Outlet) error

	/*
		FindByID returns the outlet with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Outlet: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Outlet, error)

	/*
		FindBySlug returns the outlet with the given slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Outlet: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Outlet, error)

	/*
		List returns outlets for public browsing, newest first. An empty
		cuisine matches all.

		Parameters:
		  - context: context.Context
		  - cuisine: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Outlet: Matched outlets
		  - int: Total match count
		  - error: Database retrieval failures
	*/
	List(context context.Context, cuisine string, limit, offset int) ([]*Outlet, int, error)

	/*
		ListByVendor returns every outlet owned by the vendor, newest first.

		Parameters:
		  - context: context.Context
		  - vendorID: string

		Returns:
		  - []*Outlet: Owned outlets
		  - error: Database retrieval failures
	*/
	ListByVendor(context context.Context, vendorID string) ([]*Outlet, error)

	/*
		Update persists changes to the outlet's mutable fields.

		Parameters:
		  - context: context.Context
		  - outlet: *Outlet

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, outlet *Outlet) error

	/*
		Delete removes the outlet and, via cascade, its menu.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Menu Data Access

// MenuRepository defines the data access contract for menu items.
type MenuRepository interface {

	/*
		Create persists a new menu item.

		Parameters:
		  - context: context.Context
		  - item: *MenuItem

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, item *MenuItem) error

	/*
		FindByID returns the menu item with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *MenuItem: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*MenuItem, error)

	/*
		ListByOutlet returns the outlet's menu in insertion order.

		Parameters:
		  - context: context.Context
		  - outletID: string

		Returns:
		  - []*MenuItem: Menu items
		  - error: Database retrieval failures
	*/
	ListByOutlet(context context.Context, outletID string) ([]*MenuItem, error)

	/*
		Update persists changes to the item's mutable fields.

		Parameters:
		  - context: context.Context
		  - item: *MenuItem

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, item *MenuItem) error

	/*
		Delete removes a menu item.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}
