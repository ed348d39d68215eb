// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package outlet_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealgrid/mealgrid/internal/catalog/outlet"
	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # In-Memory Fakes

type memoryOutletRepository struct {
	outlets map[string]*outlet.Outlet
}

func newMemoryOutletRepository() *memoryOutletRepository {
	return &memoryOutletRepository{outlets: map[string]*outlet.Outlet{}}
}

func (repo *memoryOutletRepository) Create(_ context.Context, created *outlet.Outlet) error {
	for _, existing := range repo.outlets {
		if existing.Slug == created.Slug {
			return apperr.Conflict("Outlet already exists")
		}
	}
	repo.outlets[created.ID] = created
	return nil
}

func (repo *memoryOutletRepository) FindByID(_ context.Context, id string) (*outlet.Outlet, error) {
	if found, ok := repo.outlets[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Outlet")
}

func (repo *memoryOutletRepository) FindBySlug(_ context.Context, slug string) (*outlet.Outlet, error) {
	for _, found := range repo.outlets {
		if found.Slug == slug {
			return found, nil
		}
	}
	return nil, apperr.NotFound("Outlet")
}

func (repo *memoryOutletRepository) List(_ context.Context, cuisine string, _, _ int) ([]*outlet.Outlet, int, error) {
	matched := []*outlet.Outlet{}
	for _, found := range repo.outlets {
		if cuisine == "" || found.Cuisine == cuisine {
			matched = append(matched, found)
		}
	}
	return matched, len(matched), nil
}

func (repo *memoryOutletRepository) ListByVendor(_ context.Context, vendorID string) ([]*outlet.Outlet, error) {
	matched := []*outlet.Outlet{}
	for _, found := range repo.outlets {
		if found.VendorID == vendorID {
			matched = append(matched, found)
		}
	}
	return matched, nil
}

func (repo *memoryOutletRepository) Update(_ context.Context, updated *outlet.Outlet) error {
	repo.outlets[updated.ID] = updated
	return nil
}

func (repo *memoryOutletRepository) Delete(_ context.Context, id string) error {
	delete(repo.outlets, id)
	return nil
}

type memoryMenuRepository struct {
	items map[string]*outlet.MenuItem
}

func newMemoryMenuRepository() *memoryMenuRepository {
	return &memoryMenuRepository{items: map[string]*outlet.MenuItem{}}
}

func (repo *memoryMenuRepository) Create(_ context.Context, item *outlet.MenuItem) error {
	repo.items[item.ID] = item
	return nil
}

func (repo *memoryMenuRepository) FindByID(_ context.Context, id string) (*outlet.MenuItem, error) {
	if item, ok := repo.items[id]; ok {
		return item, nil
	}
	return nil, apperr.NotFound("Menu item")
}

func (repo *memoryMenuRepository) ListByOutlet(_ context.Context, outletID string) ([]*outlet.MenuItem, error) {
	items := []*outlet.MenuItem{}
	for _, item := range repo.items {
		if item.OutletID == outletID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (repo *memoryMenuRepository) Update(_ context.Context, item *outlet.MenuItem) error {
	repo.items[item.ID] = item
	return nil
}

func (repo *memoryMenuRepository) Delete(_ context.Context, id string) error {
	delete(repo.items, id)
	return nil
}

// # Harness

func newOutletService() (*outlet.Service, *memoryOutletRepository, *memoryMenuRepository) {
	outlets := newMemoryOutletRepository()
	menus := newMemoryMenuRepository()
	return outlet.NewService(outlets, menus, slog.Default()), outlets, menus
}

func vendorPrincipal(id string) *sec.Principal {
	return &sec.Principal{
		UserID:       id,
		Role:         sec.RoleVendor,
		IsActive:     true,
		VendorStatus: sec.VendorStatusApproved,
	}
}

// # Tests

func TestService_CreateOutlet_GeneratesSlug(t *testing.T) {
	service, _, _ := newOutletService()

	created, err := service.CreateOutlet(context.Background(), "vendor-1", outlet.OutletInput{
		Name:    "Tonkotsu House Shibuya",
		Address: "1-2-3 Dogenzaka",
		IsOpen:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "tonkotsu-house-shibuya", created.Slug)
	assert.Equal(t, "vendor-1", created.OwnerID())

	// Same name collides on the slug.
	_, err = service.CreateOutlet(context.Background(), "vendor-2", outlet.OutletInput{
		Name:    "Tonkotsu House Shibuya",
		Address: "Elsewhere",
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}

func TestService_UpdateOutlet_Ownership(t *testing.T) {
	service, _, _ := newOutletService()

	created, err := service.CreateOutlet(context.Background(), "vendor-1", outlet.OutletInput{
		Name:    "Bun Cha Corner",
		Address: "Old Quarter",
	})
	require.NoError(t, err)

	input := outlet.OutletInput{Name: "Bun Cha Corner", Address: "New Quarter", IsOpen: true}

	// The owner may update.
	updated, err := service.UpdateOutlet(context.Background(), vendorPrincipal("vendor-1"), created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "New Quarter", updated.Address)

	// A different vendor is forbidden.
	_, err = service.UpdateOutlet(context.Background(), vendorPrincipal("vendor-2"), created.ID, input)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	// An admin bypasses ownership.
	admin := &sec.Principal{UserID: "admin-1", Role: sec.RoleAdmin, IsActive: true}
	_, err = service.UpdateOutlet(context.Background(), admin, created.ID, input)
	assert.NoError(t, err)

	// A missing outlet is 404 even for a stranger, never 403.
	_, err = service.UpdateOutlet(context.Background(), vendorPrincipal("vendor-2"), "ghost", input)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

func TestService_MenuOwnership(t *testing.T) {
	service, _, _ := newOutletService()

	created, err := service.CreateOutlet(context.Background(), "vendor-1", outlet.OutletInput{
		Name:    "Pho 88",
		Address: "District 1",
	})
	require.NoError(t, err)

	item, err := service.AddMenuItem(context.Background(), vendorPrincipal("vendor-1"), created.ID, outlet.MenuItemInput{
		Name:        "Pho Bo",
		PriceCents:  1200,
		IsAvailable: true,
	})
	require.NoError(t, err)

	// A stranger cannot touch the dish through the item route either.
	_, err = service.UpdateMenuItem(context.Background(), vendorPrincipal("vendor-2"), item.ID, outlet.MenuItemInput{
		Name:       "Pho Bo",
		PriceCents: 1,
	})
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	require.NoError(t, service.RemoveMenuItem(context.Background(), vendorPrincipal("vendor-1"), item.ID))

	menu, err := service.Menu(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, menu)
}
