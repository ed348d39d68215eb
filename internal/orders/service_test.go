// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package orders_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealgrid/mealgrid/internal/catalog/outlet"
	"github.com/mealgrid/mealgrid/internal/orders"
	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # In-Memory Fakes

type memoryOrderRepository struct {
	orders map[string]*orders.Order
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{orders: map[string]*orders.Order{}}
}

func (repo *memoryOrderRepository) Create(_ context.Context, order *orders.Order) error {
	repo.orders[order.ID] = order
	return nil
}

func (repo *memoryOrderRepository) FindByID(_ context.Context, id string) (*orders.Order, error) {
	if order, ok := repo.orders[id]; ok {
		return order, nil
	}
	return nil, apperr.NotFound("Order")
}

func (repo *memoryOrderRepository) ListByCustomer(_ context.Context, customerID string, _, _ int) ([]*orders.Order, int, error) {
	matched := []*orders.Order{}
	for _, order := range repo.orders {
		if order.CustomerID == customerID {
			matched = append(matched, order)
		}
	}
	return matched, len(matched), nil
}

func (repo *memoryOrderRepository) ListByVendor(_ context.Context, vendorID, outletID string, statuses []orders.Status, _, _ int) ([]*orders.Order, int, error) {
	matched := []*orders.Order{}
	for _, order := range repo.orders {
		if order.VendorID != vendorID {
			continue
		}
		if outletID != "" && order.OutletID != outletID {
			continue
		}
		if matchesStatus(order, statuses) {
			matched = append(matched, order)
		}
	}
	return matched, len(matched), nil
}

func (repo *memoryOrderRepository) List(_ context.Context, statuses []orders.Status, _, _ int) ([]*orders.Order, int, error) {
	matched := []*orders.Order{}
	for _, order := range repo.orders {
		if matchesStatus(order, statuses) {
			matched = append(matched, order)
		}
	}
	return matched, len(matched), nil
}

func (repo *memoryOrderRepository) UpdateStatus(_ context.Context, order *orders.Order) error {
	repo.orders[order.ID] = order
	return nil
}

func matchesStatus(order *orders.Order, statuses []orders.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, status := range statuses {
		if order.Status == status {
			return true
		}
	}
	return false
}

type stubCatalog struct {
	outlets map[string]*outlet.Outlet
	menus   map[string][]*outlet.MenuItem
}

func (catalog *stubCatalog) FindByID(_ context.Context, id string) (*outlet.Outlet, error) {
	if found, ok := catalog.outlets[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Outlet")
}

func (catalog *stubCatalog) ListByOutlet(_ context.Context, outletID string) ([]*outlet.MenuItem, error) {
	return catalog.menus[outletID], nil
}

// # Harness

type orderHarness struct {
	service *orders.Service
	repo    *memoryOrderRepository
	catalog *stubCatalog
}

func newOrderHarness() *orderHarness {
	catalog := &stubCatalog{
		outlets: map[string]*outlet.Outlet{
			"outlet-1": {ID: "outlet-1", VendorID: "vendor-1", Name: "Pho 88", IsOpen: true},
			"outlet-2": {ID: "outlet-2", VendorID: "vendor-2", Name: "Closed Kitchen", IsOpen: false},
		},
		menus: map[string][]*outlet.MenuItem{
			"outlet-1": {
				{ID: "dish-pho", OutletID: "outlet-1", Name: "Pho Bo", PriceCents: 1200, IsAvailable: true},
				{ID: "dish-roll", OutletID: "outlet-1", Name: "Summer Rolls", PriceCents: 650, IsAvailable: true},
				{ID: "dish-off", OutletID: "outlet-1", Name: "Seasonal Special", PriceCents: 1500, IsAvailable: false},
			},
		},
	}

	repo := newMemoryOrderRepository()
	return &orderHarness{
		service: orders.NewService(repo, catalog, catalog, slog.Default()),
		repo:    repo,
		catalog: catalog,
	}
}

func (harness *orderHarness) place(t *testing.T, customerID string) *orders.Order {
	t.Helper()
	placed, err := harness.service.Place(context.Background(), customerID, orders.PlaceInput{
		OutletID: "outlet-1",
		Lines: []orders.LineInput{
			{MenuItemID: "dish-pho", Quantity: 2},
			{MenuItemID: "dish-roll", Quantity: 1},
		},
	})
	require.NoError(t, err)
	return placed
}

func customer(id string) *sec.Principal {
	return &sec.Principal{UserID: id, Role: sec.RoleCustomer, IsActive: true}
}

func servingVendor(id string) *sec.Principal {
	return &sec.Principal{UserID: id, Role: sec.RoleVendor, IsActive: true, VendorStatus: sec.VendorStatusApproved}
}

func admin() *sec.Principal {
	return &sec.Principal{UserID: "admin-1", Role: sec.RoleAdmin, IsActive: true}
}

// # Placement

func TestService_Place_PricesFromMenu(t *testing.T) {
	harness := newOrderHarness()

	placed := harness.place(t, "customer-1")

	assert.Equal(t, orders.StatusPlaced, placed.Status)
	assert.Equal(t, "vendor-1", placed.VendorID)
	require.Len(t, placed.Lines, 2)
	// 2 * 1200 + 1 * 650, regardless of anything the client claimed.
	assert.Equal(t, int64(3050), placed.TotalCents)
	assert.Equal(t, "Pho Bo", placed.Lines[0].Name)
}

func TestService_Place_Failures(t *testing.T) {
	harness := newOrderHarness()

	cases := []struct {
		name       string
		input      orders.PlaceInput
		wantStatus int
	}{
		{
			name:       "unknown outlet",
			input:      orders.PlaceInput{OutletID: "ghost", Lines: []orders.LineInput{{MenuItemID: "dish-pho", Quantity: 1}}},
			wantStatus: 404,
		},
		{
			name:       "closed outlet",
			input:      orders.PlaceInput{OutletID: "outlet-2", Lines: []orders.LineInput{{MenuItemID: "dish-pho", Quantity: 1}}},
			wantStatus: 409,
		},
		{
			name:       "dish from another outlet",
			input:      orders.PlaceInput{OutletID: "outlet-1", Lines: []orders.LineInput{{MenuItemID: "stranger-dish", Quantity: 1}}},
			wantStatus: 404,
		},
		{
			name:       "unavailable dish",
			input:      orders.PlaceInput{OutletID: "outlet-1", Lines: []orders.LineInput{{MenuItemID: "dish-off", Quantity: 1}}},
			wantStatus: 409,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := harness.service.Place(context.Background(), "customer-1", testCase.input)
			require.Error(t, err)
			assert.Equal(t, testCase.wantStatus, apperr.As(err).HTTPStatus)
		})
	}
}

// # Retrieval

func TestService_Get_Access(t *testing.T) {
	harness := newOrderHarness()
	placed := harness.place(t, "customer-1")

	// The owning customer, the serving vendor, and admins may read.
	for _, principal := range []*sec.Principal{customer("customer-1"), servingVendor("vendor-1"), admin()} {
		_, err := harness.service.Get(context.Background(), principal, placed.ID)
		assert.NoError(t, err, "role %s", principal.Role)
	}

	// Another customer and a non-serving vendor are forbidden.
	for _, principal := range []*sec.Principal{customer("customer-2"), servingVendor("vendor-2")} {
		_, err := harness.service.Get(context.Background(), principal, placed.ID)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	}

	// A missing order is 404 even for a stranger.
	_, err := harness.service.Get(context.Background(), customer("customer-2"), "ghost")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

// # Lifecycle

func TestService_Advance_HappyPath(t *testing.T) {
	harness := newOrderHarness()
	placed := harness.place(t, "customer-1")
	vendor := servingVendor("vendor-1")

	for _, target := range []orders.Status{orders.StatusAccepted, orders.StatusPreparing, orders.StatusDelivered} {
		advanced, err := harness.service.Advance(context.Background(), vendor, placed.ID, target)
		require.NoError(t, err)
		assert.Equal(t, target, advanced.Status)
	}

	stored, err := harness.service.Get(context.Background(), vendor, placed.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.AcceptedAt)
	assert.NotNil(t, stored.DeliveredAt)
	assert.Nil(t, stored.CancelledAt)
}

func TestService_Advance_Failures(t *testing.T) {
	harness := newOrderHarness()
	placed := harness.place(t, "customer-1")

	// Skipping a step is a conflict.
	_, err := harness.service.Advance(context.Background(), servingVendor("vendor-1"), placed.ID, orders.StatusDelivered)
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)

	// A different vendor cannot touch the order at all.
	_, err = harness.service.Advance(context.Background(), servingVendor("vendor-2"), placed.ID, orders.StatusAccepted)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	// The customer cannot drive the kitchen side either.
	_, err = harness.service.Advance(context.Background(), customer("customer-1"), placed.ID, orders.StatusAccepted)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)
}

func TestService_Cancel_CustomerWindow(t *testing.T) {
	harness := newOrderHarness()
	placed := harness.place(t, "customer-1")

	// Before acceptance the customer may cancel.
	cancelled, err := harness.service.Cancel(context.Background(), customer("customer-1"), placed.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelledAt)

	// After acceptance the customer's window is closed.
	accepted := harness.place(t, "customer-1")
	_, err = harness.service.Advance(context.Background(), servingVendor("vendor-1"), accepted.ID, orders.StatusAccepted)
	require.NoError(t, err)

	_, err = harness.service.Cancel(context.Background(), customer("customer-1"), accepted.ID, "too late")
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)

	// The serving vendor may still cancel it.
	_, err = harness.service.Cancel(context.Background(), servingVendor("vendor-1"), accepted.ID, "out of broth")
	assert.NoError(t, err)
}

func TestService_Cancel_TerminalStates(t *testing.T) {
	harness := newOrderHarness()
	placed := harness.place(t, "customer-1")
	vendor := servingVendor("vendor-1")

	for _, target := range []orders.Status{orders.StatusAccepted, orders.StatusPreparing, orders.StatusDelivered} {
		_, err := harness.service.Advance(context.Background(), vendor, placed.ID, target)
		require.NoError(t, err)
	}

	// Delivered orders cannot be cancelled, not even by an admin.
	_, err := harness.service.Cancel(context.Background(), admin(), placed.ID, "no")
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}

func TestService_ListForVendor_StatusFilter(t *testing.T) {
	harness := newOrderHarness()
	first := harness.place(t, "customer-1")
	harness.place(t, "customer-2")

	_, err := harness.service.Advance(context.Background(), servingVendor("vendor-1"), first.ID, orders.StatusAccepted)
	require.NoError(t, err)

	vendor := servingVendor("vendor-1")

	accepted, total, err := harness.service.ListForVendor(context.Background(), vendor, "", []orders.Status{orders.StatusAccepted}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, accepted, 1)
	assert.Equal(t, first.ID, accepted[0].ID)

	everything, total, err := harness.service.ListForVendor(context.Background(), vendor, "", nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, everything, 2)

	// Narrowed to a single owned outlet.
	scoped, total, err := harness.service.ListForVendor(context.Background(), vendor, "outlet-1", nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, scoped, 2)

	// Another vendor's outlet id is forbidden, and an unknown one is 404.
	_, _, err = harness.service.ListForVendor(context.Background(), servingVendor("vendor-2"), "outlet-1", nil, 20, 0)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	_, _, err = harness.service.ListForVendor(context.Background(), vendor, "ghost", nil, 20, 0)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}
