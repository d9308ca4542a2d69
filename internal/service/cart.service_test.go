package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo/memstore"
)

func newCartFixture() (*memstore.Store, CartService, domain.Product) {
	store := memstore.New()
	p := store.AddProduct(domain.Product{Name: "Pandesal", Price: decimal.RequireFromString("5.00"), StockQuantity: 100})
	return store, NewCartService(discardLogger(), store.Carts(), store.Products()), p
}

func TestCartService_AddItem_MergesSameBread(t *testing.T) {
	_, svc, p := newCartFixture()
	ctx := context.Background()

	first, err := svc.AddItem(ctx, shopper, p.ID, 2)
	require.NoError(t, err)
	second, err := svc.AddItem(ctx, shopper, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	cart, err := svc.GetCart(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "25", cart.Total.String())
}

func TestCartService_AddItem_Rejects(t *testing.T) {
	_, svc, p := newCartFixture()

	_, err := svc.AddItem(context.Background(), shopper, p.ID, 0)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.AddItem(context.Background(), shopper, 404, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	store, svc, p := newCartFixture()
	ctx := context.Background()
	entry := store.AddCartEntry(shopper, p.ID, 1)

	updated, err := svc.UpdateQuantity(ctx, shopper, entry.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, other, entry.ID, 9)
	assert.ErrorIs(t, err, domain.ErrCartEntryNotFound)

	removed, err := svc.UpdateQuantity(ctx, shopper, entry.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.False(t, store.CartEntryExists(entry.ID))
}

func TestCartService_RemoveItem(t *testing.T) {
	store, svc, p := newCartFixture()
	entry := store.AddCartEntry(shopper, p.ID, 1)

	assert.ErrorIs(t, svc.RemoveItem(context.Background(), other, entry.ID), domain.ErrCartEntryNotFound)
	require.NoError(t, svc.RemoveItem(context.Background(), shopper, entry.ID))
	assert.False(t, store.CartEntryExists(entry.ID))
}

func TestCatalogService(t *testing.T) {
	store := memstore.New()
	store.Seed()
	svc := NewCatalogService(store.Products())

	all, err := svc.ListBreads(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	found, err := svc.ListBreads(context.Background(), "  yam ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ube Loaf", found[0].Name)

	_, err = svc.GetBread(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
