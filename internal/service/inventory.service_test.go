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

func bread(name, price string, stock int) BreadInput {
	return BreadInput{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		ImagePath:     "uploads/" + name + ".jpg",
	}
}

func TestInventoryService_Dashboard(t *testing.T) {
	store := memstore.New()
	svc := NewInventoryService(discardLogger(), store.Products())
	ctx := context.Background()

	for _, in := range []BreadInput{
		bread("Sourdough", "150.00", 12),
		bread("Baguette", "80.00", 3),
		bread("Pandesal", "5.00", 0),
	} {
		_, err := svc.CreateBread(ctx, in)
		require.NoError(t, err)
	}

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Breads, 3)
	assert.Equal(t, 3, d.Statistics.TotalBreads)
	assert.Equal(t, 15, d.Statistics.TotalStock)
	assert.Equal(t, "2040", d.Statistics.TotalValue.String())
	assert.Equal(t, 2, d.Statistics.LowStockCount)
}

func TestInventoryService_CreateBread_Validation(t *testing.T) {
	svc := NewInventoryService(discardLogger(), memstore.New().Products())

	in := bread(" ", "-1", -2)
	_, err := svc.CreateBread(context.Background(), in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "stock_quantity")
}

func TestInventoryService_UpdateAndDelete(t *testing.T) {
	store := memstore.New()
	svc := NewInventoryService(discardLogger(), store.Products())
	ctx := context.Background()

	created, err := svc.CreateBread(ctx, bread("Ube Loaf", "120.00", 8))
	require.NoError(t, err)

	updated, err := svc.UpdateBread(ctx, created.ID, bread("Ube Loaf", "135.00", 6))
	require.NoError(t, err)
	assert.Equal(t, "135", updated.Price.String())
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	got, _ := store.Product(created.ID)
	assert.Equal(t, 6, got.StockQuantity)

	_, err = svc.UpdateBread(ctx, 999, bread("Ghost", "1.00", 1))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	require.NoError(t, svc.DeleteBread(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteBread(ctx, created.ID), domain.ErrProductNotFound)
}

func TestInventoryService_PriceUpdateKeepsPlacedOrders(t *testing.T) {
	f := newFixture(t, 1)
	inventory := NewInventoryService(discardLogger(), f.store.Products())
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, shopper, codInput())
	require.NoError(t, err)

	_, err = inventory.UpdateBread(ctx, f.sourdough.ID, bread("Sourdough", "175.00", 10))
	require.NoError(t, err)

	got, err := f.svc.GetOrder(ctx, shopper, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "380", got.TotalAmount.String())
	assert.Equal(t, "150", got.Items[0].Price.String())
}
