package repo_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"bakery-storefront/internal/database"
	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo"
)

type pgEnv struct {
	svc       database.Service
	db        *sql.DB
	tx        repo.Transactor
	products  repo.ProductRepo
	carts     repo.CartRepo
	orders    repo.OrderRepo
	addresses repo.AddressRepo
}

func setupPostgres(t *testing.T) *pgEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bakery"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pgC)
	require.NoError(t, err)

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := database.Open(ctx, log, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, database.Migrate(ctx, svc.DB()))
	// twice, to prove it is idempotent
	require.NoError(t, database.Migrate(ctx, svc.DB()))

	db := svc.DB()
	return &pgEnv{
		svc:       svc,
		db:        db,
		tx:        repo.NewTransactor(db),
		products:  repo.NewProductRepo(db),
		carts:     repo.NewCartRepo(db),
		orders:    repo.NewOrderRepo(db),
		addresses: repo.NewAddressRepo(db),
	}
}

func (e *pgEnv) insertProduct(t *testing.T, name, price string, stock int) int64 {
	t.Helper()
	var id int64
	err := e.db.QueryRow(
		`INSERT INTO products (name, price, stock_quantity, image_path) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, price, stock, name+".jpg",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func (e *pgEnv) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func TestPostgres_Repositories(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()

	sourdough := env.insertProduct(t, "Sourdough", "150.00", 5)
	baguette := env.insertProduct(t, "Baguette", "80.00", 1)

	t.Run("products", func(t *testing.T) {
		p, err := env.products.FindByID(ctx, sourdough)
		require.NoError(t, err)
		assert.Equal(t, "Sourdough", p.Name)
		assert.True(t, decimal.RequireFromString("150").Equal(p.Price))

		missing, err := env.products.FindByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missing)

		found, err := env.products.List(ctx, "bague")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, baguette, found[0].ID)
	})

	t.Run("stock clamp and restore", func(t *testing.T) {
		id := env.insertProduct(t, "Pandesal", "5.00", 2)
		err := env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			return env.products.DecrementStock(ctx, tx, id, 10)
		})
		require.NoError(t, err)
		assert.Equal(t, 0, env.stock(t, id))

		err = env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			return env.products.IncrementStock(ctx, tx, id, 4)
		})
		require.NoError(t, err)
		assert.Equal(t, 4, env.stock(t, id))
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			if err := env.products.DecrementStock(ctx, tx, sourdough, 1); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 5, env.stock(t, sourdough))
	})

	t.Run("cart scoped to owner", func(t *testing.T) {
		mine := &domain.CartEntry{UserID: 1, ProductID: sourdough, Quantity: 2}
		require.NoError(t, env.carts.Create(ctx, mine))
		theirs := &domain.CartEntry{UserID: 2, ProductID: baguette, Quantity: 1}
		require.NoError(t, env.carts.Create(ctx, theirs))

		entries, err := env.carts.FindByUser(ctx, 1, []int64{mine.ID, theirs.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Sourdough", entries[0].Product.Name)

		got, err := env.carts.FindByID(ctx, theirs.ID, 1)
		require.NoError(t, err)
		assert.Nil(t, got)

		err = env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			return env.carts.DeleteByIDs(ctx, tx, 1, []int64{mine.ID, theirs.ID})
		})
		require.NoError(t, err)

		left, err := env.carts.FindByUser(ctx, 2, nil)
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})

	t.Run("orders", func(t *testing.T) {
		order := domain.NewOrder(domain.NewOrderParams{
			UserID:          1,
			PaymentMethod:   domain.PaymentMaya,
			ShippingMethod:  domain.ShippingExpress,
			ShippingAddress: "1 Luna St",
			Entries: []domain.CartEntry{
				{ProductID: sourdough, Quantity: 2, Product: domain.Product{ID: sourdough, Name: "Sourdough", Price: decimal.RequireFromString("150.00")}},
			},
		})
		err := env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			return env.orders.CreateOrder(ctx, tx, &order)
		})
		require.NoError(t, err)
		require.NotZero(t, order.ID)
		require.NotZero(t, order.Items[0].ID)

		got, err := env.orders.FindByIDAndUser(ctx, order.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
		assert.True(t, decimal.RequireFromString("300").Equal(got.TotalAmount))
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Sourdough.jpg", got.Items[0].Product.ImagePath)

		hidden, err := env.orders.FindByIDAndUser(ctx, order.ID, 2)
		require.NoError(t, err)
		assert.Nil(t, hidden)

		got.Status = domain.OrderCancelled
		got.UpdatedAt = time.Now().UTC()
		var first, second bool
		require.NoError(t, env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			first, err = env.orders.TransitionStatus(ctx, tx, got, domain.OrderPending)
			return err
		}))
		require.NoError(t, env.tx.WithinTx(ctx, func(tx repo.DBTX) error {
			second, err = env.orders.TransitionStatus(ctx, tx, got, domain.OrderPending)
			return err
		}))
		assert.True(t, first)
		assert.False(t, second)

		list, err := env.orders.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, domain.OrderCancelled, list[0].Status)
		assert.Equal(t, 1, list[0].ItemCount)
	})

	t.Run("product writes", func(t *testing.T) {
		p := &domain.Product{Name: "Ensaymada", Price: decimal.RequireFromString("35.00"), StockQuantity: 40, ImagePath: "uploads/ensaymada.jpg"}
		require.NoError(t, env.products.Create(ctx, p))
		require.NotZero(t, p.ID)

		p.Price = decimal.RequireFromString("38.50")
		p.StockQuantity = 30
		found, err := env.products.Update(ctx, p)
		require.NoError(t, err)
		assert.True(t, found)
		got, err := env.products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("38.50").Equal(got.Price))
		assert.Equal(t, "uploads/ensaymada.jpg", got.ImagePath)

		entry := &domain.CartEntry{UserID: 5, ProductID: p.ID, Quantity: 1}
		require.NoError(t, env.carts.Create(ctx, entry))

		found, err = env.products.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, found)
		gone, err := env.carts.FindByID(ctx, entry.ID, 5)
		require.NoError(t, err)
		assert.Nil(t, gone)

		found, err = env.products.Update(ctx, p)
		require.NoError(t, err)
		assert.False(t, found)
		found, err = env.products.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("health", func(t *testing.T) {
		stats := env.svc.Health(ctx)
		assert.Equal(t, "up", stats["status"])
		assert.Equal(t, "25", stats["max_open"])
	})

	t.Run("addresses", func(t *testing.T) {
		var id int64
		require.NoError(t, env.db.QueryRow(
			`INSERT INTO addresses (user_id, label, address) VALUES (1, 'Home', '88 Mabini Ave') RETURNING id`,
		).Scan(&id))

		a, err := env.addresses.FindByIDAndUser(ctx, id, 1)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "88 Mabini Ave", a.Formatted())

		none, err := env.addresses.FindByIDAndUser(ctx, id, 2)
		require.NoError(t, err)
		assert.Nil(t, none)
	})
}
