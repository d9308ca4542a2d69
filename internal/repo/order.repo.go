package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bakery-storefront/internal/domain"
)

type OrderRepo interface {
	FindByIDAndUser(ctx context.Context, id, userID int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// CreateOrder inserts the order and its items, filling in their ids.
	CreateOrder(ctx context.Context, tx DBTX, order *domain.Order) error
	// TransitionStatus moves order to order.Status only if it is currently
	// in from. It reports whether a row was changed.
	TransitionStatus(ctx context.Context, tx DBTX, order *domain.Order, from domain.OrderStatus) (bool, error)
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

const orderColumns = `id, user_id, total_amount, status, payment_method, payment_status, shipping_method, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.ShippingMethod,
		&o.ShippingAddress,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *orderRepo) FindByIDAndUser(ctx context.Context, id, userID int64) (*domain.Order, error) {
	var order domain.Order
	err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID,
	), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	order.ItemCount = len(order.Items)
	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	ids := []int64{}
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		orders[i].ItemCount = len(orders[i].Items)
	}
	return orders, nil
}

func (r *orderRepo) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.bread_id, i.quantity, i.price, i.subtotal,
		       COALESCE(p.id, i.bread_id), COALESCE(p.name, ''), COALESCE(p.image_path, '')
		FROM order_items i
		LEFT JOIN products p ON p.id = i.bread_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.Quantity,
			&it.Price,
			&it.Subtotal,
			&it.Product.ID,
			&it.Product.Name,
			&it.Product.ImagePath,
		); err != nil {
			return nil, err
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx DBTX, order *domain.Order) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total_amount, status, payment_method, payment_status, shipping_method, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		order.UserID, order.TotalAmount, order.Status, order.PaymentMethod, order.PaymentStatus,
		order.ShippingMethod, order.ShippingAddress, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, bread_id, quantity, price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			it.OrderID, it.ProductID, it.Quantity, it.Price, it.Subtotal,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item for bread %d: %w", it.ProductID, err)
		}
	}
	return nil
}

func (r *orderRepo) TransitionStatus(ctx context.Context, tx DBTX, order *domain.Order, from domain.OrderStatus) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4 AND status = $5`,
		order.Status, order.UpdatedAt, order.ID, order.UserID, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
