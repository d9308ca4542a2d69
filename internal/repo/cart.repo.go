package repo

import (
	"context"
	"database/sql"
	"errors"

	"bakery-storefront/internal/domain"
)

type CartRepo interface {
	// FindByUser returns the user's cart entries with their products. A
	// non-empty ids restricts the result to those entries; ids owned by
	// other users are never returned.
	FindByUser(ctx context.Context, userID int64, ids []int64) ([]domain.CartEntry, error)
	FindByID(ctx context.Context, id, userID int64) (*domain.CartEntry, error)
	FindByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.CartEntry, error)
	Create(ctx context.Context, entry *domain.CartEntry) error
	UpdateQuantity(ctx context.Context, id, userID int64, qty int) error
	Delete(ctx context.Context, id, userID int64) error
	DeleteByIDs(ctx context.Context, tx DBTX, userID int64, ids []int64) error
}

type cartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepo {
	return &cartRepo{db: db}
}

const cartSelect = `
	SELECT c.id, c.user_id, c.bread_id, c.quantity, c.created_at, c.updated_at,
	       p.id, p.name, p.price, p.stock_quantity, p.image_path, p.description, p.created_at, p.updated_at
	FROM cart_items c
	JOIN products p ON p.id = c.bread_id
`

func scanCartEntry(row interface{ Scan(...any) error }, e *domain.CartEntry) error {
	return row.Scan(
		&e.ID,
		&e.UserID,
		&e.ProductID,
		&e.Quantity,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.Product.ID,
		&e.Product.Name,
		&e.Product.Price,
		&e.Product.StockQuantity,
		&e.Product.ImagePath,
		&e.Product.Description,
		&e.Product.CreatedAt,
		&e.Product.UpdatedAt,
	)
}

func (r *cartRepo) FindByUser(ctx context.Context, userID int64, ids []int64) ([]domain.CartEntry, error) {
	query := cartSelect + ` WHERE c.user_id = $1`
	args := []any{userID}
	if len(ids) > 0 {
		query += ` AND c.id = ANY($2)`
		args = append(args, ids)
	}
	query += ` ORDER BY c.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CartEntry
	for rows.Next() {
		var e domain.CartEntry
		if err := scanCartEntry(rows, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *cartRepo) findOne(ctx context.Context, where string, args ...any) (*domain.CartEntry, error) {
	var e domain.CartEntry
	err := scanCartEntry(r.db.QueryRowContext(ctx, cartSelect+where, args...), &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *cartRepo) FindByID(ctx context.Context, id, userID int64) (*domain.CartEntry, error) {
	return r.findOne(ctx, ` WHERE c.id = $1 AND c.user_id = $2`, id, userID)
}

func (r *cartRepo) FindByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.CartEntry, error) {
	return r.findOne(ctx, ` WHERE c.user_id = $1 AND c.bread_id = $2`, userID, productID)
}

func (r *cartRepo) Create(ctx context.Context, entry *domain.CartEntry) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (user_id, bread_id, quantity) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		entry.UserID, entry.ProductID, entry.Quantity,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, id, userID int64, qty int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, qty,
	)
	return err
}

func (r *cartRepo) Delete(ctx context.Context, id, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *cartRepo) DeleteByIDs(ctx context.Context, tx DBTX, userID int64, ids []int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	return err
}
