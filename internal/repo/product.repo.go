package repo

import (
	"context"
	"database/sql"
	"errors"

	"bakery-storefront/internal/domain"
)

type ProductRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, search string) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	// Update and Delete report false when no bread has the id.
	Update(ctx context.Context, p *domain.Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// LockByIDs takes row locks on the given products for the rest of tx.
	LockByIDs(ctx context.Context, tx DBTX, ids []int64) (map[int64]domain.Product, error)
	// DecrementStock never takes stock below zero.
	DecrementStock(ctx context.Context, tx DBTX, id int64, qty int) error
	IncrementStock(ctx context.Context, tx DBTX, id int64, qty int) error
}

type productRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepo {
	return &productRepo{db: db}
}

const productColumns = `id, name, price, stock_quantity, image_path, description, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.StockQuantity,
		&p.ImagePath,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, search string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, price, stock_quantity, image_path, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Price, p.StockQuantity, p.ImagePath, p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) (bool, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE products
		 SET name = $2, price = $3, stock_quantity = $4, image_path = $5, description = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Price, p.StockQuantity, p.ImagePath, p.Description,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete leaves order history intact: order_items keeps the bread id without
// a foreign key, and cart rows cascade.
func (r *productRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productRepo) LockByIDs(ctx context.Context, tx DBTX, ids []int64) (map[int64]domain.Product, error) {
	// Locking in id order keeps two concurrent checkouts from deadlocking.
	rows, err := tx.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		locked[p.ID] = p
	}
	return locked, rows.Err()
}

func (r *productRepo) DecrementStock(ctx context.Context, tx DBTX, id int64, qty int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = GREATEST(stock_quantity - $2, 0), updated_at = now() WHERE id = $1`,
		id, qty,
	)
	return err
}

func (r *productRepo) IncrementStock(ctx context.Context, tx DBTX, id int64, qty int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now() WHERE id = $1`,
		id, qty,
	)
	return err
}
