package repo

import (
	"context"
	"database/sql"
	"errors"

	"bakery-storefront/internal/domain"
)

type AddressRepo interface {
	FindByIDAndUser(ctx context.Context, id, userID int64) (*domain.Address, error)
}

type addressRepo struct {
	db *sql.DB
}

func NewAddressRepo(db *sql.DB) AddressRepo {
	return &addressRepo{db: db}
}

func (r *addressRepo) FindByIDAndUser(ctx context.Context, id, userID int64) (*domain.Address, error) {
	var a domain.Address
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, label, address FROM addresses WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&a.ID, &a.UserID, &a.Label, &a.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
