package service

import (
	"context"
	"fmt"
	"log/slog"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo"
)

type CartService interface {
	GetCart(ctx context.Context, userID int64) (domain.Cart, error)
	// AddItem merges into an existing entry for the same bread.
	AddItem(ctx context.Context, userID, productID int64, qty int) (*domain.CartEntry, error)
	// UpdateQuantity removes the entry when qty drops to zero or below.
	UpdateQuantity(ctx context.Context, userID, entryID int64, qty int) (*domain.CartEntry, error)
	RemoveItem(ctx context.Context, userID, entryID int64) error
}

type cartService struct {
	log         *slog.Logger
	cartRepo    repo.CartRepo
	productRepo repo.ProductRepo
}

func NewCartService(log *slog.Logger, cartRepo repo.CartRepo, productRepo repo.ProductRepo) CartService {
	return &cartService{log: log, cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (domain.Cart, error) {
	entries, err := s.cartRepo.FindByUser(ctx, userID, nil)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return domain.NewCart(entries), nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID int64, qty int) (*domain.CartEntry, error) {
	if qty < 1 {
		return nil, domain.NewValidationError("quantity", "the quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find bread: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	existing, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	if existing != nil {
		existing.Quantity += qty
		if err := s.cartRepo.UpdateQuantity(ctx, existing.ID, userID, existing.Quantity); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		existing.Reprice()
		return existing, nil
	}

	entry := &domain.CartEntry{UserID: userID, ProductID: productID, Quantity: qty, Product: *product}
	if err := s.cartRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}
	s.log.Debug("cart item added", "user_id", userID, "bread_id", productID, "quantity", qty)
	entry.Reprice()
	return entry, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, entryID int64, qty int) (*domain.CartEntry, error) {
	entry, err := s.cartRepo.FindByID(ctx, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrCartEntryNotFound
	}

	if qty <= 0 {
		if err := s.cartRepo.Delete(ctx, entryID, userID); err != nil {
			return nil, fmt.Errorf("delete cart item: %w", err)
		}
		return nil, nil
	}

	if err := s.cartRepo.UpdateQuantity(ctx, entryID, userID, qty); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	entry.Quantity = qty
	entry.Reprice()
	return entry, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, entryID int64) error {
	entry, err := s.cartRepo.FindByID(ctx, entryID, userID)
	if err != nil {
		return fmt.Errorf("find cart item: %w", err)
	}
	if entry == nil {
		return domain.ErrCartEntryNotFound
	}
	if err := s.cartRepo.Delete(ctx, entryID, userID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}
