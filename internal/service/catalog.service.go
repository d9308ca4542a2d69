package service

import (
	"context"
	"fmt"
	"strings"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo"
)

type CatalogService interface {
	ListBreads(ctx context.Context, search string) ([]domain.Product, error)
	GetBread(ctx context.Context, id int64) (*domain.Product, error)
}

type catalogService struct {
	productRepo repo.ProductRepo
}

func NewCatalogService(productRepo repo.ProductRepo) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) ListBreads(ctx context.Context, search string) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list breads: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetBread(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bread: %w", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}
