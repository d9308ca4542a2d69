package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo"
)

// BreadInput is the editable part of a bread. ImagePath is a reference to an
// image stored elsewhere.
type BreadInput struct {
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	ImagePath     string
	Description   string
}

func (in BreadInput) validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "the name field is required")
	}
	if in.Price.IsNegative() {
		verr.Add("price", "the price must be at least 0")
	}
	if in.StockQuantity < 0 {
		verr.Add("stock_quantity", "the stock_quantity must be at least 0")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (in BreadInput) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.StockQuantity = in.StockQuantity
	p.ImagePath = in.ImagePath
	p.Description = in.Description
}

type Dashboard struct {
	Statistics domain.InventoryStats `json:"statistics"`
	Breads     []domain.Product      `json:"breads"`
}

// InventoryService is the artisan side of the catalogue. Price changes made
// here apply to future checkouts only; placed orders keep their snapshot.
type InventoryService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	CreateBread(ctx context.Context, in BreadInput) (*domain.Product, error)
	UpdateBread(ctx context.Context, id int64, in BreadInput) (*domain.Product, error)
	DeleteBread(ctx context.Context, id int64) error
}

type inventoryService struct {
	log         *slog.Logger
	productRepo repo.ProductRepo
}

func NewInventoryService(log *slog.Logger, productRepo repo.ProductRepo) InventoryService {
	return &inventoryService{log: log, productRepo: productRepo}
}

func (s *inventoryService) Dashboard(ctx context.Context) (*Dashboard, error) {
	breads, err := s.productRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list breads: %w", err)
	}
	return &Dashboard{Statistics: domain.NewInventoryStats(breads), Breads: breads}, nil
}

func (s *inventoryService) CreateBread(ctx context.Context, in BreadInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p domain.Product
	in.apply(&p)
	if err := s.productRepo.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create bread: %w", err)
	}
	s.log.Info("bread created", "bread_id", p.ID, "name", p.Name)
	return &p, nil
}

func (s *inventoryService) UpdateBread(ctx context.Context, id int64, in BreadInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := domain.Product{ID: id}
	in.apply(&p)
	found, err := s.productRepo.Update(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("update bread: %w", err)
	}
	if !found {
		return nil, domain.ErrProductNotFound
	}
	s.log.Info("bread updated", "bread_id", id, "price", p.Price.StringFixed(2), "stock_quantity", p.StockQuantity)
	return &p, nil
}

func (s *inventoryService) DeleteBread(ctx context.Context, id int64) error {
	found, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bread: %w", err)
	}
	if !found {
		return domain.ErrProductNotFound
	}
	s.log.Info("bread deleted", "bread_id", id)
	return nil
}
