package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Storefront clients format amounts with toFixed, so they must arrive as numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// LowStockThreshold is the stock level under which a bread counts as low on
// the inventory dashboard.
const LowStockThreshold = 10

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImagePath     string          `json:"image_path"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProductSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
}

func (p Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, ImagePath: p.ImagePath}
}

// InStock reports whether qty units can be taken from the current stock.
func (p Product) InStock(qty int) bool {
	return qty <= p.StockQuantity
}

func (p Product) LowStock() bool {
	return p.StockQuantity < LowStockThreshold
}

// StockValue is the shelf value of the remaining stock at the live price.
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// InventoryStats summarises the catalogue for the artisan dashboard.
type InventoryStats struct {
	TotalBreads   int             `json:"total_breads"`
	TotalStock    int             `json:"total_stock"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
}

func NewInventoryStats(products []Product) InventoryStats {
	stats := InventoryStats{TotalBreads: len(products), TotalValue: decimal.Zero}
	for _, p := range products {
		stats.TotalStock += p.StockQuantity
		stats.TotalValue = stats.TotalValue.Add(p.StockValue())
		if p.LowStock() {
			stats.LowStockCount++
		}
	}
	return stats
}
