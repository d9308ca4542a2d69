package memstore

import (
	"github.com/shopspring/decimal"

	"bakery-storefront/internal/domain"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Seed fills an empty store with a small demo catalogue.
func (s *Store) Seed() {
	for _, p := range []struct {
		name, price, desc string
		stock             int
	}{
		{"Sourdough", "150.00", "Naturally leavened country loaf.", 12},
		{"Baguette", "80.00", "Crisp crust, open crumb.", 20},
		{"Pandesal", "5.00", "Soft breakfast roll, sold per piece.", 200},
		{"Ensaymada", "35.00", "Brioche coil with butter, sugar and cheese.", 40},
		{"Ube Loaf", "120.00", "Swirled purple yam bread.", 8},
	} {
		s.AddProduct(domain.Product{
			Name:          p.name,
			Price:         mustDecimal(p.price),
			StockQuantity: p.stock,
			Description:   p.desc,
		})
	}
}
