package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry is one cart row joined with its bread. Subtotal is not stored;
// Reprice fills it from the current price.
type CartEntry struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	ProductID int64           `json:"bread_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   Product         `json:"bread"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LineTotal is quantity × the bread's current price.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

func (e *CartEntry) Reprice() {
	e.Subtotal = e.LineTotal()
}

type Cart struct {
	Items []CartEntry     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func NewCart(entries []CartEntry) Cart {
	items := make([]CartEntry, len(entries))
	total := decimal.Zero
	for i, e := range entries {
		e.Reprice()
		total = total.Add(e.Subtotal)
		items[i] = e
	}
	return Cart{Items: items, Total: total}
}
