package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCancelled OrderStatus = "cancelled"
	OrderCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCancelled, OrderCompleted:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentGcash          PaymentMethod = "gcash"
	PaymentMaya           PaymentMethod = "maya"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCreditCard, PaymentDebitCard, PaymentPaypal, PaymentGcash, PaymentMaya:
		return true
	}
	return false
}

// PaymentStatus is a label only; no gateway is ever charged.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentStatusFor returns pending for cash on delivery and paid for every
// other method.
func PaymentStatusFor(m PaymentMethod) PaymentStatus {
	if m == PaymentCashOnDelivery {
		return PaymentPending
	}
	return PaymentPaid
}

type ShippingMethod string

const (
	ShippingPickup   ShippingMethod = "pickup"
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingSameDay  ShippingMethod = "same_day"
)

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingPickup, ShippingStandard, ShippingExpress, ShippingSameDay:
		return true
	}
	return false
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	ShippingMethod  ShippingMethod  `json:"shipping_method"`
	ShippingAddress string          `json:"shipping_address"`
	ItemCount       int             `json:"item_count"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is immutable once written. Price is the product price at the
// time the order was placed.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"bread_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   ProductSummary  `json:"bread"`
}

func NewOrderItem(entry CartEntry) OrderItem {
	return OrderItem{
		ProductID: entry.ProductID,
		Quantity:  entry.Quantity,
		Price:     entry.Product.Price,
		Subtotal:  entry.LineTotal(),
		Product:   entry.Product.Summary(),
	}
}

type NewOrderParams struct {
	UserID          int64
	PaymentMethod   PaymentMethod
	ShippingMethod  ShippingMethod
	ShippingAddress string
	Entries         []CartEntry
}

// NewOrder builds a pending order from cart entries. TotalAmount is the sum
// of the item subtotals.
func NewOrder(p NewOrderParams) Order {
	items := make([]OrderItem, 0, len(p.Entries))
	total := decimal.Zero
	for _, e := range p.Entries {
		item := NewOrderItem(e)
		total = total.Add(item.Subtotal)
		items = append(items, item)
	}
	now := time.Now().UTC()
	return Order{
		UserID:          p.UserID,
		TotalAmount:     total,
		Status:          OrderPending,
		PaymentMethod:   p.PaymentMethod,
		PaymentStatus:   PaymentStatusFor(p.PaymentMethod),
		ShippingMethod:  p.ShippingMethod,
		ShippingAddress: p.ShippingAddress,
		ItemCount:       len(items),
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderPending
}
