package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo"
)

type CreateOrderInput struct {
	PaymentMethod   domain.PaymentMethod
	ShippingMethod  domain.ShippingMethod
	ShippingAddress string
	AddressID       *int64
	// CartItemIDs limits checkout to these entries. Empty means the whole cart.
	CartItemIDs []int64
}

func (in CreateOrderInput) validate() error {
	verr := &domain.ValidationError{}
	if !in.PaymentMethod.Valid() {
		verr.Add("payment_method", "the selected payment method is invalid")
	}
	if !in.ShippingMethod.Valid() {
		verr.Add("shipping_method", "the selected shipping method is invalid")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		verr.Add("shipping_address", "the shipping address field is required")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
}

type orderService struct {
	log         *slog.Logger
	tx          repo.Transactor
	orderRepo   repo.OrderRepo
	cartRepo    repo.CartRepo
	productRepo repo.ProductRepo
	addressRepo repo.AddressRepo
}

func NewOrderService(
	log *slog.Logger,
	tx repo.Transactor,
	orderRepo repo.OrderRepo,
	cartRepo repo.CartRepo,
	productRepo repo.ProductRepo,
	addressRepo repo.AddressRepo,
) OrderService {
	return &orderService{
		log:         log,
		tx:          tx,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	address := s.resolveAddress(ctx, userID, in)

	entries, err := s.cartRepo.FindByUser(ctx, userID, in.CartItemIDs)
	if err != nil {
		s.log.Error("load cart failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.ErrNoItemsSelected
	}

	// every entry is checked before anything is written
	wanted := quantitiesByProduct(entries)
	for _, e := range entries {
		if !e.Product.InStock(wanted[e.ProductID]) {
			return nil, &domain.InsufficientStockError{
				ProductID: e.ProductID,
				Product:   e.Product.Name,
				Available: e.Product.StockQuantity,
				Requested: wanted[e.ProductID],
			}
		}
	}

	order := domain.NewOrder(domain.NewOrderParams{
		UserID:          userID,
		PaymentMethod:   in.PaymentMethod,
		ShippingMethod:  in.ShippingMethod,
		ShippingAddress: address,
		Entries:         entries,
	})

	err = s.tx.WithinTx(ctx, func(tx repo.DBTX) error {
		productIDs := make([]int64, 0, len(wanted))
		for id := range wanted {
			productIDs = append(productIDs, id)
		}
		slices.Sort(productIDs)
		cartIDs := make([]int64, 0, len(entries))
		for _, e := range entries {
			cartIDs = append(cartIDs, e.ID)
		}

		locked, err := s.productRepo.LockByIDs(ctx, tx, productIDs)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		// stock may have moved since validation
		for _, id := range productIDs {
			p, ok := locked[id]
			if !ok {
				return domain.ErrProductUnavailable
			}
			if !p.InStock(wanted[id]) {
				return &domain.InsufficientStockError{
					ProductID: p.ID,
					Product:   p.Name,
					Available: p.StockQuantity,
					Requested: wanted[id],
				}
			}
		}

		if err := s.orderRepo.CreateOrder(ctx, tx, &order); err != nil {
			return err
		}

		for _, id := range productIDs {
			if err := s.productRepo.DecrementStock(ctx, tx, id, wanted[id]); err != nil {
				return fmt.Errorf("decrement stock for bread %d: %w", id, err)
			}
		}

		if err := s.cartRepo.DeleteByIDs(ctx, tx, userID, cartIDs); err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		s.log.Error("create order failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		"user_id", userID,
		"order_id", order.ID,
		"total_amount", order.TotalAmount.StringFixed(2),
		"items", order.ItemCount,
	)
	return &order, nil
}

// resolveAddress prefers the stored address when the caller references one
// they own. Otherwise the raw shipping address is used as given.
func (s *orderService) resolveAddress(ctx context.Context, userID int64, in CreateOrderInput) string {
	if in.AddressID == nil {
		return in.ShippingAddress
	}
	addr, err := s.addressRepo.FindByIDAndUser(ctx, *in.AddressID, userID)
	if err != nil {
		s.log.Warn("address lookup failed, using raw shipping address",
			"user_id", userID, "address_id", *in.AddressID, "err", err)
		return in.ShippingAddress
	}
	if addr == nil || addr.Formatted() == "" {
		return in.ShippingAddress
	}
	return addr.Formatted()
}

func (s *orderService) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.log.Error("list orders failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		s.log.Error("get order failed", "user_id", userID, "order_id", orderID, "err", err)
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, domain.ErrOrderNotCancellable
	}

	order.Status = domain.OrderCancelled
	order.UpdatedAt = time.Now().UTC()

	err = s.tx.WithinTx(ctx, func(tx repo.DBTX) error {
		// the status guard is what stops a second cancel from restoring stock twice
		changed, err := s.orderRepo.TransitionStatus(ctx, tx, order, domain.OrderPending)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !changed {
			return domain.ErrOrderNotCancellable
		}

		for _, item := range order.Items {
			if err := s.productRepo.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock for bread %d: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		s.log.Error("cancel order failed", "user_id", userID, "order_id", orderID, "err", err)
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	s.log.Info("order cancelled", "user_id", userID, "order_id", orderID)
	return order, nil
}

// quantitiesByProduct sums the requested quantity per bread, so two rows for
// the same bread are checked against stock together.
func quantitiesByProduct(entries []domain.CartEntry) map[int64]int {
	wanted := make(map[int64]int, len(entries))
	for _, e := range entries {
		wanted[e.ProductID] += e.Quantity
	}
	return wanted
}

func isBusinessError(err error) bool {
	var stockErr *domain.InsufficientStockError
	var validationErr *domain.ValidationError
	return errors.As(err, &stockErr) ||
		errors.As(err, &validationErr) ||
		errors.Is(err, domain.ErrNoItemsSelected) ||
		errors.Is(err, domain.ErrOrderNotFound) ||
		errors.Is(err, domain.ErrOrderNotCancellable) ||
		errors.Is(err, domain.ErrProductNotFound) ||
		errors.Is(err, domain.ErrProductUnavailable) ||
		errors.Is(err, domain.ErrCartEntryNotFound)
}
