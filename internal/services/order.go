package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
	"github.com/shopspring/decimal"
)

// Catalog supplies the authoritative current price and name for a product.
// It is consulted only at checkout, never when items are added to the cart.
type Catalog interface {
	PriceAndName(ctx context.Context, id int64) (string, decimal.Decimal, error)
}

// Clock abstracts time for order timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// OrderNotifier is told about committed orders. Notification failures never
// affect the commit.
type OrderNotifier interface {
	OrderCommitted(ctx context.Context, owner string, order *models.Order)
}

// OrderService turns carts into durable orders. One Checkout call is one
// commit attempt: it either commits the order and clears the cart, or rolls
// back leaving both the store and the cart exactly as they were. There is
// no retry loop here; callers re-submit against a fresh cart read.
type OrderService struct {
	orders   repository.OrderRepository
	carts    repository.CartStore
	catalog  Catalog
	clock    Clock
	notifier OrderNotifier
}

func NewOrderService(orders repository.OrderRepository, carts repository.CartStore, catalog Catalog) *OrderService {
	return &OrderService{
		orders:  orders,
		carts:   carts,
		catalog: catalog,
		clock:   systemClock{},
	}
}

// WithClock replaces the order timestamp source.
func (s *OrderService) WithClock(clock Clock) *OrderService {
	s.clock = clock
	return s
}

// WithNotifier attaches a post-commit notifier.
func (s *OrderService) WithNotifier(notifier OrderNotifier) *OrderService {
	s.notifier = notifier
	return s
}

// Checkout runs the commit protocol for the owner's cart:
//
//  1. the cart payload must be well-formed and non-empty
//  2. an order shell (owner, created_at, unpaid) opens the transaction
//  3. every cart line is re-priced against the live catalog; a missing
//     product or a price that diverged from the line's snapshot aborts
//  4. all order lines are bulk-persisted referencing the shell
//  5. the persisted order's totals must equal the cart's totals
//
// Any failure in 3-5 rolls the transaction back and surfaces the specific
// error untouched; the cart is not modified. On success the transaction
// commits, the cart is cleared and the persisted order is returned.
func (s *OrderService) Checkout(ctx context.Context, owner string) (*models.Order, error) {

	cart, err := s.carts.Fetch(ctx, owner)
	if err != nil {
		return nil, storeError(err, "Failed to load cart")
	}

	if cart == nil || cart.Items == nil {
		return nil, errors.CorruptedCartError("Cart payload is missing its line mapping")
	}

	if cart.Len() == 0 {
		return nil, errors.EmptyCartError("Cannot create order from an empty cart")
	}

	orderTx, err := s.orders.Begin(ctx, owner, s.clock.Now())
	if err != nil {
		return nil, errors.DatabaseError("Failed to open order transaction").WithError(err)
	}

	order, err := s.commit(ctx, orderTx, cart)
	if err != nil {
		if rbErr := orderTx.Rollback(); rbErr != nil {
			slog.Error("Order rollback failed", slog.String("owner", owner), slog.Any("error", rbErr))
		}

		return nil, err
	}

	if err := s.carts.Clear(ctx, owner); err != nil {
		// The order is durable; a failed cart clear is not a failed commit.
		slog.Error("Failed to clear cart after commit",
			slog.String("owner", owner), slog.Int64("orderId", order.ID), slog.Any("error", err))
	}

	if s.notifier != nil {
		s.notifier.OrderCommitted(ctx, owner, order)
	}

	return order, nil
}

func (s *OrderService) commit(ctx context.Context, orderTx *repository.OrderTx, cart *models.Cart) (*models.Order, error) {

	lines := make([]models.OrderLine, 0, cart.Len())

	for _, item := range cart.Lines() {
		name, price, err := s.catalog.PriceAndName(ctx, item.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, errors.ProductNotFoundError(
					fmt.Sprintf("Product %d is no longer available", item.ProductID))
			}

			return nil, errors.DatabaseError("Failed to read catalog price").WithError(err)
		}

		if !price.Equal(item.UnitPrice) {
			return nil, errors.PriceMismatchError(name)
		}

		lines = append(lines, models.OrderLine{
			ProductID:      item.ProductID,
			Name:           name,
			CommittedPrice: price,
			Quantity:       item.Quantity,
		})
	}

	if err := orderTx.AddLines(ctx, lines); err != nil {
		return nil, errors.DatabaseError("Failed to persist order items").WithError(err)
	}

	order := orderTx.Order()

	if !order.TotalCost().Equal(cart.TotalCost()) || order.ItemCount() != cart.ItemCount() {
		return nil, errors.InconsistentTotalsError(fmt.Sprintf(
			"Order totals diverge from cart: %s/%d vs %s/%d",
			order.TotalCost(), order.ItemCount(), cart.TotalCost(), cart.ItemCount()))
	}

	if err := orderTx.Commit(); err != nil {
		return nil, errors.DatabaseError("Failed to commit order").WithError(err)
	}

	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, owner string, id int64) (*models.Order, error) {

	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, errors.NotFoundError("Order not found")
		}

		return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.Owner != owner {
		return nil, errors.ForbiddenError("Order belongs to a different owner")
	}

	return order, nil
}

// MarkPaid settles the owner's order. Payment collection happens out of
// band; this is the only mutation of the paid flag. Marking an already-paid
// order is a no-op.
func (s *OrderService) MarkPaid(ctx context.Context, owner string, id int64) (*models.Order, error) {

	order, err := s.GetOrderByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if order.Paid {
		return order, nil
	}

	if err := s.orders.MarkPaid(ctx, id); err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, errors.NotFoundError("Order not found")
		}

		return nil, errors.DatabaseError("Failed to mark order paid").WithError(err)
	}

	order.Paid = true

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, owner string, page, size int) (*models.OrderHistoryResponse, error) {

	page, size = models.NormalizePage(page, size)

	orders, total, err := s.orders.ListOrdersByOwner(ctx, owner, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return &models.OrderHistoryResponse{
		Orders: orders,
		Total:  total,
		Page:   page,
		Size:   size,
	}, nil
}
