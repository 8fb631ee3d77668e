package service

import (
	"context"

	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
)

// CartService owns all cart mutations. Every mutation goes through the
// store's atomic UpdateLine, so concurrent "+1" taps from the same owner
// cannot lose an update. Carts are partitioned by owner key; no operation
// touches another owner's data.
type CartService struct {
	store repository.CartStore
}

func NewCartService(store repository.CartStore) *CartService {
	return &CartService{store: store}
}

func (s *CartService) GetCart(ctx context.Context, owner string) (*models.CartSnapshot, error) {

	cart, err := s.store.Fetch(ctx, owner)
	if err != nil {
		return nil, storeError(err, "Failed to load cart")
	}

	return cart.Snapshot(), nil
}

// AddItem applies the aggregate's add semantics to one line: increment by
// quantity, or replace it outright when override is set. The snapshot's
// name and price are captured only when the line is first created.
func (s *CartService) AddItem(ctx context.Context, owner string, snapshot models.ProductSnapshot, quantity int, override bool) (*models.CartSnapshot, error) {

	err := s.store.UpdateLine(ctx, owner, snapshot.ProductID, func(line *models.CartLine) (*models.CartLine, error) {
		scratch := models.NewCart(owner)
		if line != nil {
			scratch.Items[line.ProductID] = *line
		}

		if err := scratch.Add(snapshot, quantity, override); err != nil {
			return nil, err
		}

		updated, ok := scratch.Items[snapshot.ProductID]
		if !ok {
			return nil, nil
		}

		return &updated, nil
	})
	if err != nil {
		return nil, storeError(err, "Failed to update cart")
	}

	return s.GetCart(ctx, owner)
}

// AdjustItem increments or decrements one line by delta. Decrements are
// always negative deltas; a line whose quantity drops to zero or below is
// removed.
func (s *CartService) AdjustItem(ctx context.Context, owner string, productID int64, delta int) (*models.CartSnapshot, error) {

	err := s.store.UpdateLine(ctx, owner, productID, func(line *models.CartLine) (*models.CartLine, error) {
		scratch := models.NewCart(owner)
		if line != nil {
			scratch.Items[line.ProductID] = *line
		}

		scratch.Adjust(productID, delta)

		updated, ok := scratch.Items[productID]
		if !ok {
			return nil, nil
		}

		return &updated, nil
	})
	if err != nil {
		return nil, storeError(err, "Failed to update cart")
	}

	return s.GetCart(ctx, owner)
}

func (s *CartService) RemoveItem(ctx context.Context, owner string, productID int64) (*models.CartSnapshot, error) {

	if err := s.store.RemoveLine(ctx, owner, productID); err != nil {
		return nil, storeError(err, "Failed to remove item from cart")
	}

	return s.GetCart(ctx, owner)
}

func (s *CartService) ClearCart(ctx context.Context, owner string) error {

	if err := s.store.Clear(ctx, owner); err != nil {
		return storeError(err, "Failed to clear cart")
	}

	return nil
}

// storeError passes domain errors through untouched and wraps raw I/O
// failures as retryable database errors.
func storeError(err error, message string) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}

	return errors.DatabaseError(message).WithError(err)
}
