package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	"github.com/redis/go-redis/v9"
)

// CartStore is the storage port behind the cart aggregate. Implementations
// must make UpdateLine an atomic read-modify-write so two concurrent
// mutations of the same owner's cart never lose an update.
type CartStore interface {
	// Fetch loads the owner's cart. A missing key yields an empty cart,
	// never an error.
	Fetch(ctx context.Context, owner string) (*models.Cart, error)
	// UpdateLine atomically rewrites one product's line. The callback
	// receives the current line (nil when absent) and returns the line to
	// store, or nil to delete it. An error from the callback aborts the
	// update untouched.
	UpdateLine(ctx context.Context, owner string, productID int64, update func(line *models.CartLine) (*models.CartLine, error)) error
	// RemoveLine deletes one product's line; removing an absent line is a
	// no-op.
	RemoveLine(ctx context.Context, owner string, productID int64) error
	// Clear empties the owner's cart.
	Clear(ctx context.Context, owner string) error
}

// redisCartStore keeps each cart as a hash at cart:<owner>; the field is
// the product id, the value the codec-encoded line. Atomicity of UpdateLine
// comes from WATCH + MULTI/EXEC (optimistic CAS with bounded retries).
type redisCartStore struct {
	client *redis.Client
}

const cartUpdateRetries = 5

func NewCartStore(client *redis.Client) CartStore {
	return &redisCartStore{client: client}
}

func cartKey(owner string) string {
	return "cart:" + owner
}

func (s *redisCartStore) Fetch(ctx context.Context, owner string) (*models.Cart, error) {

	fields, err := s.client.HGetAll(ctx, cartKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart for owner %s: %w", owner, err)
	}

	cart := models.NewCart(owner)

	for field, encoded := range fields {
		line, err := models.DecodeLine(encoded, models.DefaultLineTemplate, models.DefaultLineSeparator)
		if err != nil {
			return nil, err
		}

		if strconv.FormatInt(line.ProductID, 10) != field {
			return nil, errors.CorruptedCartError(
				fmt.Sprintf("Cart field %s holds line for product %d", field, line.ProductID))
		}

		cart.Items[line.ProductID] = line
	}

	return cart, nil
}

func (s *redisCartStore) UpdateLine(ctx context.Context, owner string, productID int64, update func(line *models.CartLine) (*models.CartLine, error)) error {

	key := cartKey(owner)
	field := strconv.FormatInt(productID, 10)

	txn := func(tx *redis.Tx) error {
		var current *models.CartLine

		encoded, err := tx.HGet(ctx, key, field).Result()
		switch {
		case err == nil:
			line, decodeErr := models.DecodeLine(encoded, models.DefaultLineTemplate, models.DefaultLineSeparator)
			if decodeErr != nil {
				return decodeErr
			}

			current = &line
		case err != redis.Nil:
			return fmt.Errorf("failed to read cart line %s/%s: %w", owner, field, err)
		}

		next, err := update(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.HDel(ctx, key, field)
				return nil
			}

			value, encodeErr := models.EncodeLine(*next, models.DefaultLineTemplate, models.DefaultLineSeparator)
			if encodeErr != nil {
				return encodeErr
			}

			pipe.HSet(ctx, key, field, value)

			return nil
		})

		return err
	}

	for range cartUpdateRetries {
		err := s.client.Watch(ctx, txn, key)
		if err != redis.TxFailedErr {
			return err
		}
		// Key changed underneath us, take a fresh read.
	}

	return fmt.Errorf("cart update for owner %s did not settle after %d attempts: %w", owner, cartUpdateRetries, redis.TxFailedErr)
}

func (s *redisCartStore) RemoveLine(ctx context.Context, owner string, productID int64) error {

	err := s.client.HDel(ctx, cartKey(owner), strconv.FormatInt(productID, 10)).Err()
	if err != nil {
		return fmt.Errorf("failed to remove cart line %s/%d: %w", owner, productID, err)
	}

	return nil
}

func (s *redisCartStore) Clear(ctx context.Context, owner string) error {

	err := s.client.Del(ctx, cartKey(owner)).Err()
	if err != nil {
		return fmt.Errorf("failed to clear cart for owner %s: %w", owner, err)
	}

	return nil
}
