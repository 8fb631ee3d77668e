package repository

import (
	"context"
	"sync"

	"github.com/coffeehaus/storefront/internal/models"
)

// memoryCartStore is the session-scoped CartStore adapter. It shares the
// aggregate semantics with the Redis store; only persistence differs.
// Mutations are serialized per store with a mutex, which makes UpdateLine
// trivially atomic.
type memoryCartStore struct {
	mu    sync.Mutex
	carts map[string]map[int64]models.CartLine
}

func NewMemoryCartStore() CartStore {
	return &memoryCartStore{carts: make(map[string]map[int64]models.CartLine)}
}

func (s *memoryCartStore) Fetch(_ context.Context, owner string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := models.NewCart(owner)
	for id, line := range s.carts[owner] {
		cart.Items[id] = line
	}

	return cart, nil
}

func (s *memoryCartStore) UpdateLine(_ context.Context, owner string, productID int64, update func(line *models.CartLine) (*models.CartLine, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *models.CartLine

	if line, ok := s.carts[owner][productID]; ok {
		current = &line
	}

	next, err := update(current)
	if err != nil {
		return err
	}

	if next == nil {
		delete(s.carts[owner], productID)
		return nil
	}

	if s.carts[owner] == nil {
		s.carts[owner] = make(map[int64]models.CartLine)
	}

	s.carts[owner][productID] = *next

	return nil
}

func (s *memoryCartStore) RemoveLine(_ context.Context, owner string, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts[owner], productID)

	return nil
}

func (s *memoryCartStore) Clear(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, owner)

	return nil
}
