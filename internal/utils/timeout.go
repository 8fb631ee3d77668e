package utils

import (
	"context"
	"time"
)

// DefaultDBTimeout bounds every single statement against Postgres. Checkout
// holds a transaction across several statements, so each one gets its own
// deadline rather than sharing a budget.
const DefaultDBTimeout = 5 * time.Second

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultDBTimeout)
}
