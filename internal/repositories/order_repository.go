package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coffeehaus/storefront/internal/models"
	"github.com/coffeehaus/storefront/internal/utils"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists committed orders. Begin opens the unit of work
// for one checkout attempt; everything written through the returned OrderTx
// becomes visible only on Commit, so a failed attempt leaves no partial
// order behind.
type OrderRepository interface {
	Begin(ctx context.Context, owner string, createdAt time.Time) (*OrderTx, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByOwner(ctx context.Context, owner string, page, size int) ([]models.Order, int, error)
	MarkPaid(ctx context.Context, id int64) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// OrderTx is one in-flight checkout transaction holding the order shell.
type OrderTx struct {
	tx    *sql.Tx
	order *models.Order
}

// Begin opens the transaction and inserts the order shell: owner, creation
// time, unpaid, no lines yet.
//
// The transaction is bound to the caller's ctx, not a statement deadline:
// database/sql rolls a transaction back the moment its context is canceled,
// and the tx has to stay usable until Commit or Rollback. Individual
// statements get their own deadlines.
func (r *orderRepository) Begin(ctx context.Context, owner string, createdAt time.Time) (*OrderTx, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin order transaction: %w", err)
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{
		Owner:     owner,
		CreatedAt: createdAt,
		Paid:      false,
	}

	query := `
		INSERT INTO orders (owner, created_at, paid)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := tx.QueryRowContext(dbCtx, query, order.Owner, order.CreatedAt, order.Paid).Scan(&order.ID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert order shell: %w", err)
	}

	return &OrderTx{tx: tx, order: order}, nil
}

func (t *OrderTx) Order() *models.Order {
	return t.order
}

// AddLines bulk-inserts all order lines referencing the shell in a single
// statement.
func (t *OrderTx) AddLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		placeholders strings.Builder
		args         = make([]any, 0, len(lines)*5)
	)

	for i, line := range lines {
		if i > 0 {
			placeholders.WriteString(", ")
		}

		n := i * 5
		fmt.Fprintf(&placeholders, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)

		args = append(args, t.order.ID, line.ProductID, line.Name, line.CommittedPrice, line.Quantity)
	}

	query := `INSERT INTO order_items (order_id, product_id, name, price, quantity) VALUES ` + placeholders.String()

	if _, err := t.tx.ExecContext(dbCtx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}

	stamped := make([]models.OrderLine, len(lines))
	for i, line := range lines {
		line.OrderID = t.order.ID
		stamped[i] = line
	}

	t.order.Lines = stamped

	return nil
}

func (t *OrderTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// Rollback aborts the attempt, discarding the shell and any lines. Safe to
// call after Commit; the driver reports the transaction as finished.
func (t *OrderTx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{ID: id}

	query := `
		SELECT owner, created_at, paid
		FROM orders
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&order.Owner, &order.CreatedAt, &order.Paid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	lines, err := r.orderLines(dbCtx, id)
	if err != nil {
		return nil, err
	}

	order.Lines = lines

	return order, nil
}

func (r *orderRepository) orderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {

	query := `
		SELECT product_id, name, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	var lines []models.OrderLine

	for rows.Next() {
		line := models.OrderLine{OrderID: orderID}

		if err := rows.Scan(&line.ProductID, &line.Name, &line.CommittedPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *orderRepository) ListOrdersByOwner(ctx context.Context, owner string, page, size int) ([]models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM orders WHERE owner = $1`
	if err := r.DB.QueryRowContext(dbCtx, countQuery, owner).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT id, created_at, paid
		FROM orders
		WHERE owner = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, owner, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		order := models.Order{Owner: owner}

		if err := rows.Scan(&order.ID, &order.CreatedAt, &order.Paid); err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		lines, err := r.orderLines(dbCtx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}

		orders[i].Lines = lines
	}

	return orders, total, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE orders SET paid = TRUE WHERE id = $1`

	result, err := r.DB.ExecContext(dbCtx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update the order: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return ErrOrderNotFound
	}

	return nil
}
