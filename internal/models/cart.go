package models

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/shopspring/decimal"
)

// CartLine is one product's quantity and price snapshot within a cart.
// UnitPrice is the price observed when the product was added, not the
// catalog's live price.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
}

// Cart is the per-owner collection of cart lines. The Items mapping is the
// single source of truth for membership; a line with quantity <= 0 never
// exists in it.
type Cart struct {
	Owner string             `json:"owner"`
	Items map[int64]CartLine `json:"items"`
}

// CartSnapshot is the serializable view handed to presentation layers.
// Item keys are decimal product ids, matching the stored hash fields.
type CartSnapshot struct {
	Items     map[string]CartLine `json:"items"`
	TotalCost decimal.Decimal     `json:"total_cost"`
	ItemCount int                 `json:"item_count"`
}

func NewCart(owner string) *Cart {
	return &Cart{
		Owner: owner,
		Items: make(map[int64]CartLine),
	}
}

// Add applies a quantity delta (or replacement, when override is true) for
// the given product. A line absent from the cart is created with the
// snapshot's name and price before the quantity is applied, so repeated
// metadata is captured once per line. Overriding to zero removes the line.
func (c *Cart) Add(snapshot ProductSnapshot, quantity int, override bool) error {
	if quantity < 0 {
		return errors.InvalidQuantityError("Quantity cannot be less than 0")
	}

	line, exists := c.Items[snapshot.ProductID]
	if !exists {
		if quantity == 0 {
			if override {
				// Overriding an absent line to zero is a removal, and
				// removals are idempotent.
				return nil
			}

			return errors.NotInCartError("The product is not in the cart. A quantity of 0 cannot be applied.")
		}

		line = CartLine{
			ProductID: snapshot.ProductID,
			Name:      snapshot.Name,
			UnitPrice: snapshot.UnitPrice,
			Quantity:  0,
		}
	}

	if override {
		if quantity == 0 {
			c.Remove(snapshot.ProductID)
			return nil
		}

		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}

	line.Cost = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	c.Items[snapshot.ProductID] = line

	return nil
}

// Remove deletes the line if present. Removing an absent product is a no-op.
func (c *Cart) Remove(productID int64) {
	delete(c.Items, productID)
}

// Adjust increments the line's quantity by delta. A decrement is always a
// negative delta. The line is deleted once its quantity drops to zero or
// below, and adjusting an absent product is a no-op.
func (c *Cart) Adjust(productID int64, delta int) {
	line, exists := c.Items[productID]
	if !exists {
		return
	}

	line.Quantity += delta
	if line.Quantity <= 0 {
		delete(c.Items, productID)
		return
	}

	line.Cost = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	c.Items[productID] = line
}

func (c *Cart) Clear() {
	c.Items = make(map[int64]CartLine)
}

func (c *Cart) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.Cost)
	}

	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Items {
		count += line.Quantity
	}

	return count
}

func (c *Cart) Len() int {
	return len(c.Items)
}

// Lines returns the cart lines ordered by product id. Successive calls
// without an intervening mutation yield the same sequence.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.Items))
	for _, line := range c.Items {
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	return lines
}

func (c *Cart) Snapshot() *CartSnapshot {
	items := make(map[string]CartLine, len(c.Items))
	for id, line := range c.Items {
		items[strconv.FormatInt(id, 10)] = line
	}

	return &CartSnapshot{
		Items:     items,
		TotalCost: c.TotalCost(),
		ItemCount: c.ItemCount(),
	}
}

type AddItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Override  bool   `json:"override"`
}

// Snapshot parses the request's price and returns the product snapshot the
// cart aggregate consumes.
func (r *AddItemRequest) Snapshot() (ProductSnapshot, error) {
	price, err := decimal.NewFromString(r.UnitPrice)
	if err != nil {
		return ProductSnapshot{}, errors.AddValidationError("unit_price", "must be a decimal number")
	}

	if price.IsNegative() {
		return ProductSnapshot{}, errors.AddValidationError("unit_price", "cannot be negative")
	}

	return ProductSnapshot{
		ProductID: r.ProductID,
		Name:      r.Name,
		UnitPrice: price,
	}, nil
}

type AdjustItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Delta     int   `json:"delta" validate:"required"`
}

func (r *AdjustItemRequest) Validate() error {
	if r.Delta == 0 {
		return errors.AddValidationError("delta", fmt.Sprintf("must be non-zero, got %d", r.Delta))
	}

	return nil
}
