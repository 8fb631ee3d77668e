package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is immutable after creation except for the Paid flag.
type Order struct {
	ID        int64       `json:"id"`
	Owner     string      `json:"owner"`
	CreatedAt time.Time   `json:"created_at"`
	Paid      bool        `json:"paid"`
	Lines     []OrderLine `json:"lines"`
}

// OrderLine captures the catalog price at commit time. CommittedPrice comes
// from the catalog, not from the cart snapshot; checkout rejects the commit
// outright if the two diverge.
type OrderLine struct {
	OrderID        int64           `json:"order_id"`
	ProductID      int64           `json:"product_id"`
	Name           string          `json:"name"`
	CommittedPrice decimal.Decimal `json:"committed_price"`
	Quantity       int             `json:"quantity"`
}

func (l OrderLine) Cost() decimal.Decimal {
	return l.CommittedPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Cost())
	}

	return total
}

func (o *Order) ItemCount() int {
	count := 0
	for _, line := range o.Lines {
		count += line.Quantity
	}

	return count
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}
