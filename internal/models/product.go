package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `json:"id"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Category    *Category       `json:"category,omitempty"`
}

// ProductSnapshot is the price/name capture a front end carries into the
// cart when a product is added. The snapshot price may lag behind the
// catalog price; checkout re-validates every line against the live catalog.
type ProductSnapshot struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateProductRequest struct {
	CategoryID  int64  `json:"category_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price" validate:"required"`
}

type UpdateProductRequest struct {
	CategoryID  *int64  `json:"category_id,omitempty"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}
