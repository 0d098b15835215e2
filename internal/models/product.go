package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the listing lifecycle state.
type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductReserved  ProductStatus = "reserved"
	ProductSold      ProductStatus = "sold"
)

// Product represents a marketplace listing.
type Product struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"sellerId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}
