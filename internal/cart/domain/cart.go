package domain

import (
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart owns its items. Prices are never stored on a cart; they come from the
// catalog whenever a view is built.
type Cart struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Items     lineitem.Collection
}

type CartItemView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type CartView struct {
	ID         uuid.UUID       `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	Items      []CartItemView  `json:"items"`
	TotalPrice decimal.Decimal `json:"totalCartPrice"`
}
