package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFood      Category = "food"
	CategoryClothes   Category = "clothes"
	CategoryAccessory Category = "accessory"
	CategoryMedical   Category = "medical"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryClothes, CategoryAccessory, CategoryMedical, CategoryOther:
		return true
	}
	return false
}

type Product struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          Category        `json:"category"`
	AvailableQuantity int32           `json:"availableQuantity"`
	Price             decimal.Decimal `json:"price"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Category          *Category        `json:"category,omitempty"`
	AvailableQuantity *int32           `json:"availableQuantity,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
}

// Apply returns a copy of p with the patch's present fields merged in.
func (p Product) Apply(patch ProductPatch) Product {
	out := p
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.AvailableQuantity != nil {
		out.AvailableQuantity = *patch.AvailableQuantity
	}
	if patch.Price != nil {
		out.Price = *patch.Price
	}
	return out
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.AvailableQuantity == nil && p.Price == nil
}
