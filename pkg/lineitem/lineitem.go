package lineitem

import (
	"errors"
	"math"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound     = errors.New("line item not found")
	ErrInvalidQuantity  = apperr.Validation("quantity must be >= 1")
	ErrQuantityTooLarge = apperr.Validation("quantity must be <= %d", math.MaxInt32)
)

// Policy decides what AddOrMerge does when the product is already present.
type Policy uint8

const (
	// Merge increments the existing line (carts).
	Merge Policy = iota
	// Append always adds a new line (orders).
	Append
)

// Item is a priced reference to a product inside one cart or order.
// ID stays uuid.Nil until the owning aggregate is saved.
type Item struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice decimal.Decimal
}

func (i Item) Qty() int32 { return i.Quantity }

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Collection is an ordered set of line items owned by a single aggregate root.
type Collection []Item

func (c *Collection) AddOrMerge(p Policy, productID uuid.UUID, qty int32, unitPrice decimal.Decimal) (Item, error) {
	if qty < 1 {
		return Item{}, ErrInvalidQuantity
	}

	if p == Merge {
		for i := range *c {
			it := &(*c)[i]
			if it.ProductID == productID {
				if it.Quantity > math.MaxInt32-qty {
					return Item{}, ErrQuantityTooLarge
				}
				it.Quantity += qty
				return *it, nil
			}
		}
	}

	it := Item{ProductID: productID, Quantity: qty, UnitPrice: unitPrice}
	*c = append(*c, it)
	return it, nil
}

func (c Collection) UpdateQuantity(itemID uuid.UUID, qty int32) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i := range c {
		if c[i].ID == itemID {
			c[i].Quantity = qty
			return nil
		}
	}
	return ErrItemNotFound
}

// Remove deletes the line with itemID. Absent ids are ignored.
func (c *Collection) Remove(itemID uuid.UUID) bool {
	for i := range *c {
		if (*c)[i].ID == itemID {
			*c = append((*c)[:i], (*c)[i+1:]...)
			return true
		}
	}
	return false
}

func (c Collection) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c))
	out := make([]uuid.UUID, 0, len(c))
	for _, it := range c {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it.ProductID)
	}
	return out
}

func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}
