package domain

import (
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order keeps the unit price each line had when it was added, and a stored
// total that must equal the sum of its lines after every mutation.
type Order struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Items      lineitem.Collection
	TotalPrice decimal.Decimal
}

// Recalculate refreshes TotalPrice from the snapshot prices.
func (o *Order) Recalculate() {
	o.TotalPrice = money.Total(o.Items, snapshotPrice)
}

func snapshotPrice(it lineitem.Item) (decimal.Decimal, bool) {
	return it.UnitPrice, true
}

type OrderItemView struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int32           `json:"quantity"`
	ItemPrice decimal.Decimal `json:"itemPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type OrderView struct {
	ID         uuid.UUID       `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	Items      []OrderItemView `json:"items"`
	TotalPrice decimal.Decimal `json:"totalOrderPrice"`
}

func (o Order) View() OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			ItemPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		})
	}
	return OrderView{
		ID:         o.ID,
		CreatedAt:  o.CreatedAt,
		Items:      items,
		TotalPrice: o.TotalPrice,
	}
}
