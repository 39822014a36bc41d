package money

import "github.com/shopspring/decimal"

// Line is anything that carries a quantity and can be priced.
type Line interface {
	Qty() int32
}

// PriceFunc returns the unit price of a line. ok is false when the price source
// is absent (e.g. the product was deleted); such lines contribute zero.
type PriceFunc[T Line] func(line T) (unitPrice decimal.Decimal, ok bool)

// Total sums unitPrice × quantity over items in order. Nil or empty input yields zero.
func Total[T Line](items []T, priceOf PriceFunc[T]) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		price, ok := priceOf(it)
		if !ok {
			continue
		}
		total = total.Add(LineTotal(price, it.Qty()))
	}
	return total
}

func LineTotal(unitPrice decimal.Decimal, qty int32) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt32(qty))
}
