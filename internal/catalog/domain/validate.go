package domain

import (
	"strings"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLen = 255
	// MaxPriceScale matches the NUMERIC(19,4) price columns.
	MaxPriceScale = 4
)

var (
	MinPrice = decimal.RequireFromString("0.01")

	cosmicWords = []string{"star", "galaxy", "comet", "cosmo", "cosmic", "space", "asteroid"}
)

// HasCosmicWord reports whether name mentions something from outer space.
func HasCosmicWord(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range cosmicWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Validate returns the first rule the product breaks as a validation error.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.Validation("name is required")
	case !HasCosmicWord(p.Name):
		return apperr.Validation("name must contain a cosmic word (%s)", strings.Join(cosmicWords, ", "))
	case len([]rune(p.Description)) > MaxDescriptionLen:
		return apperr.Validation("description must be at most %d characters", MaxDescriptionLen)
	case !p.Category.Valid():
		return apperr.Validation("unknown category %q", p.Category)
	case p.AvailableQuantity < 0:
		return apperr.Validation("availableQuantity must be >= 0")
	case p.Price.LessThan(MinPrice):
		return apperr.Validation("price must be >= %s", MinPrice)
	case p.Price.Exponent() < -MaxPriceScale:
		return apperr.Validation("price must have at most %d decimal places", MaxPriceScale)
	}
	return nil
}
