package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/cart/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartStore is the persistence surface for carts.
type CartStore interface {
	// Save inserts or replaces the cart and its items, assigning ids to new rows.
	Save(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Cart, bool, error)
	FindAll(ctx context.Context) ([]domain.Cart, error)
	// DeleteByID is idempotent.
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	FindByCreatedAt(ctx context.Context, createdAt time.Time) (domain.Cart, bool, error)
}

type CartRepo interface {
	CartStore
	// InTx runs fn against a store bound to one transaction.
	InTx(ctx context.Context, fn func(tx CartStore) error) error
}

type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

// CatalogReader returns an apperr ProductNotFound error for unknown ids.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
}
