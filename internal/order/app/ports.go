package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/order/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStore is the persistence surface for orders.
type OrderStore interface {
	// Save inserts or replaces the order, its stored total and its items,
	// assigning ids to new rows.
	Save(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Order, bool, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	// DeleteByID is idempotent.
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	FindByCreatedAt(ctx context.Context, createdAt time.Time) (domain.Order, bool, error)
}

type OrderRepo interface {
	OrderStore
	InTx(ctx context.Context, fn func(tx OrderStore) error) error
}

type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
}
