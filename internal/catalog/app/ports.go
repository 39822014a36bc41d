package app

import (
	"context"

	"github.com/dwikikusuma/cosmo-market/internal/catalog/domain"
	"github.com/google/uuid"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	GetByName(ctx context.Context, name string) (domain.Product, bool, error)
	List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
