package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/cosmo-market/internal/cart/app"
	catalogapp "github.com/dwikikusuma/cosmo-market/internal/catalog/app"
	"github.com/google/uuid"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID uuid.UUID) (cartapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return cartapp.Product{}, err
	}

	return cartapp.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}, nil
}
