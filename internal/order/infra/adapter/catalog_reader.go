package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/cosmo-market/internal/catalog/app"
	orderapp "github.com/dwikikusuma/cosmo-market/internal/order/app"
	"github.com/google/uuid"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID uuid.UUID) (orderapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return orderapp.Product{}, err
	}

	return orderapp.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}, nil
}
