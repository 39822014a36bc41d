package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dwikikusuma/cosmo-market/internal/cart/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func (s *Service) view(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	views, err := s.views(ctx, []domain.Cart{cart})
	if err != nil {
		return domain.CartView{}, err
	}
	return views[0], nil
}

// views prices every cart with live catalog prices, fetching each product once.
func (s *Service) views(ctx context.Context, carts []domain.Cart) ([]domain.CartView, error) {
	products, err := s.products(ctx, carts)
	if err != nil {
		return nil, err
	}

	priceOf := func(it lineitem.Item) (decimal.Decimal, bool) {
		p, ok := products[it.ProductID]
		return p.Price, ok
	}

	out := make([]domain.CartView, 0, len(carts))
	for _, c := range carts {
		items := make([]domain.CartItemView, 0, len(c.Items))
		for _, it := range c.Items {
			p := products[it.ProductID]
			items = append(items, domain.CartItemView{
				ID:          it.ID,
				ProductID:   it.ProductID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   p.Price,
				LineTotal:   money.LineTotal(p.Price, it.Quantity),
			})
		}
		out = append(out, domain.CartView{
			ID:         c.ID,
			CreatedAt:  c.CreatedAt,
			Items:      items,
			TotalPrice: money.Total(c.Items, priceOf),
		})
	}
	return out, nil
}

// products looks up every distinct product concurrently. Products that no
// longer exist are left out of the map so they price at zero.
func (s *Service) products(ctx context.Context, carts []domain.Cart) (map[uuid.UUID]Product, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, c := range carts {
		for _, id := range c.Items.ProductIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	var mu sync.Mutex
	found := make(map[uuid.UUID]Product, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, id := range ids {
		id := id // per-iteration copy; module targets go1.21 loop semantics
		g.Go(func() error {
			p, err := s.catalog.GetProduct(ctx, id)
			if errors.Is(err, apperr.ErrProductNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", id, err)
			}
			mu.Lock()
			found[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}
