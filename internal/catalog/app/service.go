package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/catalog/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/natkey"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type Service struct {
	repo   ProductRepo
	byName natkey.Lookup[string, domain.Product]
	now    func() time.Time
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo:   repo,
		byName: natkey.Func[string, domain.Product](repo.GetByName),
		now:    time.Now,
	}
}

type CreateProductInput struct {
	Name              string
	Description       string
	Category          domain.Category
	AvailableQuantity int32
	Price             decimal.Decimal
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	now := s.now().UTC().Truncate(time.Microsecond)
	p := domain.Product{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Category:          in.Category,
		AvailableQuantity: in.AvailableQuantity,
		Price:             in.Price,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}

	if _, exists, err := natkey.Find(ctx, s.byName, p.Name); err != nil {
		return domain.Product{}, err
	} else if exists {
		return domain.Product{}, duplicateName(p.Name)
	}

	created, err := s.repo.Create(ctx, p)
	if errors.Is(err, ErrDuplicate) {
		return domain.Product{}, duplicateName(p.Name)
	}
	if err != nil {
		return domain.Product{}, err
	}
	return created, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return domain.Product{}, apperr.ProductNotFound(id)
	}
	return p, err
}

func (s *Service) GetProductByName(ctx context.Context, name string) (domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Product{}, apperr.Validation("name is required")
	}
	p, ok, err := natkey.Find(ctx, s.byName, name)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, apperr.New(apperr.KindProductNotFound, "Product not found: '"+name+"'")
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if c := strings.TrimSpace(cursor); c != "" {
		if _, err := uuid.Parse(c); err != nil {
			return nil, "", apperr.Validation("invalid cursor %q", c)
		}
	}
	return s.repo.List(ctx, strings.TrimSpace(query), limit, strings.TrimSpace(cursor))
}

// UpdateProduct merges the present fields of patch into the stored product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (domain.Product, error) {
	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if patch.Empty() {
		return current, nil
	}

	next := current.Apply(patch)
	next.Name = strings.TrimSpace(next.Name)
	next.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	if err := next.Validate(); err != nil {
		return domain.Product{}, err
	}

	if next.Name != current.Name {
		other, exists, err := natkey.Find(ctx, s.byName, next.Name)
		if err != nil {
			return domain.Product{}, err
		}
		if exists && other.ID != id {
			return domain.Product{}, duplicateName(next.Name)
		}
	}

	updated, err := s.repo.Update(ctx, next)
	switch {
	case errors.Is(err, ErrNotFound):
		return domain.Product{}, apperr.ProductNotFound(id)
	case errors.Is(err, ErrDuplicate):
		return domain.Product{}, duplicateName(next.Name)
	case err != nil:
		return domain.Product{}, err
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.ProductNotFound(id)
	}
	return nil
}

func duplicateName(name string) error {
	return apperr.Conflict("Product with name '%s' already exists", name)
}
