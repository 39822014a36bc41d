package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/dwikikusuma/cosmo-market/internal/catalog/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	products map[uuid.UUID]domain.Product
	updates  int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{products: map[uuid.UUID]domain.Product{}} }

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = uuid.New()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetByName(ctx context.Context, name string) (domain.Product, bool, error) {
	for _, p := range f.products {
		if p.Name == name {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (f *fakeRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, "", nil
}

func (f *fakeRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return domain.Product{}, ErrNotFound
	}
	f.updates++
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.products[id]; !ok {
		return false, nil
	}
	delete(f.products, id)
	return true, nil
}

func validInput() CreateProductInput {
	return CreateProductInput{
		Name:              "Star Wool Scarf",
		Description:       "Warm enough for a comet tail",
		Category:          domain.CategoryClothes,
		AvailableQuantity: 5,
		Price:             decimal.RequireFromString("19.99"),
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	cases := []struct {
		name   string
		mutate func(in *CreateProductInput)
	}{
		{"empty name -> invalid", func(in *CreateProductInput) { in.Name = "   " }},
		{"name without cosmic word -> invalid", func(in *CreateProductInput) { in.Name = "Wool Scarf" }},
		{"long description -> invalid", func(in *CreateProductInput) { in.Description = strings.Repeat("x", 256) }},
		{"unknown category -> invalid", func(in *CreateProductInput) { in.Category = "toys" }},
		{"negative stock -> invalid", func(in *CreateProductInput) { in.AvailableQuantity = -1 }},
		{"price below minimum -> invalid", func(in *CreateProductInput) { in.Price = decimal.RequireFromString("0.001") }},
		{"price finer than storage -> invalid", func(in *CreateProductInput) { in.Price = decimal.RequireFromString("10.123456") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.CreateProduct(context.Background(), in)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	t.Run("four decimal places are kept", func(t *testing.T) {
		in := validInput()
		in.Name = "Comet Dust"
		in.Price = decimal.RequireFromString("10.1235")
		if _, err := svc.CreateProduct(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("cosmic word is case-insensitive", func(t *testing.T) {
		in := validInput()
		in.Name = "GALAXY Treats"
		if _, err := svc.CreateProduct(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCreateProductDuplicateName(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateProduct(ctx, validInput())
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateProductIsPartial(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := decimal.RequireFromString("24.50")
	updated, err := svc.UpdateProduct(ctx, created.ID, domain.ProductPatch{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.Price.Equal(price) {
		t.Fatalf("price not updated: %s", updated.Price)
	}
	if updated.Name != created.Name || updated.Description != created.Description ||
		updated.Category != created.Category || updated.AvailableQuantity != created.AvailableQuantity {
		t.Fatalf("untouched fields changed: %+v vs %+v", updated, created)
	}

	t.Run("empty patch is a no-op", func(t *testing.T) {
		before := repo.updates
		if _, err := svc.UpdateProduct(ctx, created.ID, domain.ProductPatch{}); err != nil {
			t.Fatalf("update: %v", err)
		}
		if repo.updates != before {
			t.Fatalf("empty patch must not write")
		}
	})

	t.Run("price finer than storage is rejected", func(t *testing.T) {
		fine := decimal.RequireFromString("10.123456")
		_, err := svc.UpdateProduct(ctx, created.ID, domain.ProductPatch{Price: &fine})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("invalid merge result is rejected", func(t *testing.T) {
		bad := "Plain Scarf"
		_, err := svc.UpdateProduct(ctx, created.ID, domain.ProductPatch{Name: &bad})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, uuid.New(), domain.ProductPatch{Price: &price})
		if !errors.Is(err, apperr.ErrProductNotFound) {
			t.Fatalf("expected product not found, got %v", err)
		}
	})
}

func TestGetAndDeleteProduct(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byName, err := svc.GetProductByName(ctx, created.Name)
	if err != nil || byName.ID != created.ID {
		t.Fatalf("lookup by name: (%v, %v)", byName.ID, err)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetProduct(ctx, created.ID); !errors.Is(err, apperr.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
	if err := svc.DeleteProduct(ctx, created.ID); !errors.Is(err, apperr.ErrProductNotFound) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

func TestListProductsClampsLimit(t *testing.T) {
	svc := NewService(newFakeRepo())
	if _, _, err := svc.ListProducts(context.Background(), "", 1000, "not-a-uuid"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected invalid cursor, got %v", err)
	}
}
