package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/cart/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/events"
	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/natkey"
	"github.com/google/uuid"
)

// ErrDuplicate is returned by stores when a cart with the same creation
// timestamp already exists.
var ErrDuplicate = errors.New("duplicate cart")

const createAttempts = 3

type Service struct {
	repo      CartRepo
	catalog   CatalogReader
	byCreated natkey.Lookup[time.Time, domain.Cart]
	events    events.Publisher
	log       *slog.Logger
	now       func() time.Time

	maxConcurrent int
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.events = p } }
func WithLogger(l *slog.Logger) Option        { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option   { return func(s *Service) { s.now = now } }

// WithMaxConcurrent bounds parallel catalog lookups while pricing.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func NewService(repo CartRepo, catalog CatalogReader, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		catalog:       catalog,
		byCreated:     natkey.Func[time.Time, domain.Cart](repo.FindByCreatedAt),
		events:        events.NopPublisher{},
		log:           slog.Default(),
		now:           time.Now,
		maxConcurrent: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context) (domain.CartView, error) {
	createdAt := s.now().UTC().Truncate(time.Microsecond)

	var (
		saved domain.Cart
		err   error
	)
	for attempt := 0; attempt < createAttempts; attempt++ {
		saved, err = s.repo.Save(ctx, domain.Cart{CreatedAt: createdAt})
		if !errors.Is(err, ErrDuplicate) {
			break
		}
		// another cart took this microsecond
		createdAt = createdAt.Add(time.Microsecond)
	}
	if err != nil {
		return domain.CartView{}, err
	}

	s.publish(ctx, events.CartCreated, saved.ID, nil)
	return s.view(ctx, saved)
}

func (s *Service) List(ctx context.Context) ([]domain.CartView, error) {
	carts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, carts)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.CartView, error) {
	cart, err := load(ctx, s.repo, id)
	if err != nil {
		return domain.CartView{}, err
	}
	return s.view(ctx, cart)
}

func (s *Service) GetByCreatedAt(ctx context.Context, createdAt time.Time) (domain.CartView, error) {
	key := createdAt.UTC().Truncate(time.Microsecond)
	cart, ok, err := natkey.Find(ctx, s.byCreated, key)
	if err != nil {
		return domain.CartView{}, err
	}
	if !ok {
		return domain.CartView{}, apperr.New(apperr.KindNotFound,
			"Cart not found: created at '"+key.Format(time.RFC3339Nano)+"'")
	}
	return s.view(ctx, cart)
}

func (s *Service) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32) (domain.CartView, error) {
	if quantity < 1 {
		return domain.CartView{}, lineitem.ErrInvalidQuantity
	}

	// Product is read outside the transaction. A missing cart still takes
	// precedence over a missing product.
	product, productErr := s.catalog.GetProduct(ctx, productID)
	if productErr != nil && !errors.Is(productErr, apperr.ErrProductNotFound) {
		return domain.CartView{}, productErr
	}

	var (
		saved domain.Cart
		added lineitem.Item
	)
	err := s.repo.InTx(ctx, func(tx CartStore) error {
		cart, err := load(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if productErr != nil {
			return productErr
		}

		added, err = cart.Items.AddOrMerge(lineitem.Merge, product.ID, quantity, product.Price)
		if err != nil {
			return err
		}

		saved, err = tx.Save(ctx, cart)
		return err
	})
	if err != nil {
		return domain.CartView{}, err
	}

	s.publish(ctx, events.CartItemAdded, saved.ID, map[string]any{
		"product_id": productID,
		"quantity":   quantity,
		"line_qty":   added.Quantity,
	})
	return s.view(ctx, saved)
}

func (s *Service) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int32) (domain.CartView, error) {
	var saved domain.Cart
	err := s.repo.InTx(ctx, func(tx CartStore) error {
		cart, err := load(ctx, tx, cartID)
		if err != nil {
			return err
		}

		if err := cart.Items.UpdateQuantity(itemID, quantity); err != nil {
			if errors.Is(err, lineitem.ErrItemNotFound) {
				return apperr.CartItemNotFound(itemID, cartID)
			}
			return err
		}

		saved, err = tx.Save(ctx, cart)
		return err
	})
	if err != nil {
		return domain.CartView{}, err
	}

	s.publish(ctx, events.CartItemUpdated, saved.ID, map[string]any{"item_id": itemID, "quantity": quantity})
	return s.view(ctx, saved)
}

// RemoveItem is a no-op for unknown item ids; the cart is still saved.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (domain.CartView, error) {
	var (
		saved   domain.Cart
		removed bool
	)
	err := s.repo.InTx(ctx, func(tx CartStore) error {
		cart, err := load(ctx, tx, cartID)
		if err != nil {
			return err
		}

		removed = cart.Items.Remove(itemID)
		saved, err = tx.Save(ctx, cart)
		return err
	})
	if err != nil {
		return domain.CartView{}, err
	}

	if removed {
		s.publish(ctx, events.CartItemRemoved, saved.ID, map[string]any{"item_id": itemID})
	}
	return s.view(ctx, saved)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.InTx(ctx, func(tx CartStore) error {
		exists, err := tx.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.CartNotFound(id)
		}
		return tx.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.CartDeleted, id, nil)
	return nil
}

func load(ctx context.Context, store CartStore, id uuid.UUID) (domain.Cart, error) {
	cart, ok, err := store.FindByID(ctx, id)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok {
		return domain.Cart{}, apperr.CartNotFound(id)
	}
	return cart, nil
}

func (s *Service) publish(ctx context.Context, typ string, cartID uuid.UUID, data map[string]any) {
	err := s.events.Publish(ctx, events.Event{
		Type:          typ,
		AggregateType: "cart",
		AggregateID:   cartID,
		OccurredAt:    s.now().UTC(),
		Data:          data,
	})
	if err != nil {
		s.log.WarnContext(ctx, "publish cart event failed",
			slog.String("type", typ),
			slog.String("cart_id", cartID.String()),
			slog.Any("err", err),
		)
	}
}
