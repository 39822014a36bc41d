package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/order/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/events"
	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/natkey"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrDuplicate = errors.New("duplicate order")

const createAttempts = 3

type Service struct {
	repo      OrderRepo
	catalog   CatalogReader
	byCreated natkey.Lookup[time.Time, domain.Order]
	events    events.Publisher
	log       *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.events = p } }
func WithLogger(l *slog.Logger) Option        { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option   { return func(s *Service) { s.now = now } }

func NewService(repo OrderRepo, catalog CatalogReader, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		byCreated: natkey.Func[time.Time, domain.Order](repo.FindByCreatedAt),
		events:    events.NopPublisher{},
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context) (domain.OrderView, error) {
	createdAt := s.now().UTC().Truncate(time.Microsecond)

	var (
		saved domain.Order
		err   error
	)
	for attempt := 0; attempt < createAttempts; attempt++ {
		saved, err = s.repo.Save(ctx, domain.Order{CreatedAt: createdAt, TotalPrice: decimal.Zero})
		if !errors.Is(err, ErrDuplicate) {
			break
		}
		createdAt = createdAt.Add(time.Microsecond)
	}
	if err != nil {
		return domain.OrderView{}, err
	}

	s.publish(ctx, events.OrderCreated, saved, nil)
	return saved.View(), nil
}

func (s *Service) List(ctx context.Context) ([]domain.OrderView, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.View())
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.OrderView, error) {
	order, err := load(ctx, s.repo, id)
	if err != nil {
		return domain.OrderView{}, err
	}
	return order.View(), nil
}

func (s *Service) GetByCreatedAt(ctx context.Context, createdAt time.Time) (domain.OrderView, error) {
	key := createdAt.UTC().Truncate(time.Microsecond)
	order, ok, err := natkey.Find(ctx, s.byCreated, key)
	if err != nil {
		return domain.OrderView{}, err
	}
	if !ok {
		return domain.OrderView{}, apperr.New(apperr.KindNotFound,
			"Order not found: created at '"+key.Format(time.RFC3339Nano)+"'")
	}
	return order.View(), nil
}

// AddItem always appends a new line carrying the product's current price.
func (s *Service) AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int32) (domain.OrderView, error) {
	if quantity < 1 {
		return domain.OrderView{}, lineitem.ErrInvalidQuantity
	}

	product, productErr := s.catalog.GetProduct(ctx, productID)
	if productErr != nil && !errors.Is(productErr, apperr.ErrProductNotFound) {
		return domain.OrderView{}, productErr
	}

	saved, err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		if productErr != nil {
			return productErr
		}
		_, err := o.Items.AddOrMerge(lineitem.Append, product.ID, quantity, product.Price)
		return err
	})
	if err != nil {
		return domain.OrderView{}, err
	}

	s.publish(ctx, events.OrderItemAdded, saved, map[string]any{
		"product_id": productID,
		"quantity":   quantity,
		"unit_price": product.Price.String(),
	})
	return saved.View(), nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int32) (domain.OrderView, error) {
	saved, err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		err := o.Items.UpdateQuantity(itemID, quantity)
		if errors.Is(err, lineitem.ErrItemNotFound) {
			return apperr.OrderItemNotFound(itemID, orderID)
		}
		return err
	})
	if err != nil {
		return domain.OrderView{}, err
	}

	s.publish(ctx, events.OrderItemUpdated, saved, map[string]any{"item_id": itemID, "quantity": quantity})
	return saved.View(), nil
}

// RemoveItem is a no-op for unknown item ids; the order is still saved.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (domain.OrderView, error) {
	var removed bool
	saved, err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		removed = o.Items.Remove(itemID)
		return nil
	})
	if err != nil {
		return domain.OrderView{}, err
	}

	if removed {
		s.publish(ctx, events.OrderItemRemoved, saved, map[string]any{"item_id": itemID})
	}
	return saved.View(), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.InTx(ctx, func(tx OrderStore) error {
		exists, err := tx.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.OrderNotFound(id)
		}
		return tx.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.OrderDeleted, domain.Order{ID: id}, nil)
	return nil
}

// mutate loads the order, applies fn, recomputes the total and saves, all in
// one transaction. Nothing is saved when fn fails.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(o *domain.Order) error) (domain.Order, error) {
	var saved domain.Order
	err := s.repo.InTx(ctx, func(tx OrderStore) error {
		order, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&order); err != nil {
			return err
		}

		order.Recalculate()
		saved, err = tx.Save(ctx, order)
		return err
	})
	return saved, err
}

func load(ctx context.Context, store OrderStore, id uuid.UUID) (domain.Order, error) {
	order, ok, err := store.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, apperr.OrderNotFound(id)
	}
	return order, nil
}

func (s *Service) publish(ctx context.Context, typ string, o domain.Order, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if typ != events.OrderDeleted {
		data["total_price"] = o.TotalPrice.String()
	}

	err := s.events.Publish(ctx, events.Event{
		Type:          typ,
		AggregateType: "order",
		AggregateID:   o.ID,
		OccurredAt:    s.now().UTC(),
		Data:          data,
	})
	if err != nil {
		s.log.WarnContext(ctx, "publish order event failed",
			slog.String("type", typ),
			slog.String("order_id", o.ID.String()),
			slog.Any("err", err),
		)
	}
}
