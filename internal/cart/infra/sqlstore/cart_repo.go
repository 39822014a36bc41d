package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/cart/app"
	"github.com/dwikikusuma/cosmo-market/internal/cart/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
	"github.com/google/uuid"
)

type CartRepo struct {
	db *sql.DB
	q  sqldb.Querier
	d  sqldb.Dialect
	// inTx makes FindByID lock the cart row until commit.
	inTx bool
}

func NewCartRepo(db *sql.DB, d sqldb.Dialect) *CartRepo {
	return &CartRepo{db: db, q: db, d: d}
}

func (r *CartRepo) InTx(ctx context.Context, fn func(tx app.CartStore) error) error {
	return sqldb.ExecTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&CartRepo{db: r.db, q: tx, d: r.d, inTx: true})
	})
}

func (r *CartRepo) Save(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	isNew := cart.ID == uuid.Nil
	if isNew {
		cart.ID = uuid.New()
	} else {
		exists, err := r.ExistsByID(ctx, cart.ID)
		if err != nil {
			return domain.Cart{}, err
		}
		isNew = !exists
	}

	if isNew {
		_, err := r.q.ExecContext(ctx, r.d.Rebind(`INSERT INTO carts (id, created_at_us) VALUES (?, ?)`),
			cart.ID, cart.CreatedAt.UnixMicro())
		if sqldb.IsUniqueViolation(err) {
			return domain.Cart{}, app.ErrDuplicate
		}
		if err != nil {
			return domain.Cart{}, fmt.Errorf("insert cart: %w", err)
		}
	}

	if _, err := r.q.ExecContext(ctx, r.d.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cart.ID); err != nil {
		return domain.Cart{}, fmt.Errorf("clear cart items: %w", err)
	}

	items := cart.Items.Clone()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		_, err := r.q.ExecContext(ctx, r.d.Rebind(`
			INSERT INTO cart_items (id, cart_id, product_id, quantity, line_no)
			VALUES (?, ?, ?, ?, ?)`),
			items[i].ID, cart.ID, items[i].ProductID, items[i].Quantity, i,
		)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("insert cart item %d: %w", i, err)
		}
	}
	cart.Items = items

	return cart, nil
}

func (r *CartRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Cart, bool, error) {
	q := `SELECT id, created_at_us FROM carts WHERE id = ?`
	if r.inTx {
		q += r.d.ForUpdate()
	}

	cart, err := scanCart(r.q.QueryRowContext(ctx, r.d.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("get cart: %w", err)
	}

	items, err := r.items(ctx, `WHERE cart_id = ?`, id)
	if err != nil {
		return domain.Cart{}, false, err
	}
	cart.Items = items[cart.ID]
	return cart, true, nil
}

func (r *CartRepo) FindAll(ctx context.Context) ([]domain.Cart, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, created_at_us FROM carts ORDER BY created_at_us`)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.items(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range carts {
		carts[i].Items = items[carts[i].ID]
	}
	return carts, nil
}

func (r *CartRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := r.q.ExecContext(ctx, r.d.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), id); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, r.d.Rebind(`DELETE FROM carts WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (r *CartRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := sqldb.Exists(ctx, r.q, r.d, `SELECT 1 FROM carts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("cart exists: %w", err)
	}
	return ok, nil
}

// FindByCreatedAt resolves a cart through the unique created_at_us index.
func (r *CartRepo) FindByCreatedAt(ctx context.Context, createdAt time.Time) (domain.Cart, bool, error) {
	var id uuid.UUID
	err := r.q.QueryRowContext(ctx, r.d.Rebind(`SELECT id FROM carts WHERE created_at_us = ?`),
		createdAt.UnixMicro()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("get cart by created_at: %w", err)
	}
	return r.FindByID(ctx, id)
}

// items loads lines grouped by cart id, in line order.
func (r *CartRepo) items(ctx context.Context, where string, args ...any) (map[uuid.UUID]lineitem.Collection, error) {
	q := `SELECT id, cart_id, product_id, quantity FROM cart_items ` + where + ` ORDER BY cart_id, line_no`
	rows, err := r.q.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]lineitem.Collection)
	for rows.Next() {
		var (
			it     lineitem.Item
			cartID uuid.UUID
		)
		if err := rows.Scan(&it.ID, &cartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out[cartID] = append(out[cartID], it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCart(s scanner) (domain.Cart, error) {
	var (
		c  domain.Cart
		us int64
	)
	if err := s.Scan(&c.ID, &us); err != nil {
		return domain.Cart{}, err
	}
	c.CreatedAt = time.UnixMicro(us).UTC()
	return c, nil
}
