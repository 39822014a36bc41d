package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/order/app"
	"github.com/dwikikusuma/cosmo-market/internal/order/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
	"github.com/google/uuid"
)

type OrderRepo struct {
	db   *sql.DB
	q    sqldb.Querier
	d    sqldb.Dialect
	inTx bool
}

func NewOrderRepo(db *sql.DB, d sqldb.Dialect) *OrderRepo {
	return &OrderRepo{db: db, q: db, d: d}
}

func (r *OrderRepo) InTx(ctx context.Context, fn func(tx app.OrderStore) error) error {
	return sqldb.ExecTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&OrderRepo{db: r.db, q: tx, d: r.d, inTx: true})
	})
}

// Save writes the order row with its stored total, then replaces its lines.
func (r *OrderRepo) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	isNew := order.ID == uuid.Nil
	if isNew {
		order.ID = uuid.New()
	} else {
		exists, err := r.ExistsByID(ctx, order.ID)
		if err != nil {
			return domain.Order{}, err
		}
		isNew = !exists
	}

	if isNew {
		_, err := r.q.ExecContext(ctx,
			r.d.Rebind(`INSERT INTO orders (id, created_at_us, total_price) VALUES (?, ?, ?)`),
			order.ID, order.CreatedAt.UnixMicro(), order.TotalPrice)
		if sqldb.IsUniqueViolation(err) {
			return domain.Order{}, app.ErrDuplicate
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order: %w", err)
		}
	} else {
		_, err := r.q.ExecContext(ctx, r.d.Rebind(`UPDATE orders SET total_price = ? WHERE id = ?`),
			order.TotalPrice, order.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("update order total: %w", err)
		}
	}

	if _, err := r.q.ExecContext(ctx, r.d.Rebind(`DELETE FROM order_items WHERE order_id = ?`), order.ID); err != nil {
		return domain.Order{}, fmt.Errorf("clear order items: %w", err)
	}

	items := order.Items.Clone()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		_, err := r.q.ExecContext(ctx, r.d.Rebind(`
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, line_no)
			VALUES (?, ?, ?, ?, ?, ?)`),
			items[i].ID, order.ID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice, i,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order item %d: %w", i, err)
		}
	}
	order.Items = items

	return order, nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Order, bool, error) {
	q := `SELECT id, created_at_us, total_price FROM orders WHERE id = ?`
	if r.inTx {
		q += r.d.ForUpdate()
	}

	order, err := scanOrder(r.q.QueryRowContext(ctx, r.d.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("get order: %w", err)
	}

	items, err := r.items(ctx, `WHERE order_id = ?`, id)
	if err != nil {
		return domain.Order{}, false, err
	}
	order.Items = items[order.ID]
	return order, true, nil
}

func (r *OrderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, created_at_us, total_price FROM orders ORDER BY created_at_us`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.items(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *OrderRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := r.q.ExecContext(ctx, r.d.Rebind(`DELETE FROM order_items WHERE order_id = ?`), id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, r.d.Rebind(`DELETE FROM orders WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (r *OrderRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := sqldb.Exists(ctx, r.q, r.d, `SELECT 1 FROM orders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("order exists: %w", err)
	}
	return ok, nil
}

func (r *OrderRepo) FindByCreatedAt(ctx context.Context, createdAt time.Time) (domain.Order, bool, error) {
	var id uuid.UUID
	err := r.q.QueryRowContext(ctx, r.d.Rebind(`SELECT id FROM orders WHERE created_at_us = ?`),
		createdAt.UnixMicro()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("get order by created_at: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepo) items(ctx context.Context, where string, args ...any) (map[uuid.UUID]lineitem.Collection, error) {
	q := `SELECT id, order_id, product_id, quantity, unit_price FROM order_items ` + where + ` ORDER BY order_id, line_no`
	rows, err := r.q.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]lineitem.Collection)
	for rows.Next() {
		var (
			it      lineitem.Item
			orderID uuid.UUID
		)
		if err := rows.Scan(&it.ID, &orderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (domain.Order, error) {
	var (
		o  domain.Order
		us int64
	)
	if err := s.Scan(&o.ID, &us, &o.TotalPrice); err != nil {
		return domain.Order{}, err
	}
	o.CreatedAt = time.UnixMicro(us).UTC()
	return o, nil
}
