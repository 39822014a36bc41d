package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/catalog/app"
	"github.com/dwikikusuma/cosmo-market/internal/catalog/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
	"github.com/google/uuid"
)

const productColumns = `id, name, description, category, available_quantity, price, created_at_us, updated_at_us`

type ProductRepo struct {
	db *sql.DB
	d  sqldb.Dialect
}

func NewProductRepo(db *sql.DB, d sqldb.Dialect) *ProductRepo {
	return &ProductRepo{db: db, d: d}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, string(p.Category), p.AvailableQuantity, p.Price,
		p.CreatedAt.UnixMicro(), p.UpdatedAt.UnixMicro(),
	)
	if sqldb.IsUniqueViolation(err) {
		return domain.Product{}, app.ErrDuplicate
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) GetByName(ctx context.Context, name string) (domain.Product, bool, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT `+productColumns+` FROM products WHERE name = ?`), name)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("get product by name: %w", err)
	}
	return p, true, nil
}

// List pages by id. nextCursor is empty on the last page.
func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var (
		where []string
		args  []any
	)
	if query != "" {
		where = append(where, `LOWER(name) LIKE ?`)
		args = append(args, "%"+strings.ToLower(query)+"%")
	}
	if cursor != "" {
		cur, err := uuid.Parse(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("parse cursor: %w", err)
		}
		where = append(where, `id > ?`)
		args = append(args, cur)
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, "", fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		next = out[len(out)-1].ID.String()
	}
	return out, next, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
		UPDATE products
		SET name = ?, description = ?, category = ?, available_quantity = ?, price = ?, updated_at_us = ?
		WHERE id = ?`),
		p.Name, p.Description, string(p.Category), p.AvailableQuantity, p.Price, p.UpdatedAt.UnixMicro(), p.ID,
	)
	if sqldb.IsUniqueViolation(err) {
		return domain.Product{}, app.ErrDuplicate
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	// RowsAffected is unreliable on MySQL for unchanged rows; re-read instead.
	return r.Get(ctx, p.ID)
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var (
		p                  domain.Product
		category           string
		createdUs, updated int64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &category, &p.AvailableQuantity, &p.Price, &createdUs, &updated); err != nil {
		return domain.Product{}, err
	}
	p.Category = domain.Category(category)
	p.CreatedAt = time.UnixMicro(createdUs).UTC()
	p.UpdatedAt = time.UnixMicro(updated).UTC()
	return p, nil
}
