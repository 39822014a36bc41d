package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/cart/app"
	"github.com/dwikikusuma/cosmo-market/internal/cart/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/lineitem"
	"github.com/dwikikusuma/cosmo-market/pkg/sqldb/sqldbtest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *CartRepo {
	t.Helper()
	db, d := sqldbtest.OpenSQLite(t)
	return NewCartRepo(db, d)
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.UTC)

func TestCartRepo_SaveAssignsIDsAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	a, b := uuid.New(), uuid.New()
	cart := domain.Cart{CreatedAt: t0}
	_, err := cart.Items.AddOrMerge(lineitem.Merge, b, 1, decimal.Zero)
	require.NoError(t, err)
	_, err = cart.Items.AddOrMerge(lineitem.Merge, a, 2, decimal.Zero)
	require.NoError(t, err)

	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	require.Len(t, saved.Items, 2)
	for _, it := range saved.Items {
		assert.NotEqual(t, uuid.Nil, it.ID)
	}

	got, ok, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.CreatedAt.Equal(t0))
	require.Len(t, got.Items, 2)
	assert.Equal(t, b, got.Items[0].ProductID)
	assert.Equal(t, a, got.Items[1].ProductID)
	assert.Equal(t, saved.Items[0].ID, got.Items[0].ID)

	// item ids survive a re-save
	got.Items[1].Quantity = 9
	resaved, err := repo.Save(ctx, got)
	require.NoError(t, err)
	again, _, err := repo.FindByID(ctx, resaved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Items[1].ID, again.Items[1].ID)
	assert.Equal(t, int32(9), again.Items[1].Quantity)
}

func TestCartRepo_DuplicateCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.Save(ctx, domain.Cart{CreatedAt: t0})
	require.NoError(t, err)
	_, err = repo.Save(ctx, domain.Cart{CreatedAt: t0})
	assert.ErrorIs(t, err, app.ErrDuplicate)
}

func TestCartRepo_FindByCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	first, err := repo.Save(ctx, domain.Cart{CreatedAt: t0})
	require.NoError(t, err)
	_, err = repo.Save(ctx, domain.Cart{CreatedAt: t0.Add(time.Microsecond)})
	require.NoError(t, err)

	got, ok, err := repo.FindByCreatedAt(ctx, t0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	_, ok, err = repo.FindByCreatedAt(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCartRepo_DeleteCascadesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	cart := domain.Cart{CreatedAt: t0}
	_, _ = cart.Items.AddOrMerge(lineitem.Merge, uuid.New(), 1, decimal.Zero)
	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))
	require.NoError(t, repo.DeleteByID(ctx, saved.ID))

	exists, err := repo.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	var n int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items`).Scan(&n))
	assert.Zero(t, n)
}

func TestCartRepo_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	for i := 0; i < 3; i++ {
		c := domain.Cart{CreatedAt: t0.Add(time.Duration(i) * time.Second)}
		_, _ = c.Items.AddOrMerge(lineitem.Merge, uuid.New(), int32(i+1), decimal.Zero)
		_, err := repo.Save(ctx, c)
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, c := range all {
		require.Len(t, c.Items, 1)
		assert.Equal(t, int32(i+1), c.Items[0].Quantity)
	}
}

func TestCartRepo_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	saved, err := repo.Save(ctx, domain.Cart{CreatedAt: t0})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.InTx(ctx, func(tx app.CartStore) error {
		c, ok, err := tx.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.True(t, ok)
		_, _ = c.Items.AddOrMerge(lineitem.Merge, uuid.New(), 3, decimal.Zero)
		if _, err := tx.Save(ctx, c); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}
