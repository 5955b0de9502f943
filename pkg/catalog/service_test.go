package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"storefront/pkg/storage/sqlitedb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, sqlitedb.EnsureSchema(ctx, db))

	svc := NewService(NewRepository(db), zaptest.NewLogger(t))
	t.Cleanup(func() {
		svc.Close()
		db.Close()
	})
	return svc
}

func TestServiceSeedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	n, err := svc.Seed(ctx, SampleItems())
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = svc.Seed(ctx, SampleItems()[:2])
	require.NoError(t, err)
	assert.Zero(t, n)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 10)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "10", items[9].ID)
	assert.Equal(t, "12.99", items[0].Price.StringFixed(2))
	assert.Equal(t, SpiceMild, items[0].SpiceLevel)
	assert.True(t, items[0].Featured)
	assert.True(t, items[0].InStock)
}

func TestServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item := Item{
		ID:       "x1",
		Name:     "Black Garlic Oil",
		Price:    decimal.RequireFromString("5.25"),
		Category: CategorySauces,
		InStock:  true,
	}
	_, err := svc.Add(ctx, item)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "x1")
	require.NoError(t, err)
	assert.Equal(t, "Black Garlic Oil", got.Name)
	assert.True(t, got.Price.Equal(item.Price))
	assert.Equal(t, SpiceUnrated, got.SpiceLevel)

	item.InStock = false
	item.Price = decimal.RequireFromString("4.75")
	require.NoError(t, svc.Update(ctx, item))

	got, err = svc.Get(ctx, "x1")
	require.NoError(t, err)
	assert.False(t, got.InStock)
	assert.Equal(t, "4.75", got.Price.StringFixed(2))

	require.NoError(t, svc.Delete(ctx, "x1"))
	_, err = svc.Get(ctx, "x1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "x1"), ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, item), ErrNotFound)
}

func TestServiceAddRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Add(context.Background(), Item{ID: "bad"})
	assert.True(t, IsValidation(err))
}

func TestServiceSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Seed(ctx, SampleItems())
	require.NoError(t, err)

	items, err := svc.Search(ctx, Query{Category: CategorySauces, SpiceLevel: SpiceHot})
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, ids(items))
}

func TestServiceHonorsCanceledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
