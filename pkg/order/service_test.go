package order

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/checkout"
	"storefront/pkg/storage/sqlitedb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	require.NoError(t, sqlitedb.EnsureSchema(ctx, db))

	svc := NewService(NewRepository(db), zaptest.NewLogger(t))
	t.Cleanup(func() {
		svc.Close()
		db.Close()
	})
	return svc
}

func address() ShippingAddress {
	return ShippingAddress{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Address:    "1 Noodle Lane",
		City:       "Springfield",
		PostalCode: "12345",
	}
}

func sampleOrder(t *testing.T) Order {
	t.Helper()
	store := cart.NewStore()
	items := catalog.SampleItems()
	store.AddItem(items[0])
	store.AddItem(items[0])
	state := store.AddItem(items[1])
	return FromCart(state, checkout.DefaultPolicy().Quote(state), address())
}

func TestFromCart(t *testing.T) {
	order := sampleOrder(t)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, "1", order.Lines[0].ProductID)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, 3, order.ItemCount())
	assert.Equal(t, StatusPending, order.Status)
	// 2 x 12.99 + 14.99 = 40.97, tax 3.2776, shipping 5.99
	assert.Equal(t, "40.97", order.Subtotal.StringFixed(2))
	assert.Equal(t, "5.99", order.Shipping.StringFixed(2))
	assert.Equal(t, "3.28", order.Tax.String())
	assert.Equal(t, "50.24", order.Total.String())
}

func TestSubmitAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := svc.Submit(ctx, sampleOrder(t))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, StatusPending, first.Status)

	second, err := svc.Submit(ctx, sampleOrder(t))
	require.NoError(t, err)

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, address(), got.ShippingAddress)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("50.24")))
	assert.True(t, got.Lines[0].UnitPrice.Equal(decimal.RequireFromString("12.99")))
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Second)))
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*Order)
	}{
		{name: "missing name", mutate: func(o *Order) { o.ShippingAddress.Name = " " }},
		{name: "bad email", mutate: func(o *Order) { o.ShippingAddress.Email = "jane.example.com" }},
		{name: "missing city", mutate: func(o *Order) { o.ShippingAddress.City = "" }},
		{name: "missing postal code", mutate: func(o *Order) { o.ShippingAddress.PostalCode = "" }},
		{name: "zero quantity", mutate: func(o *Order) { o.Lines[0].Quantity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder(t)
			tt.mutate(&order)
			_, err := svc.Submit(ctx, order)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSubmitEmptyCart(t *testing.T) {
	svc := newTestService(t)
	empty := FromCart(cart.NewStore().Snapshot(), checkout.Quote{}, address())
	_, err := svc.Submit(context.Background(), empty)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestGetUnknown(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitLogsPlacedOrder(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	require.NoError(t, sqlitedb.EnsureSchema(ctx, db))
	core, logs := observer.New(zap.InfoLevel)
	svc := NewService(NewRepository(db), zap.New(core))
	t.Cleanup(func() {
		svc.Close()
		db.Close()
	})

	stored, err := svc.Submit(ctx, sampleOrder(t))
	require.NoError(t, err)

	placed := logs.FilterMessage("order placed").All()
	require.Len(t, placed, 1)
	fields := placed[0].ContextMap()
	assert.Equal(t, stored.ID, fields["order_id"])
	assert.Equal(t, "$50.24", fields["total"])
	assert.EqualValues(t, 3, fields["item_count"])
}
