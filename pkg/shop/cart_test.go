package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/example/consoleshop/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItemRejectsBadInput(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	pen, _ := ts.Catalog.Add(ctx, "Pen", dec("10"), 5)

	cart, err := ts.OpenCart(ctx, "ann")
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uint64
		qty     int64
		wantErr error
	}{
		{name: "zero quantity", id: pen.ID, qty: 0, wantErr: ErrInvalidInput},
		{name: "negative quantity", id: pen.ID, qty: -2, wantErr: ErrInvalidInput},
		{name: "unknown product", id: 42, qty: 1, wantErr: ErrInvalidInput},
		{name: "id zero", id: 0, qty: 1, wantErr: ErrInvalidInput},
		{name: "more than stock", id: pen.ID, qty: 6, wantErr: ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cart.AddItem(ctx, tt.id, tt.qty)
			assert.ErrorIs(t, err, tt.wantErr)

			p, _ := ts.Catalog.Lookup(pen.ID)
			assert.Equal(t, int64(5), p.Stock, "catalog unchanged")
			assert.True(t, cart.IsEmpty(), "cart unchanged")
		})
	}
}

func TestCart_PriceSnapshotIgnoresLaterEdits(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	pen, _ := ts.Catalog.Add(ctx, "Pen", dec("10"), 5)

	cart, err := ts.OpenCart(ctx, "ann")
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, pen.ID, 1)
	require.NoError(t, err)

	require.NoError(t, ts.Catalog.Edit(ctx, pen.ID, "Gold pen", dec("99"), 4))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Pen", items[0].Name)
	assert.True(t, dec("10").Equal(items[0].Price))
	assert.True(t, dec("10").Equal(cart.Total()))
}

func TestCart_RemoveItemReleasesStock(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	pen, _ := ts.Catalog.Add(ctx, "Pen", dec("10"), 5)
	ink, _ := ts.Catalog.Add(ctx, "Ink", dec("1"), 5)

	cart, err := ts.OpenCart(ctx, "ann")
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, pen.ID, 2)
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, ink.ID, 4)
	require.NoError(t, err)

	_, err = cart.RemoveItem(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = cart.RemoveItem(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	removed, err := cart.RemoveItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pen", removed.Name)

	p, _ := ts.Catalog.Lookup(pen.ID)
	assert.Equal(t, int64(5), p.Stock)
	require.Equal(t, 1, cart.Len())
	assert.Equal(t, "Ink", cart.Items()[0].Name)

	stored, err := ts.repo.LoadCart(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Ink", stored[0].Name)
}

func TestCart_AbandonReleasesEverything(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	pen, _ := ts.Catalog.Add(ctx, "Pen", dec("10"), 5)

	cart, err := ts.OpenCart(ctx, "ann")
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, pen.ID, 2)
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, pen.ID, 3)
	require.NoError(t, err)

	p, _ := ts.Catalog.Lookup(pen.ID)
	require.Equal(t, int64(0), p.Stock)

	require.NoError(t, cart.Abandon(ctx))
	assert.True(t, cart.IsEmpty())

	p, _ = ts.Catalog.Lookup(pen.ID)
	assert.Equal(t, int64(5), p.Stock)
}

func TestCart_LegacyLineWithoutProductID(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	pen, _ := ts.Catalog.Add(ctx, "Pen", dec("10"), 5)

	require.NoError(t, ts.repo.SaveCart(ctx, "ann", []models.CartItem{{Name: "Pen", Price: dec("10"), Quantity: 2}}))

	cart, err := ts.OpenCart(ctx, "ann")
	require.NoError(t, err)
	require.NoError(t, cart.Abandon(ctx))

	p, _ := ts.Catalog.Lookup(pen.ID)
	assert.Equal(t, int64(5), p.Stock, "lines without a product id release nothing")
}

type flakyCarts struct {
	fail bool
	data map[string][]models.CartItem
}

func (f *flakyCarts) LoadCart(_ context.Context, username string) ([]models.CartItem, error) {
	return f.data[username], nil
}

func (f *flakyCarts) SaveCart(_ context.Context, username string, items []models.CartItem) error {
	if f.fail {
		return errors.New("connection reset")
	}
	f.data[username] = append([]models.CartItem(nil), items...)
	return nil
}

func TestCart_SaveFailureReleasesReservation(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	carts := &flakyCarts{data: map[string][]models.CartItem{}}
	ts.carts = carts

	pen, _ := ts.Catalog.Add(ctx, "Pen", dec("10"), 5)
	cart, err := ts.OpenCart(ctx, "ann")
	require.NoError(t, err)

	carts.fail = true
	_, err = cart.AddItem(ctx, pen.ID, 2)
	require.Error(t, err)
	assert.False(t, IsUserError(err))
	assert.True(t, cart.IsEmpty())

	p, _ := ts.Catalog.Lookup(pen.ID)
	assert.Equal(t, int64(5), p.Stock)

	carts.fail = false
	_, err = cart.AddItem(ctx, pen.ID, 2)
	require.NoError(t, err)

	carts.fail = true
	_, err = cart.RemoveItem(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 1, cart.Len(), "line stays when the removal cannot be stored")
	p, _ = ts.Catalog.Lookup(pen.ID)
	assert.Equal(t, int64(3), p.Stock)
}
