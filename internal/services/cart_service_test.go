package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddRecomputesPriceAndAssignsIDs(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)

	spoofed := cakeAt(t, "dup", "1")
	cart, err := sf.cart.Add(ctx, spoofed)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "dup", cart[0].ID)
	assert.True(t, cart[0].TotalPrice.Equal(dec(t, "45.5")))

	cart, err = sf.cart.Add(ctx, spoofed)
	require.NoError(t, err)
	require.Len(t, cart, 2)
	assert.NotEqual(t, "dup", cart[1].ID)
}

func TestCartAddRejectsIncompleteCake(t *testing.T) {
	sf := newStorefront(t)
	cake := cakeAt(t, "x", "0")
	cake.Frosting.ID = ""
	_, err := sf.cart.Add(context.Background(), cake)
	require.ErrorIs(t, err, ErrCartInvalidInput)
}

func TestCartRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	_, err := sf.cart.Add(ctx, cakeAt(t, "a", "0"))
	require.NoError(t, err)
	_, err = sf.cart.Add(ctx, cakeAt(t, "b", "0"))
	require.NoError(t, err)

	cart, err := sf.cart.Remove(ctx, "a")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "b", cart[0].ID)

	_, err = sf.cart.Remove(ctx, "a")
	require.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, sf.cart.Clear(ctx))
	cart, err = sf.cart.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartMutationsAreMirrored(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	_, err := sf.cart.Add(ctx, cakeAt(t, "a", "0"))
	require.NoError(t, err)

	payload, ok, err := sf.store.Load(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(payload), `"id":"a"`)

	restarted := newStorefrontWithStore(t, sf.store)
	cart, err := restarted.cart.Get(ctx)
	require.NoError(t, err)
	require.Len(t, cart, 1)

	quote, err := restarted.cart.Estimate(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(dec(t, "50.95")))
}
