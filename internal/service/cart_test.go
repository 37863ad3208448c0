package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

func TestCart_AddMergesAndDefaultsQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "ann", models.RoleUser)
	p := env.product(t, "Mug", "5.00")

	item, err := env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, item.Quantity)

	item, err = env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: p.ID, Quantity: intp(3)})
	require.NoError(t, err)
	assert.EqualValues(t, 4, item.Quantity)
	assert.Equal(t, "Mug", item.Product.Name)

	items, err := env.cart.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Len(t, env.events.Messages(events.TopicCart), 2)
}

func TestCart_AddValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "bob", models.RoleUser)
	p := env.product(t, "Mug", "5.00")

	_, err := env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: p.ID, Quantity: intp(0)})
	require.ErrorIs(t, err, ErrValidation)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "quantity", fe.Field)

	_, err = env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: 4242})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCart_UpdateQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "cy", models.RoleUser)
	stranger := env.user(t, "dee", models.RoleUser)
	p := env.product(t, "Mug", "5.00")

	item, err := env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: p.ID})
	require.NoError(t, err)

	updated, err := env.cart.UpdateQuantity(ctx, u.ID, transport.UpdateCartItemRequest{ID: item.ID, Quantity: intp(7)})
	require.NoError(t, err)
	assert.EqualValues(t, 7, updated.Quantity)

	updated, err = env.cart.UpdateQuantity(ctx, u.ID, transport.UpdateCartItemRequest{Product: p.ID, Quantity: intp(2)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Quantity)

	_, err = env.cart.UpdateQuantity(ctx, u.ID, transport.UpdateCartItemRequest{ID: item.ID, Quantity: intp(0)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.cart.UpdateQuantity(ctx, u.ID, transport.UpdateCartItemRequest{ID: item.ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.cart.UpdateQuantity(ctx, u.ID, transport.UpdateCartItemRequest{Quantity: intp(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.cart.UpdateQuantity(ctx, stranger.ID, transport.UpdateCartItemRequest{ID: item.ID, Quantity: intp(3)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_Remove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "eli", models.RoleUser)
	stranger := env.user(t, "fin", models.RoleUser)
	a := env.product(t, "A", "1.00")
	b := env.product(t, "B", "1.00")

	item, err := env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: a.ID})
	require.NoError(t, err)
	_, err = env.cart.Add(ctx, u.ID, transport.AddCartItemRequest{Product: b.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, env.cart.Remove(ctx, u.ID, transport.RemoveCartItemRequest{}), ErrValidation)
	assert.ErrorIs(t, env.cart.Remove(ctx, stranger.ID, transport.RemoveCartItemRequest{ID: item.ID}), ErrNotFound)

	require.NoError(t, env.cart.Remove(ctx, u.ID, transport.RemoveCartItemRequest{ID: item.ID}))
	assert.ErrorIs(t, env.cart.Remove(ctx, u.ID, transport.RemoveCartItemRequest{ID: item.ID}), ErrNotFound)

	require.NoError(t, env.cart.Remove(ctx, u.ID, transport.RemoveCartItemRequest{Product: b.ID}))
	require.NoError(t, env.cart.Remove(ctx, u.ID, transport.RemoveCartItemRequest{Product: b.ID}))

	items, err := env.cart.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "gus", models.RoleUser)
	p := env.product(t, "Lamp", "20.00")

	item, created, err := env.wishlist.Add(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Lamp", item.Product.Name)

	again, created, err := env.wishlist.Add(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, item.ID, again.ID)
	require.Len(t, env.events.Messages(events.TopicWishlist), 1)

	items, err := env.wishlist.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, _, err = env.wishlist.Add(ctx, u.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = env.wishlist.Add(ctx, u.ID, 777)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.wishlist.Remove(ctx, u.ID, 0), ErrValidation)
	require.NoError(t, env.wishlist.Remove(ctx, u.ID, p.ID))
	assert.ErrorIs(t, env.wishlist.Remove(ctx, u.ID, p.ID), ErrNotFound)

	msgs := env.events.Messages(events.TopicWishlist)
	require.Len(t, msgs, 2)
	assert.Equal(t, strconv.FormatUint(uint64(u.ID), 10), msgs[1].Key)
	assert.Equal(t, "add_wishlist_item", msgs[0].Event["type"])
	assert.Equal(t, "wishlist_item_deleted", msgs[1].Event["type"])
	assert.EqualValues(t, p.ID, msgs[1].Event["productID"])
}
