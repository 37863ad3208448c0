package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

type fakeIndex struct {
	indexed []uint
	deleted []uint
	hits    []uint
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []uint, error) {
	return int64(len(f.hits)), f.hits, f.err
}

func TestCatalog_CreateDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	price := dec("12.5")
	p, err := env.catalog.Create(ctx, transport.CreateProductRequest{Name: "Mug", Price: &price, Category: "Kitchen"})
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, "12.50", p.Price.StringFixed(2))

	_, err = env.catalog.Create(ctx, transport.CreateProductRequest{Name: "NoPrice"})
	assert.ErrorIs(t, err, ErrValidation)

	neg := dec("-1")
	_, err = env.catalog.Create(ctx, transport.CreateProductRequest{Name: "Neg", Price: &neg})
	assert.ErrorIs(t, err, ErrValidation)

	fine := dec("1.234")
	_, err = env.catalog.Create(ctx, transport.CreateProductRequest{Name: "Fine", Price: &fine})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.catalog.Create(ctx, transport.CreateProductRequest{Name: " ", Price: &price})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "name", fe.Field)

	msgs := env.events.Messages(events.TopicProducts)
	require.Len(t, msgs, 1)
	assert.Equal(t, "product_created", msgs[0].Event["type"])
}

func TestCatalog_ListAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	visible := env.product(t, "Red Shirt", "10.00")
	hidden := env.product(t, "Red Cap", "7.00")

	off := false
	_, err := env.catalog.Patch(ctx, hidden.ID, transport.PatchProductRequest{Active: &off})
	require.NoError(t, err)

	total, items, err := env.catalog.List(ctx, transport.ProductQuery{Q: "RED"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].ID)

	_, err = env.catalog.GetVisible(ctx, hidden.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := env.catalog.Get(ctx, hidden.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestCatalog_SearchUsesIndexAndFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.product(t, "Alpha", "1.00")
	b := env.product(t, "Beta", "1.00")

	_, items, err := env.catalog.Search(ctx, "alp", 0, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	idx := &fakeIndex{hits: []uint{b.ID, a.ID, 999}}
	env.catalog.Index = idx
	total, items, err := env.catalog.Search(ctx, "anything", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)

	idx.err = errors.New("es down")
	_, items, err = env.catalog.Search(ctx, "beta", 0, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
}

func TestCatalog_DeleteKeepsOrderLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	idx := &fakeIndex{}
	env.catalog.Index = idx
	u := env.user(t, "ann", models.RoleUser)
	p := env.product(t, "Gone", "4.00")

	order, err := env.orders.PlaceOrder(ctx, u.ID, transport.CreateOrderRequest{Items: []transport.CreateOrderItem{{Product: p.ID, Quantity: intp(2)}}})
	require.NoError(t, err)

	require.NoError(t, env.catalog.Delete(ctx, p.ID))
	assert.Equal(t, []uint{p.ID}, idx.deleted)
	assert.ErrorIs(t, env.catalog.Delete(ctx, p.ID), ErrNotFound)

	reloaded, err := env.orders.Get(ctx, u.Identity(), order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Nil(t, reloaded.Items[0].Product)
	assert.True(t, dec("8.00").Equal(reloaded.Total))
}
