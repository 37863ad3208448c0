package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/db/dbtest"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(dbtest.Open(t))
}

func seedUser(t *testing.T, r *repo.GormRepo, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, r *repo.GormRepo, name, price, category string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: category, Active: true}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestCreateUser_DuplicateIsErrDuplicate(t *testing.T) {
	r := newRepo(t)
	seedUser(t, r, "ann")

	err := r.CreateUser(context.Background(), &models.User{Username: "ann", Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser})
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestFindUserByLogin(t *testing.T) {
	r := newRepo(t)
	u := seedUser(t, r, "bob")
	ctx := context.Background()

	got, err := r.FindUserByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = r.FindUserByLogin(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListProducts_Filters(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Red Shirt", "10.00", "Apparel")
	seedProduct(t, r, "Blue Mug", "5.00", "kitchen")
	hidden := seedProduct(t, r, "Red Cap", "7.00", "apparel")
	hidden.Active = false
	require.NoError(t, r.SaveProduct(ctx, hidden))

	total, items, err := r.ListProducts(ctx, repo.ProductFilter{ActiveOnly: true, Category: "APPAREL"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Red Shirt", items[0].Name)

	_, items, err = r.ListProducts(ctx, repo.ProductFilter{ActiveOnly: true, Query: "mug"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Mug", items[0].Name)

	_, items, err = r.ListProducts(ctx, repo.ProductFilter{ActiveOnly: true, Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, items)

	total, items, err = r.ListProducts(ctx, repo.ProductFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Mug", items[0].Name)
}

func TestUpsertCartItem_ConcurrentAddsMerge(t *testing.T) {
	r := newRepo(t)
	u := seedUser(t, r, "carol")
	p := seedProduct(t, r, "Mug", "5.00", "kitchen")

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.UpsertCartItem(context.Background(), u.ID, p.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := r.ListCart(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, n, items[0].Quantity)
	assert.Equal(t, "Mug", items[0].Product.Name)
}

func TestCartItemOwnership(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "dave")
	other := seedUser(t, r, "erin")
	p := seedProduct(t, r, "Mug", "5.00", "kitchen")

	item, err := r.UpsertCartItem(ctx, owner.ID, p.ID, 2)
	require.NoError(t, err)

	_, err = r.UpdateCartQuantity(ctx, other.ID, item.ID, 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteCartItem(ctx, other.ID, item.ID), gorm.ErrRecordNotFound)

	updated, err := r.UpdateCartQuantity(ctx, owner.ID, item.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, updated.Quantity)

	require.NoError(t, r.DeleteCartItem(ctx, owner.ID, item.ID))
	items, err := r.ListCart(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddWishlistItem_Idempotent(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "fay")
	p := seedProduct(t, r, "Lamp", "20.00", "home")

	first, created, err := r.AddWishlistItem(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := r.AddWishlistItem(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	require.NoError(t, r.DeleteWishlistProduct(ctx, u.ID, p.ID))
	assert.ErrorIs(t, r.DeleteWishlistProduct(ctx, u.ID, p.ID), gorm.ErrRecordNotFound)
}

func TestOrderTotalsAndProductDelete(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "gus")
	a := seedProduct(t, r, "A", "10.00", "x")
	b := seedProduct(t, r, "B", "2.50", "x")

	order := &models.Order{OrderID: "ORD-0000000001", UserID: u.ID, Status: models.OrderStatusProcessing, PaymentMethod: models.PaymentCOD}
	require.NoError(t, r.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.CreateOrderItems(ctx, []models.OrderItem{
			{OrderID: order.ID, ProductID: &a.ID, Quantity: 2, Price: a.Price},
			{OrderID: order.ID, ProductID: &b.ID, Quantity: 2, Price: b.Price},
		}); err != nil {
			return err
		}
		_, err := tx.RecomputeOrderTotal(ctx, order.ID)
		return err
	}))

	got, err := r.GetOrder(ctx, order.ID, &u.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("25.00").Equal(got.Total), got.Total.String())
	require.Len(t, got.Items, 2)

	_, err = r.UpsertCartItem(ctx, u.ID, a.ID, 1)
	require.NoError(t, err)
	require.NoError(t, r.DeleteProduct(ctx, a.ID))

	got, err = r.GetOrder(ctx, order.ID, nil)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Nil(t, got.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("10.00").Equal(got.Items[0].Price))

	items, err := r.ListCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, r.DeleteProduct(ctx, a.ID), gorm.ErrRecordNotFound)
}

func TestCreateOrder_DuplicateOrderID(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "hal")

	first := &models.Order{OrderID: "ORD-AAAAAAAAAA", UserID: u.ID, Status: models.OrderStatusProcessing, PaymentMethod: models.PaymentCOD}
	require.NoError(t, r.CreateOrder(ctx, first))

	dup := &models.Order{OrderID: "ORD-AAAAAAAAAA", UserID: u.ID, Status: models.OrderStatusProcessing, PaymentMethod: models.PaymentCOD}
	err := r.CreateOrder(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repo.ErrDuplicate))
}

func TestDeleteUserCascades(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "ivy")
	p := seedProduct(t, r, "P", "1.00", "x")

	_, err := r.UpsertCartItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	_, _, err = r.AddWishlistItem(ctx, u.ID, p.ID)
	require.NoError(t, err)
	order := &models.Order{OrderID: "ORD-BBBBBBBBBB", UserID: u.ID, Status: models.OrderStatusProcessing, PaymentMethod: models.PaymentUPI}
	require.NoError(t, r.CreateOrder(ctx, order))
	require.NoError(t, r.CreateOrderItems(ctx, []models.OrderItem{{OrderID: order.ID, ProductID: &p.ID, Quantity: 1, Price: p.Price}}))

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	orders, err := r.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
	_, err = r.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
