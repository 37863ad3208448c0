package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/db/dbtest"
	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/hash"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
)

type testEnv struct {
	repo     *repo.GormRepo
	events   *events.Memory
	auth     *AuthService
	users    *UserService
	catalog  *CatalogService
	cart     *CartService
	wishlist *WishlistService
	orders   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(dbtest.Open(t))
	mem := &events.Memory{}
	return &testEnv{
		repo:   r,
		events: mem,
		auth: &AuthService{
			Repo:          r,
			Events:        mem,
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		},
		users:    &UserService{Repo: r, Events: mem},
		catalog:  &CatalogService{Repo: r, Events: mem},
		cart:     &CartService{Repo: r, Events: mem},
		wishlist: &WishlistService{Repo: r, Events: mem},
		orders:   &OrderService{Repo: r, Events: mem},
	}
}

func (e *testEnv) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	pw, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: pw, Role: role}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: "general", Active: true}
	require.NoError(t, e.repo.CreateProduct(context.Background(), p))
	return p
}

func intp(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
