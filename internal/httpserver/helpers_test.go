package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/db/dbtest"
	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/hash"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/metrics"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/service"
)

type testServer struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	events *events.Memory
}

func newTestServer(t *testing.T, opts ...func(*Deps)) *testServer {
	t.Helper()

	r := repo.New(dbtest.Open(t))
	mem := &events.Memory{}
	reg := prometheus.NewRegistry()
	m := metrics.NewServerMetrics("test", reg)

	authSvc := &service.AuthService{
		Repo:          r,
		Events:        mem,
		AccessSecret:  []byte("http-access-secret"),
		RefreshSecret: []byte("http-refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
	d := &Deps{
		Auth:           &AuthHTTP{Svc: authSvc},
		Users:          &UserHTTP{Svc: &service.UserService{Repo: r, Events: mem}},
		Catalog:        &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: mem}},
		Cart:           &CartHTTP{Svc: &service.CartService{Repo: r, Events: mem}},
		Wishlist:       &WishlistHTTP{Svc: &service.WishlistService{Repo: r, Events: mem}},
		Orders:         &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: mem, Placed: m.Orders}},
		AuthMW:         authmw.NewAutoRefreshMiddleware(authSvc),
		Ready:          r.Ping,
		MetricsHandler: metrics.Handler(reg),
	}
	for _, o := range opts {
		o(d)
	}

	return &testServer{
		e:      New(logging.NewWithWriter(io.Discard, "error"), m, d),
		repo:   r,
		events: mem,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	pw, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: pw, Role: role}
	require.NoError(t, s.repo.CreateUser(context.Background(), u))
	return u
}

// login returns the access and refresh tokens for username.
func (s *testServer) login(t *testing.T, username string) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login/", "", map[string]string{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	return body["access"].(string), body["refresh"].(string)
}

func (s *testServer) product(t *testing.T, name, price string, active bool) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: "home", Active: active}
	require.NoError(t, s.repo.CreateProduct(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, rec)
	d, _ := body["detail"].(string)
	return d
}
