package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	return serveWith(t, Config{}, req)
}

func serveWith(t *testing.T, cfg Config, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Use(Middleware(cfg))
	e.Any("/cart", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerAndAnonymousRequestsPass(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	assert.Equal(t, http.StatusOK, serve(t, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/cart", nil)
	assert.Equal(t, http.StatusOK, serve(t, req).Code)
}

func TestCookieSessionNeedsMatchingToken(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/cart", nil)
	get.AddCookie(&http.Cookie{Name: "accessToken", Value: "session"})
	rec := serve(t, get)
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	post := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
		req.Header.Set("Origin", "http://example.com")
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "session"})
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		return serve(t, req).Code
	}

	assert.Equal(t, http.StatusForbidden, post(""))
	assert.Equal(t, http.StatusForbidden, post("wrong"))
	assert.Equal(t, http.StatusOK, post(token))
}

func TestCrossOriginWriteRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", "t")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "session"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
	assert.Equal(t, http.StatusForbidden, serve(t, req).Code)
}

func TestSameOriginCheckIsOptOut(t *testing.T) {
	build := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
		req.Header.Set("Origin", "http://evil.test")
		req.Header.Set("X-CSRF-Token", "t")
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "session"})
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
		return req
	}

	assert.Equal(t, http.StatusForbidden, serveWith(t, DefaultConfig(), build()).Code)
	assert.Equal(t, http.StatusOK, serveWith(t, Config{SkipSameOrigin: true}, build()).Code)
}
