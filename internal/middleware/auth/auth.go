package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
)

const identityKey = "identity"

// Sessions resolves access tokens and mints new ones from refresh tokens.
// *service.AuthService satisfies it.
type Sessions interface {
	Identify(ctx context.Context, access string) (models.Identity, error)
	Refresh(ctx context.Context, refresh string) (string, time.Time, error)
}

type AutoRefreshMiddleware struct {
	Sessions Sessions
}

func NewAutoRefreshMiddleware(s Sessions) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{Sessions: s}
}

type ValidatorFunc func(who models.Identity) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(who models.Identity) error {
		if !who.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
		}
		return nil
	})
}

// accessToken prefers the Authorization header and falls back to the cookie.
func accessToken(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && tok != "" {
			return strings.TrimSpace(tok), false
		}
		return "", false
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return "", false
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		raw, fromCookie := accessToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
		}

		who, err := m.Sessions.Identify(ctx, raw)
		if err != nil && fromCookie && errors.Is(err, jwt.ErrTokenExpired) {
			who, err = m.refreshFromCookie(c)
		}
		if err != nil {
			return identifyError(c, err)
		}

		if validator != nil {
			if vErr := validator(who); vErr != nil {
				return vErr
			}
		}

		SetIdentity(c, who)
		return next(c)
	}
}

// refreshFromCookie swaps an expired cookie session for a fresh access token
// when the browser still holds a live refresh cookie.
func (m *AutoRefreshMiddleware) refreshFromCookie(c echo.Context) (models.Identity, error) {
	ctx := c.Request().Context()

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		return models.Identity{}, service.ErrUnauthorized
	}
	access, exp, err := m.Sessions.Refresh(ctx, ck.Value)
	if err != nil {
		return models.Identity{}, err
	}
	who, err := m.Sessions.Identify(ctx, access)
	if err != nil {
		return models.Identity{}, err
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, access, "/", exp))
	return who, nil
}

func identifyError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, "account is blocked")
	}
	if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrInvalidRefreshToken) {
		clearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "Given token not valid for any token type")
	}
	return err
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func SetIdentity(c echo.Context, who models.Identity) {
	c.Set(identityKey, who)
}

// CurrentUser returns the caller stored by RequireAuth or RequireAdmin.
func CurrentUser(c echo.Context) (models.Identity, bool) {
	who, ok := c.Get(identityKey).(models.Identity)
	return who, ok
}
