package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "register_error", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return serviceError(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(user))
}

func (h *AuthHTTP) setSessionCookies(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.Access, "/", pair.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.Refresh, "/", pair.RefreshExp))
}

func (h *AuthHTTP) login(c echo.Context, event string) (*service.LoginResult, error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth."+event)

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return nil, invalidBody(l, event+"_error", err)
	}

	res, err := h.Svc.Login(ctx, req.Identifier(), req.Password)
	if err != nil {
		return nil, serviceError(l, event+"_error", err)
	}

	h.setSessionCookies(c, &res.TokenPair)
	l.Info(event+"_success", "user_id", res.User.ID)
	return res, nil
}

// Login answers with both tokens and the user profile.
func (h *AuthHTTP) Login(c echo.Context) error {
	res, err := h.login(c, "login")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Refresh: res.Refresh,
		Access:  res.Access,
		User:    transport.NewUserResponse(res.User),
	})
}

// ObtainPair is the bare token endpoint: same credentials, tokens only.
func (h *AuthHTTP) ObtainPair(c echo.Context) error {
	res, err := h.login(c, "token_obtain")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.TokenPairResponse{
		Refresh: res.Refresh,
		Access:  res.Access,
	})
}

// refreshFromRequest reads the refresh token from the body and falls back to
// the session cookie.
func refreshFromRequest(c echo.Context) (string, error) {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	if req.Refresh != "" {
		return req.Refresh, nil
	}
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		return ck.Value, nil
	}
	return "", nil
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	raw, err := refreshFromRequest(c)
	if err != nil {
		return invalidBody(l, "refresh_error", err)
	}
	if raw == "" {
		l.Warn("refresh_error", "status", http.StatusBadRequest, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"detail":  "Refresh token required",
			"refresh": []string{"This field is required."},
		})
	}

	access, exp, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			l.Warn("refresh_error", "status", http.StatusUnauthorized, "reason", "refresh token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid or expired")
		}
		return serviceError(l, "refresh_error", err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, access, "/", exp))
	l.Info("refresh_success")
	return c.JSON(http.StatusOK, transport.AccessResponse{Access: access})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	who, ok := authmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
	}

	raw, err := refreshFromRequest(c)
	if err != nil {
		return invalidBody(l, "logout_error", err)
	}

	if err := h.Svc.Logout(ctx, who.ID, raw); err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			l.Warn("logout_error", "status", http.StatusBadRequest, "reason", "invalid refresh token", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid token.")
		}
		return serviceError(l, "logout_error", err)
	}

	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
	l.Info("logout_success", "user_id", who.ID)
	return c.JSON(http.StatusOK, transport.DetailResponse{Detail: "Successfully logged out."})
}
