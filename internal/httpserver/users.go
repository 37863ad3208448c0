package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/util"
)

// UserHTTP serves the admin user management endpoints.
type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return serviceError(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserList(users))
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "create_user_error", err)
	}

	user, err := h.Svc.Create(ctx, req)
	if err != nil {
		return serviceError(l, "create_user_error", err)
	}

	l.Info("create_user_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(user))
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "get_user_error", c.Param("id"))
	}

	user, err := h.Svc.Get(ctx, id)
	if err != nil {
		return serviceError(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *UserHTTP) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.patch")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "patch_user_error", c.Param("id"))
	}

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "patch_user_error", err)
	}

	user, err := h.Svc.Patch(ctx, id, req)
	if err != nil {
		return serviceError(l, "patch_user_error", err)
	}

	l.Info("patch_user_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "delete_user_error", c.Param("id"))
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return serviceError(l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}
