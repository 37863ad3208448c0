package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/util"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get")

	who, _ := authmw.CurrentUser(c)
	items, err := h.Svc.List(ctx, who.ID)
	if err != nil {
		return serviceError(l, "get_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewWishlist(items))
}

// AddToWishlist answers 201 for a new entry and 200 when it already existed.
func (h *WishlistHTTP) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	var req transport.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "add_wishlist_error", err)
	}

	who, _ := authmw.CurrentUser(c)
	item, created, err := h.Svc.Add(ctx, who.ID, req.Product)
	if err != nil {
		return serviceError(l, "add_wishlist_error", err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	l.Info("add_wishlist_success", "user_id", who.ID, "product_id", item.ProductID, "created", created)
	return c.JSON(status, transport.NewWishlistItemResponse(item))
}

func (h *WishlistHTTP) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	var req transport.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "delete_wishlist_error", err)
	}
	if req.Product == 0 {
		req.Product, _ = util.ParseID(c.QueryParam("product"))
	}

	who, _ := authmw.CurrentUser(c)
	if err := h.Svc.Remove(ctx, who.ID, req.Product); err != nil {
		return serviceError(l, "delete_wishlist_error", err)
	}

	l.Info("delete_wishlist_success", "user_id", who.ID, "product_id", req.Product)
	return c.NoContent(http.StatusNoContent)
}
