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

// CartHTTP addresses cart lines through the request body, not the path.
type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	who, _ := authmw.CurrentUser(c)
	items, err := h.Svc.List(ctx, who.ID)
	if err != nil {
		return serviceError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartList(items))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "add_cart_item_error", err)
	}

	who, _ := authmw.CurrentUser(c)
	item, err := h.Svc.Add(ctx, who.ID, req)
	if err != nil {
		return serviceError(l, "add_cart_item_error", err)
	}

	l.Info("add_cart_item_success", "user_id", who.ID, "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, transport.NewCartItemResponse(item))
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "update_cart_item_error", err)
	}

	who, _ := authmw.CurrentUser(c)
	item, err := h.Svc.UpdateQuantity(ctx, who.ID, req)
	if err != nil {
		return serviceError(l, "update_cart_item_error", err)
	}

	l.Info("update_cart_item_success", "user_id", who.ID, "item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.NewCartItemResponse(item))
}

// RemoveCartItem reads id or product from the body. Query parameters are
// accepted for clients that cannot send a DELETE body.
func (h *CartHTTP) RemoveCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	var req transport.RemoveCartItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "delete_cart_item_error", err)
	}
	if req.ID == 0 && req.Product == 0 {
		req.ID, _ = util.ParseID(c.QueryParam("id"))
		req.Product, _ = util.ParseID(c.QueryParam("product"))
	}

	who, _ := authmw.CurrentUser(c)
	if err := h.Svc.Remove(ctx, who.ID, req); err != nil {
		return serviceError(l, "delete_cart_item_error", err)
	}

	l.Info("delete_cart_item_success", "user_id", who.ID)
	return c.NoContent(http.StatusNoContent)
}
