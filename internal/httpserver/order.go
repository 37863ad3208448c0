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

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	who, _ := authmw.CurrentUser(c)
	orders, err := h.Svc.List(ctx, who)
	if err != nil {
		return serviceError(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderList(orders))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "create_order_error", err)
	}

	who, _ := authmw.CurrentUser(c)
	order, err := h.Svc.PlaceOrder(ctx, who.ID, req)
	if err != nil {
		return serviceError(l, "create_order_error", err)
	}

	l.Info("create_order_success", "user_id", who.ID, "order_id", order.OrderID)
	return c.JSON(http.StatusCreated, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "get_order_error", c.Param("id"))
	}

	who, _ := authmw.CurrentUser(c)
	order, err := h.Svc.Get(ctx, who, id)
	if err != nil {
		return serviceError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "update_order_error", c.Param("id"))
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "update_order_error", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return serviceError(l, "update_order_error", err)
	}

	l.Info("update_order_success", "order_id", order.OrderID, "status", order.Status)
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}
