package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

const defaultOrderIDAttempts = 5

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher

	// NewOrderID defaults to the package NewOrderID.
	NewOrderID  func() string
	MaxAttempts int
	Placed      prometheus.Counter
}

type orderLine struct {
	productID uint
	quantity  uint
}

func (s *OrderService) newOrderID() string {
	if s.NewOrderID != nil {
		return s.NewOrderID()
	}
	return NewOrderID()
}

func (s *OrderService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return defaultOrderIDAttempts
}

func validateOrder(req transport.CreateOrderRequest) (models.PaymentMethod, []orderLine, error) {
	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	if method == "" {
		method = models.PaymentCOD
	}
	if !method.Valid() {
		return "", nil, fieldError("payment_method", fmt.Sprintf("%q is not a valid choice.", req.PaymentMethod))
	}
	if len(req.Items) == 0 {
		return "", nil, fieldError("items", "At least one item is required.")
	}

	lines := make([]orderLine, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Product == 0 {
			return "", nil, fieldError("items", "Each item needs a product.")
		}
		if it.Quantity == nil {
			return "", nil, fieldError("items", "This field is required.")
		}
		if *it.Quantity < 1 {
			return "", nil, fieldError("items", "Ensure quantity is greater than or equal to 1.")
		}
		qty := uint(*it.Quantity)
		lines = append(lines, orderLine{productID: it.Product, quantity: qty})
	}
	return method, lines, nil
}

// PlaceOrder turns the requested lines into an order in one transaction:
// shell, lines at current prices, total, and removal of the ordered products
// from the user's cart. An order id collision restarts the transaction with
// a new id.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	method, lines, err := validateOrder(req)
	if err != nil {
		return nil, err
	}

	var orderPK uint
	for attempt := 1; ; attempt++ {
		orderPK, err = s.placeOnce(ctx, userID, method, lines)
		if err == nil {
			break
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
		l.Warn("order_id_collision", "attempt", attempt)
		if attempt >= s.maxAttempts() {
			return nil, fmt.Errorf("%w: could not allocate a unique order id", ErrConflict)
		}
	}

	order, err := s.Repo.GetOrder(ctx, orderPK, nil)
	if err != nil {
		return nil, err
	}

	if s.Placed != nil {
		s.Placed.Inc()
	}
	s.emitCreated(ctx, order)
	l.Info("place_order_success", "order_id", order.OrderID, "total", order.Total.StringFixed(2))
	return order, nil
}

func (s *OrderService) placeOnce(ctx context.Context, userID uint, method models.PaymentMethod, lines []orderLine) (uint, error) {
	var orderPK uint
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		prices := make(map[uint]decimal.Decimal, len(lines))
		for _, ln := range lines {
			if _, ok := prices[ln.productID]; ok {
				continue
			}
			p, err := tx.GetProduct(ctx, ln.productID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrNotFound, ln.productID)
				}
				return err
			}
			prices[ln.productID] = p.Price
		}

		order := &models.Order{
			OrderID:       s.newOrderID(),
			UserID:        userID,
			Total:         decimal.Zero,
			Status:        models.OrderStatusProcessing,
			PaymentMethod: method,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(lines))
		productIDs := make([]uint, 0, len(lines))
		for _, ln := range lines {
			pid := ln.productID
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: &pid,
				Quantity:  ln.quantity,
				Price:     prices[pid],
			})
			productIDs = append(productIDs, pid)
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return err
		}

		if _, err := tx.RecomputeOrderTotal(ctx, order.ID); err != nil {
			return err
		}
		if _, err := tx.DeleteCartProducts(ctx, userID, productIDs...); err != nil {
			return err
		}

		orderPK = order.ID
		return nil
	})
	return orderPK, err
}

func (s *OrderService) emitCreated(ctx context.Context, o *models.Order) {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productID": it.ProductID,
			"quantity":  it.Quantity,
			"price":     it.Price.StringFixed(2),
		})
	}
	events.Emit(ctx, s.Events, events.TopicOrders, o.OrderID, map[string]any{
		"type":          "order_created",
		"orderID":       o.OrderID,
		"userID":        o.UserID,
		"total":         o.Total.StringFixed(2),
		"paymentMethod": o.PaymentMethod,
		"items":         items,
	})
}

func scope(who models.Identity) *uint {
	if who.IsAdmin() {
		return nil
	}
	id := who.ID
	return &id
}

// List returns the caller's orders, or every order for admins, newest first.
func (s *OrderService) List(ctx context.Context, who models.Identity) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, scope(who))
}

// Get hides other users' orders behind ErrNotFound.
func (s *OrderService) Get(ctx context.Context, who models.Identity, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id, scope(who))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return order, err
}

// UpdateStatus changes the status only. Lines and total are untouched.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	status := models.OrderStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return nil, fieldError("status", fmt.Sprintf("%q is not a valid choice.", raw))
	}
	if err := s.Repo.UpdateOrderStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}

	order, err := s.Repo.GetOrder(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.Events, events.TopicOrders, order.OrderID, map[string]any{
		"type":    "order_status_changed",
		"orderID": order.OrderID,
		"status":  order.Status,
	})
	return order, nil
}
