package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

// CreateOrder inserts the order shell only. A clashing order_id comes back
// wrapped in ErrDuplicate.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(order).Error)
}

func (r *GormRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

// RecomputeOrderTotal sums the persisted lines and stores the result. It is
// the only writer of orders.total.
func (r *GormRepo) RecomputeOrderTotal(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	var items []models.OrderItem
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}

	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("total", total)
	if err := notFoundIfNone(res); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func withLines(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product")
}

// ListOrders returns newest first. A nil userID lists every order.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uint) ([]models.Order, error) {
	q := withLines(r.DB.WithContext(ctx).Model(&models.Order{}))
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	orders := make([]models.Order, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder loads one order with its lines. A non-nil userID restricts the
// lookup to that owner.
func (r *GormRepo) GetOrder(ctx context.Context, id uint, userID *uint) (*models.Order, error) {
	q := withLines(r.DB.WithContext(ctx)).Where("id = ?", id)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var order models.Order
	if err := q.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return notFoundIfNone(r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status))
}
