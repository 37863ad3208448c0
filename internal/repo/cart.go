package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func (r *GormRepo) ListCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertCartItem inserts the line or adds quantity to the existing one in a
// single statement, so concurrent adds for the same product never lose updates.
func (r *GormRepo) UpsertCartItem(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return nil, err
	}
	return r.cartItemBy(ctx, "user_id = ? AND product_id = ?", userID, productID)
}

func (r *GormRepo) GetCartItem(ctx context.Context, userID, id uint) (*models.CartItem, error) {
	return r.cartItemBy(ctx, "id = ? AND user_id = ?", id, userID)
}

func (r *GormRepo) cartItemBy(ctx context.Context, query string, args ...any) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").Where(query, args...).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) UpdateCartQuantity(ctx context.Context, userID, id, quantity uint) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("quantity", quantity)
	if err := notFoundIfNone(res); err != nil {
		return nil, err
	}
	return r.GetCartItem(ctx, userID, id)
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, id uint) error {
	return notFoundIfNone(r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{}))
}

func (r *GormRepo) DeleteCartProducts(ctx context.Context, userID uint, productIDs ...uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) FindCartItemByProduct(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	return r.cartItemBy(ctx, "user_id = ? AND product_id = ?", userID, productID)
}
