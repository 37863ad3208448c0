package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func (r *GormRepo) ListWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items := make([]models.WishlistItem, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddWishlistItem reports created=false when the pair was already there.
func (r *GormRepo) AddWishlistItem(ctx context.Context, userID, productID uint) (*models.WishlistItem, bool, error) {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	res := r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0

	var stored models.WishlistItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&stored).Error; err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

func (r *GormRepo) DeleteWishlistProduct(ctx context.Context, userID, productID uint) error {
	return notFoundIfNone(r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}))
}
