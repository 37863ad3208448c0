package repo

import (
	"context"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, tok *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Create(tok).Error)
}

func (r *GormRepo) FindRefreshByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var tok models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", hash).First(&tok).Error; err != nil {
		return nil, err
	}
	return &tok, nil
}

// RevokeRefresh marks a live token revoked. Already revoked or unknown tokens
// yield gorm.ErrRecordNotFound.
func (r *GormRepo) RevokeRefresh(ctx context.Context, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", hash, false).
		Update("revoked", true)
	return notFoundIfNone(res)
}
