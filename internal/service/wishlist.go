package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
)

type WishlistService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	return s.Repo.ListWishlist(ctx, userID)
}

// Add is create-if-missing. created reports whether a new row was written.
func (s *WishlistService) Add(ctx context.Context, userID, productID uint) (*models.WishlistItem, bool, error) {
	if productID == 0 {
		return nil, false, fieldError("product", "This field is required.")
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, false, err
	}
	item, created, err := s.Repo.AddWishlistItem(ctx, userID, productID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.emit(ctx, "add_wishlist_item", userID, productID)
	}
	return item, created, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) error {
	if productID == 0 {
		return fmt.Errorf("%w: product id required", ErrValidation)
	}
	if err := s.Repo.DeleteWishlistProduct(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: wishlist item for product %d", ErrNotFound, productID)
		}
		return err
	}
	s.emit(ctx, "wishlist_item_deleted", userID, productID)
	return nil
}

func (s *WishlistService) emit(ctx context.Context, typ string, userID, productID uint) {
	events.Emit(ctx, s.Events, events.TopicWishlist, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":      typ,
		"userID":    userID,
		"productID": productID,
	})
}
