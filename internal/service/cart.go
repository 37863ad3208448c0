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
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.ListCart(ctx, userID)
}

func quantityOrDefault(q *int) (uint, error) {
	if q == nil {
		return 1, nil
	}
	if *q < 1 {
		return 0, fieldError("quantity", "Ensure this value is greater than or equal to 1.")
	}
	return uint(*q), nil
}

// Add creates the line or merges quantity into the existing one.
func (s *CartService) Add(ctx context.Context, userID uint, req transport.AddCartItemRequest) (*models.CartItem, error) {
	if req.Product == 0 {
		return nil, fieldError("product", "This field is required.")
	}
	qty, err := quantityOrDefault(req.Quantity)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetProduct(ctx, req.Product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, req.Product)
		}
		return nil, err
	}

	item, err := s.Repo.UpsertCartItem(ctx, userID, req.Product, qty)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "add_cart_item", userID, item.ProductID, item.Quantity)
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uint, req transport.UpdateCartItemRequest) (*models.CartItem, error) {
	if req.ID == 0 && req.Product == 0 {
		return nil, fmt.Errorf("%w: Provide id or product id", ErrValidation)
	}
	if req.Quantity == nil {
		return nil, fieldError("quantity", "This field is required.")
	}
	qty, err := quantityOrDefault(req.Quantity)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == 0 {
		item, err := s.Repo.FindCartItemByProduct(ctx, userID, req.Product)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: cart item for product %d", ErrNotFound, req.Product)
			}
			return nil, err
		}
		id = item.ID
	}

	item, err := s.Repo.UpdateCartQuantity(ctx, userID, id, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart item %d", ErrNotFound, id)
		}
		return nil, err
	}

	s.emit(ctx, "update_cart_item", userID, item.ProductID, item.Quantity)
	return item, nil
}

// Remove deletes by line id or by product. Removing by product is idempotent.
func (s *CartService) Remove(ctx context.Context, userID uint, req transport.RemoveCartItemRequest) error {
	switch {
	case req.ID != 0:
		item, err := s.Repo.GetCartItem(ctx, userID, req.ID)
		if err == nil {
			err = s.Repo.DeleteCartItem(ctx, userID, req.ID)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cart item %d", ErrNotFound, req.ID)
			}
			return err
		}
		s.emit(ctx, "cart_item_deleted", userID, item.ProductID, 0)
		return nil
	case req.Product != 0:
		n, err := s.Repo.DeleteCartProducts(ctx, userID, req.Product)
		if err != nil {
			return err
		}
		if n > 0 {
			s.emit(ctx, "cart_item_deleted", userID, req.Product, 0)
		}
		return nil
	default:
		return fmt.Errorf("%w: Provide id or product id", ErrValidation)
	}
}

func (s *CartService) emit(ctx context.Context, typ string, userID, productID, quantity uint) {
	events.Emit(ctx, s.Events, events.TopicCart, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":      typ,
		"userID":    userID,
		"productID": productID,
		"quantity":  quantity,
	})
}
