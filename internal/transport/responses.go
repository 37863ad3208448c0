package transport

import (
	"time"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsBlocked bool   `json:"isBlocked"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		IsBlocked: u.IsBlocked,
	}
}

func NewUserList(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

type LoginResponse struct {
	Refresh string       `json:"refresh"`
	Access  string       `json:"access"`
	User    UserResponse `json:"user"`
}

type TokenPairResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type AccessResponse struct {
	Access string `json:"access"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

// Money is always rendered with two decimals, as a string.
type ProductResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Image:       p.Image,
		Category:    p.Category,
		Description: p.Description,
		Brand:       p.Brand,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProductList(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Data []ProductResponse `json:"data"`
	Meta PageMeta          `json:"meta"`
}

type CartItemResponse struct {
	ID            uint            `json:"id"`
	Product       uint            `json:"product"`
	ProductDetail ProductResponse `json:"product_detail"`
	Quantity      uint            `json:"quantity"`
}

func NewCartItemResponse(it *models.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:            it.ID,
		Product:       it.ProductID,
		ProductDetail: NewProductResponse(&it.Product),
		Quantity:      it.Quantity,
	}
}

func NewCartList(items []models.CartItem) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCartItemResponse(&items[i]))
	}
	return out
}

type WishlistItemResponse struct {
	ID            uint            `json:"id"`
	Product       uint            `json:"product"`
	ProductDetail ProductResponse `json:"product_detail"`
}

func NewWishlistItemResponse(it *models.WishlistItem) WishlistItemResponse {
	return WishlistItemResponse{
		ID:            it.ID,
		Product:       it.ProductID,
		ProductDetail: NewProductResponse(&it.Product),
	}
}

func NewWishlist(items []models.WishlistItem) []WishlistItemResponse {
	out := make([]WishlistItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewWishlistItemResponse(&items[i]))
	}
	return out
}

// OrderItemResponse carries the price paid. ProductDetail reflects the
// catalog today and is null once the product is gone.
type OrderItemResponse struct {
	ID            uint             `json:"id"`
	Product       *uint            `json:"product"`
	ProductDetail *ProductResponse `json:"product_detail"`
	Quantity      uint             `json:"quantity"`
	Price         string           `json:"price"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	OrderID       string              `json:"order_id"`
	User          uint                `json:"user"`
	Total         string              `json:"total"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Date          time.Time           `json:"date"`
	OrderItems    []OrderItemResponse `json:"order_items"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		line := OrderItemResponse{
			ID:       it.ID,
			Product:  it.ProductID,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
		}
		if it.Product != nil {
			pr := NewProductResponse(it.Product)
			line.ProductDetail = &pr
		}
		items = append(items, line)
	}
	return OrderResponse{
		ID:            o.ID,
		OrderID:       o.OrderID,
		User:          o.UserID,
		Total:         o.Total.StringFixed(2),
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Date:          o.CreatedAt,
		OrderItems:    items,
	}
}

func NewOrderList(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
