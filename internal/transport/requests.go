package transport

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	IsBlocked bool   `json:"isBlocked"`
}

type PatchUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	IsBlocked *bool   `json:"isBlocked"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Brand       string           `json:"brand"`
	Active      *bool            `json:"active"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand"`
	Active      *bool            `json:"active"`
}

type ProductQuery struct {
	Category string
	Q        string
	Offset   int
	Limit    int
}

type AddCartItemRequest struct {
	Product  uint `json:"product"`
	Quantity *int `json:"quantity"`
}

// UpdateCartItemRequest addresses the line by id, or by product when id is
// zero.
type UpdateCartItemRequest struct {
	ID       uint `json:"id"`
	Product  uint `json:"product"`
	Quantity *int `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ID      uint `json:"id"`
	Product uint `json:"product"`
}

type WishlistRequest struct {
	Product uint `json:"product"`
}

type CreateOrderItem struct {
	Product  uint `json:"product"`
	Quantity *int `json:"quantity"`
}

type CreateOrderRequest struct {
	PaymentMethod string            `json:"payment_method"`
	Items         []CreateOrderItem `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
