package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Name         string    `gorm:"size:150"                   json:"name"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	Role         Role      `gorm:"size:10;not null"           json:"role"`
	IsBlocked    bool      `gorm:"not null"                   json:"isBlocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role, Blocked: u.IsBlocked}
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"             json:"id"`
	Token     string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"         json:"user_id"`
	JTI       string `gorm:"size:36;uniqueIndex;not null" json:"jti"`
	ExpiresAt int64  `gorm:"not null"               json:"expires_at"`
	Revoked   bool   `gorm:"not null"               json:"revoked"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string          `gorm:"size:200;not null"              json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"price"`
	Image       string          `gorm:"size:200"                       json:"image"`
	Category    string          `gorm:"size:80;index"                  json:"category"`
	Description string          `gorm:"type:text"                      json:"description"`
	Brand       string          `gorm:"size:100"                       json:"brand"`
	Active      bool            `gorm:"not null;index"                 json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                    json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"product_id"`
	Quantity  uint      `gorm:"not null;default:1;check:quantity>0"           json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

type Order struct {
	ID            uint            `gorm:"primaryKey"                  json:"id"`
	OrderID       string          `gorm:"size:50;uniqueIndex;not null" json:"order_id"`
	UserID        uint            `gorm:"index;not null"              json:"user"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"size:20;not null"            json:"status"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null"            json:"payment_method"`
	CreatedAt     time.Time       `gorm:"index"                       json:"date"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

// OrderItem is a single order line. Price is the product price captured when
// the order was placed and is never rewritten afterwards.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID *uint           `gorm:"index"                       json:"product"`
	Quantity  uint            `gorm:"not null;check:quantity>0"   json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
}

// LineTotal is price × quantity for the line.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
