package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order представляет заказ. Позиции заказа — снимок корзины на момент
// оформления: последующие правки товара не меняют исторические заказы.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	Email           string          `json:"email" db:"email"`
	Phone           string          `json:"phone" db:"phone"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount        decimal.Decimal `json:"discount" db:"discount"`
	Shipping        decimal.Decimal `json:"shipping" db:"shipping"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	Total           decimal.Decimal `json:"total" db:"total"`
	CouponCode      *string         `json:"coupon_code,omitempty" db:"coupon_code"`
	Status          OrderStatus     `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem представляет позицию заказа (снимок товара)
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Title     string          `json:"title" db:"title"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// CheckoutRequest представляет данные формы оформления заказа
type CheckoutRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	ZipCode    string  `json:"zip_code"`
	CouponCode *string `json:"coupon_code,omitempty"`
}

// CheckoutResponse возвращает созданный заказ и ссылку для передачи в мессенджер
type CheckoutResponse struct {
	Order       *Order `json:"order"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// UpdateOrderStatusRequest представляет запрос на обновление статуса заказа
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}
