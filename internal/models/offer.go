package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer представляет акцию, автоматически применяемую к набору товаров.
// В отличие от купона, акция не вводится покупателем.
type Offer struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Type        DiscountType    `json:"type" db:"type"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	Products    []string        `json:"products" db:"products"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	StartDate   time.Time       `json:"start_date" db:"start_date"`
	EndDate     time.Time       `json:"end_date" db:"end_date"`
	Image       string          `json:"image" db:"image"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateOfferRequest описывает запрос на создание акции.
type CreateOfferRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        DiscountType    `json:"type"`
	Discount    decimal.Decimal `json:"discount"`
	Products    []string        `json:"products"`
	IsActive    bool            `json:"is_active"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Image       string          `json:"image,omitempty"`
}

// UpdateOfferRequest описывает запрос на обновление акции.
type UpdateOfferRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        DiscountType    `json:"type"`
	Discount    decimal.Decimal `json:"discount"`
	Products    []string        `json:"products"`
	IsActive    bool            `json:"is_active"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Image       string          `json:"image,omitempty"`
}

// ToggleOfferRequest описывает запрос на включение/выключение акции.
type ToggleOfferRequest struct {
	IsActive bool `json:"is_active"`
}
