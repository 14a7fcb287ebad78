package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType описывает тип скидки купона или акции.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon представляет купон, вводимый покупателем при оформлении заказа.
type Coupon struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Code        string           `json:"code" db:"code"`
	Type        DiscountType     `json:"type" db:"type"`
	Value       decimal.Decimal  `json:"value" db:"value"`
	MaxUses     int              `json:"max_uses" db:"max_uses"`
	UsedCount   int              `json:"used_count" db:"used_count"`
	ExpiryDate  time.Time        `json:"expiry_date" db:"expiry_date"`
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty" db:"min_purchase"`
	IsActive    bool             `json:"is_active" db:"is_active"`
	Description string           `json:"description" db:"description"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// CreateCouponRequest описывает запрос на создание купона.
type CreateCouponRequest struct {
	Code        string           `json:"code"`
	Type        DiscountType     `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MaxUses     int              `json:"max_uses,omitempty"` // 0 = безлимит
	ExpiryDate  time.Time        `json:"expiry_date"`
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
	IsActive    bool             `json:"is_active"`
	Description string           `json:"description,omitempty"`
}

// UpdateCouponRequest описывает запрос на обновление купона.
type UpdateCouponRequest struct {
	Type        DiscountType     `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MaxUses     int              `json:"max_uses,omitempty"`
	ExpiryDate  time.Time        `json:"expiry_date"`
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
	IsActive    bool             `json:"is_active"`
	Description string           `json:"description,omitempty"`
}

// ToggleCouponRequest описывает запрос на включение/выключение купона.
type ToggleCouponRequest struct {
	IsActive bool `json:"is_active"`
}

// CouponStats описывает сводку по купонам для панели администратора.
type CouponStats struct {
	Total      int             `json:"total"`
	Active     int             `json:"active"`
	Expired    int             `json:"expired"`
	TotalUsed  int             `json:"total_used"`
	TotalSaved decimal.Decimal `json:"total_saved"`
}
