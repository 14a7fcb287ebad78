package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus представляет статус товара в каталоге
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusLowStock ProductStatus = "low_stock"
)

// Product представляет товар магазина
type Product struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Title         string           `json:"title" db:"title"`
	Description   string           `json:"description" db:"description"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" db:"original_price"`
	Stock         int              `json:"stock" db:"stock"`
	Image         string           `json:"image" db:"image"`
	Images        []string         `json:"images" db:"images"`
	Category      string           `json:"category" db:"category"`
	Status        ProductStatus    `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`

	// Производные поля, не хранятся в базе
	InStock         bool `json:"in_stock"`
	IsOffer         bool `json:"is_offer"`
	DiscountPercent *int `json:"discount_percent,omitempty"`
}

// Derive заполняет производные поля по текущим цене и остатку.
func (p *Product) Derive() {
	p.InStock = p.Stock > 0
	p.IsOffer = p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
	if p.IsOffer {
		hundred := decimal.NewFromInt(100)
		percent := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(hundred).Round(0)
		v := int(percent.IntPart())
		p.DiscountPercent = &v
	} else {
		p.DiscountPercent = nil
	}
}

// CreateProductRequest представляет запрос на создание товара
type CreateProductRequest struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock"`
	Image         string           `json:"image"`
	Images        []string         `json:"images,omitempty"`
	Category      string           `json:"category"`
	Status        ProductStatus    `json:"status"`
}

// UpdateProductRequest представляет запрос на обновление товара
type UpdateProductRequest struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock"`
	Image         string           `json:"image"`
	Images        []string         `json:"images,omitempty"`
	Category      string           `json:"category"`
	Status        ProductStatus    `json:"status"`
}
