package handlers

import (
	"context"
	"time"

	"rozes-gallery/internal/cart"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ----- Catalog -----

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, category string, status *models.ProductStatus, limit, offset int) ([]*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

// ----- Coupons -----

type CouponService interface {
	CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error)
	GetCoupon(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListCoupons(ctx context.Context, limit, offset int) ([]*models.Coupon, error)
	UpdateCoupon(ctx context.Context, couponID uuid.UUID, req *models.UpdateCouponRequest) (*models.Coupon, error)
	ToggleCoupon(ctx context.Context, couponID uuid.UUID, isActive bool) error
	DeleteCoupon(ctx context.Context, couponID uuid.UUID) error
	GetStats(ctx context.Context) (*models.CouponStats, error)
}

// ----- Offers -----

type OfferService interface {
	CreateOffer(ctx context.Context, req *models.CreateOfferRequest) (*models.Offer, error)
	GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	ListOffers(ctx context.Context, limit, offset int) ([]*models.Offer, error)
	ListActive(ctx context.Context, now time.Time) ([]*models.Offer, error)
	UpdateOffer(ctx context.Context, offerID uuid.UUID, req *models.UpdateOfferRequest) (*models.Offer, error)
	ToggleOffer(ctx context.Context, offerID uuid.UUID, isActive bool) error
	DeleteOffer(ctx context.Context, offerID uuid.UUID) error
}

// ----- Orders -----

type OrderService interface {
	Checkout(ctx context.Context, req *models.CheckoutRequest, items []cart.LineItem) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrders(ctx context.Context, status *models.OrderStatus, limit, offset int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus models.OrderStatus) (models.OrderStatus, error)
}

// ----- Events -----

type EventProducer interface {
	PublishOrderCreated(order *models.Order) error
	PublishOrderStatusChanged(orderID uuid.UUID, oldStatus, newStatus models.OrderStatus) error
	PublishCouponRedeemed(code string, orderID uuid.UUID, discount decimal.Decimal) error
	PublishOfferApplied(offerID uuid.UUID, sessionID string, itemCount int) error
}

// ----- Income -----

type IncomeProvider interface {
	GetReport(ctx context.Context, now time.Time) (*models.IncomeReport, error)
}

// ----- Carts -----

type CartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Save(ctx context.Context, sessionID string, c *cart.Cart)
	Clear(ctx context.Context, sessionID string) error
}

// ----- Pricing -----

type TotalsCalculator interface {
	ComputeTotals(items []cart.LineItem, discountFraction decimal.Decimal) pricing.Totals
	FreeShippingRemainder(subtotal decimal.Decimal) decimal.Decimal
}
