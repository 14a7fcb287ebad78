package pricing

import (
	"time"

	"rozes-gallery/internal/models"

	"github.com/shopspring/decimal"
)

// CouponFailure перечисляет причины отказа в применении купона.
type CouponFailure string

const (
	CouponNotFound      CouponFailure = "not_found"
	CouponInactive      CouponFailure = "inactive"
	CouponExpired       CouponFailure = "expired"
	CouponBelowMinimum  CouponFailure = "below_minimum"
	CouponUsageExceeded CouponFailure = "usage_exceeded"
	CouponNotApplicable CouponFailure = "not_applicable"
)

// CouponError — ошибка валидации купона. Все причины восстановимы:
// состояние корзины не меняется, купон не применяется.
type CouponError struct {
	Reason CouponFailure
	Msg    string
}

func (e *CouponError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	return string(e.Reason)
}

// AppliedDiscount — результат успешной валидации: нормализованная доля
// скидки от суммы корзины. Для фиксированной скидки доля равна
// value/subtotal, для процентной — value/100.
type AppliedDiscount struct {
	Code     string          `json:"code"`
	Fraction decimal.Decimal `json:"fraction"`
}

var oneHundred = decimal.NewFromInt(100)

// ValidateCoupon проверяет купон против суммы корзины. Проверки выполняются
// по порядку, первая неудачная определяет причину отказа:
// существование, активность, срок действия, минимальная сумма, лимит
// использований. Валидация идемпотентна и не меняет купон.
func ValidateCoupon(coupon *models.Coupon, subtotal decimal.Decimal, now time.Time) (AppliedDiscount, error) {
	if coupon == nil {
		return AppliedDiscount{}, &CouponError{Reason: CouponNotFound, Msg: "coupon not found"}
	}

	if !coupon.IsActive {
		return AppliedDiscount{}, &CouponError{Reason: CouponInactive, Msg: "coupon is inactive"}
	}

	if !coupon.ExpiryDate.After(now) {
		return AppliedDiscount{}, &CouponError{Reason: CouponExpired, Msg: "coupon has expired"}
	}

	if coupon.MinPurchase != nil && subtotal.LessThan(*coupon.MinPurchase) {
		return AppliedDiscount{}, &CouponError{Reason: CouponBelowMinimum, Msg: "minimum purchase amount not reached"}
	}

	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return AppliedDiscount{}, &CouponError{Reason: CouponUsageExceeded, Msg: "coupon usage limit reached"}
	}

	if subtotal.LessThanOrEqual(decimal.Zero) {
		return AppliedDiscount{}, &CouponError{Reason: CouponNotApplicable, Msg: "coupon is not applicable to an empty cart"}
	}

	var fraction decimal.Decimal
	switch coupon.Type {
	case models.DiscountTypePercentage:
		fraction = coupon.Value.Div(oneHundred)
	case models.DiscountTypeFixed:
		fraction = coupon.Value.Div(subtotal)
	default:
		return AppliedDiscount{}, &CouponError{Reason: CouponNotApplicable, Msg: "unknown discount type"}
	}

	return AppliedDiscount{Code: coupon.Code, Fraction: fraction}, nil
}
