package pricing

import (
	"rozes-gallery/internal/cart"
	"rozes-gallery/internal/config"

	"github.com/shopspring/decimal"
)

// Totals — разбивка итоговой суммы заказа.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculator считает итоговую сумму заказа по правилам магазина:
// бесплатная доставка при сумме строго выше порога, иначе фиксированная
// ставка; налог начисляется на сумму после скидки, до доставки.
type Calculator struct {
	freeShippingOver decimal.Decimal
	shippingFlatRate decimal.Decimal
	taxRate          decimal.Decimal
}

// NewCalculator создает калькулятор с тарифами из конфигурации.
func NewCalculator(cfg *config.PricingConfig) *Calculator {
	freeOver := decimal.NewFromInt(200)
	flatRate := decimal.NewFromInt(15)
	taxRate := decimal.NewFromFloat(0.08)

	if cfg != nil {
		freeOver = decimal.NewFromFloat(cfg.FreeShippingOver)
		flatRate = decimal.NewFromFloat(cfg.ShippingFlatRate)
		taxRate = decimal.NewFromFloat(cfg.TaxRate)
	}

	return &Calculator{
		freeShippingOver: freeOver,
		shippingFlatRate: flatRate,
		taxRate:          taxRate,
	}
}

// ComputeTotals считает разбивку по позициям корзины и доле скидки купона.
// Нулевая доля означает отсутствие купона. Все значения округлены до
// 2 знаков; тождество total = subtotal - discount + shipping + tax
// выполняется точно.
func (c *Calculator) ComputeTotals(items []cart.LineItem, discountFraction decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	discount := subtotal.Mul(discountFraction).Round(2)

	shipping := c.shippingFlatRate
	if subtotal.GreaterThan(c.freeShippingOver) {
		shipping = decimal.Zero
	}

	tax := subtotal.Sub(discount).Mul(c.taxRate).Round(2)

	total := subtotal.Sub(discount).Add(shipping).Add(tax)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    total,
	}
}

// FreeShippingRemainder возвращает, сколько не хватает до бесплатной
// доставки, либо ноль, если порог уже пройден.
func (c *Calculator) FreeShippingRemainder(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(c.freeShippingOver) {
		return decimal.Zero
	}
	return c.freeShippingOver.Sub(subtotal)
}
