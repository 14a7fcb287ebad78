package pricing

import (
	"rozes-gallery/internal/cart"
	"rozes-gallery/internal/models"

	"github.com/shopspring/decimal"
)

// ApplyOffer строит позиции корзины для товаров, попадающих под акцию.
// Для каждого товара из offer.Products вычисляется цена со скидкой:
// процентная — price*(1-d/100), фиксированная — max(price-d, 0).
// Исходная цена сохраняется в OriginalPrice. Каждая позиция получает
// количество 1; накопление количества — семантика добавления в корзину.
// Проверка окна действия акции остается на вызывающей стороне.
func ApplyOffer(offer *models.Offer, products []models.Product) []cart.LineItem {
	if offer == nil || len(offer.Products) == 0 {
		return nil
	}

	targets := make(map[string]struct{}, len(offer.Products))
	for _, id := range offer.Products {
		targets[id] = struct{}{}
	}

	var items []cart.LineItem
	for _, p := range products {
		if _, ok := targets[p.ID.String()]; !ok {
			continue
		}

		discounted := discountedPrice(offer.Type, offer.Discount, p.Price)
		original := p.Price

		items = append(items, cart.LineItem{
			ProductID:     p.ID,
			Title:         p.Title,
			Price:         discounted,
			OriginalPrice: &original,
			Image:         p.Image,
			Quantity:      1,
			InStock:       p.Stock > 0,
		})
	}

	return items
}

// discountedPrice считает цену единицы товара после скидки акции.
// Цена не может стать отрицательной.
func discountedPrice(discountType models.DiscountType, discount, price decimal.Decimal) decimal.Decimal {
	switch discountType {
	case models.DiscountTypePercentage:
		factor := decimal.NewFromInt(1).Sub(discount.Div(oneHundred))
		return price.Mul(factor).Round(2)
	case models.DiscountTypeFixed:
		result := price.Sub(discount)
		if result.IsNegative() {
			return decimal.Zero
		}
		return result.Round(2)
	default:
		return price
	}
}
