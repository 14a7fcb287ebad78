package pricing

import (
	"testing"

	"rozes-gallery/internal/cart"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func lineItem(price string, quantity int) cart.LineItem {
	return cart.LineItem{
		ProductID: uuid.New(),
		Title:     "item",
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
	}
}

func TestComputeTotals_CouponScenario(t *testing.T) {
	// товар 50.00 x3, купон 10%: скидка 15.00, доставка 15, налог 10.80
	calc := NewCalculator(nil)
	items := []cart.LineItem{lineItem("50.00", 3)}

	totals := calc.ComputeTotals(items, decimal.NewFromFloat(0.1))

	if !totals.Subtotal.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected subtotal 150.00, got %s", totals.Subtotal)
	}
	if !totals.Discount.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected discount 15.00, got %s", totals.Discount)
	}
	if !totals.Shipping.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected shipping 15, got %s", totals.Shipping)
	}
	if !totals.Tax.Equal(decimal.RequireFromString("10.80")) {
		t.Fatalf("expected tax 10.80, got %s", totals.Tax)
	}
	if !totals.Total.Equal(decimal.RequireFromString("160.80")) {
		t.Fatalf("expected total 160.80, got %s", totals.Total)
	}
}

func TestComputeTotals_ShippingThreshold(t *testing.T) {
	calc := NewCalculator(nil)

	// ровно 200.00 — доставка платная
	at := calc.ComputeTotals([]cart.LineItem{lineItem("200.00", 1)}, decimal.Zero)
	if !at.Shipping.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected shipping 15 at threshold, got %s", at.Shipping)
	}

	// 200.01 — бесплатная
	over := calc.ComputeTotals([]cart.LineItem{lineItem("200.01", 1)}, decimal.Zero)
	if !over.Shipping.Equal(decimal.Zero) {
		t.Fatalf("expected free shipping over threshold, got %s", over.Shipping)
	}
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	calc := NewCalculator(nil)
	totals := calc.ComputeTotals(nil, decimal.Zero)
	if !totals.Subtotal.Equal(decimal.Zero) {
		t.Fatalf("expected zero subtotal, got %s", totals.Subtotal)
	}
	// пустая корзина все равно попадает под платную доставку
	if !totals.Shipping.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected flat shipping, got %s", totals.Shipping)
	}
}

func TestComputeTotals_Identity(t *testing.T) {
	calc := NewCalculator(nil)
	items := []cart.LineItem{
		lineItem("19.99", 2),
		lineItem("7.45", 3),
		lineItem("120.00", 1),
	}

	totals := calc.ComputeTotals(items, decimal.NewFromFloat(0.25))

	expected := totals.Subtotal.Sub(totals.Discount).Add(totals.Shipping).Add(totals.Tax)
	if !totals.Total.Equal(expected) {
		t.Fatalf("identity violated: total %s != %s", totals.Total, expected)
	}
}

func TestComputeTotals_NoDriftOnRepeatedItems(t *testing.T) {
	calc := NewCalculator(nil)

	// 0.10 тридцать раз — двоичный float дал бы дрейф
	var items []cart.LineItem
	for i := 0; i < 30; i++ {
		items = append(items, lineItem("0.10", 1))
	}

	totals := calc.ComputeTotals(items, decimal.Zero)
	if !totals.Subtotal.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected exact 3.00, got %s", totals.Subtotal)
	}
}

func TestFreeShippingRemainder(t *testing.T) {
	calc := NewCalculator(nil)

	remainder := calc.FreeShippingRemainder(decimal.NewFromInt(150))
	if !remainder.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected remainder 50, got %s", remainder)
	}

	if !calc.FreeShippingRemainder(decimal.NewFromInt(250)).Equal(decimal.Zero) {
		t.Fatalf("expected zero remainder over threshold")
	}
}
