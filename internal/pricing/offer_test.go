package pricing

import (
	"testing"

	"rozes-gallery/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testProduct(price string, stock int) models.Product {
	return models.Product{
		ID:    uuid.New(),
		Title: "Rose Bouquet",
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func TestApplyOffer_Percentage(t *testing.T) {
	product := testProduct("80.00", 5)
	offer := &models.Offer{
		Type:     models.DiscountTypePercentage,
		Discount: decimal.NewFromInt(25),
		Products: []string{product.ID.String()},
	}

	items := ApplyOffer(offer, []models.Product{product})
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if !items[0].Price.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected discounted price 60.00, got %s", items[0].Price)
	}
	if items[0].OriginalPrice == nil || !items[0].OriginalPrice.Equal(decimal.RequireFromString("80.00")) {
		t.Fatalf("expected original price 80.00 preserved")
	}
	if items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", items[0].Quantity)
	}
}

func TestApplyOffer_FixedNeverNegative(t *testing.T) {
	product := testProduct("8.00", 2)
	offer := &models.Offer{
		Type:     models.DiscountTypeFixed,
		Discount: decimal.NewFromInt(10),
		Products: []string{product.ID.String()},
	}

	items := ApplyOffer(offer, []models.Product{product})
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if !items[0].Price.Equal(decimal.Zero) {
		t.Fatalf("expected price floored at 0, got %s", items[0].Price)
	}
}

func TestApplyOffer_SkipsUnrelatedProducts(t *testing.T) {
	target := testProduct("40.00", 1)
	other := testProduct("20.00", 1)
	offer := &models.Offer{
		Type:     models.DiscountTypePercentage,
		Discount: decimal.NewFromInt(10),
		Products: []string{target.ID.String()},
	}

	items := ApplyOffer(offer, []models.Product{target, other})
	if len(items) != 1 {
		t.Fatalf("expected only target product, got %d items", len(items))
	}
	if items[0].ProductID != target.ID {
		t.Fatalf("unexpected product in result")
	}
}

func TestApplyOffer_OutOfStockFlag(t *testing.T) {
	product := testProduct("30.00", 0)
	offer := &models.Offer{
		Type:     models.DiscountTypeFixed,
		Discount: decimal.NewFromInt(5),
		Products: []string{product.ID.String()},
	}

	items := ApplyOffer(offer, []models.Product{product})
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if items[0].InStock {
		t.Fatalf("expected out-of-stock flag")
	}
}

func TestApplyOffer_NilAndEmpty(t *testing.T) {
	if items := ApplyOffer(nil, []models.Product{testProduct("10.00", 1)}); items != nil {
		t.Fatalf("expected nil for nil offer")
	}
	offer := &models.Offer{Type: models.DiscountTypePercentage, Discount: decimal.NewFromInt(10)}
	if items := ApplyOffer(offer, []models.Product{testProduct("10.00", 1)}); items != nil {
		t.Fatalf("expected nil for offer without products")
	}
}
