package services

import (
	"net/url"
	"strings"
	"testing"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestWhatsAppBuilder_OrderURL(t *testing.T) {
	builder := NewWhatsAppBuilder(&config.CheckoutConfig{
		StoreName:      "Rozes Gallery",
		WhatsAppNumber: "01515695312",
	})

	order := &models.Order{
		ID:    uuid.New(),
		Total: decimal.RequireFromString("160.80"),
		Items: []models.OrderItem{
			{Title: "Red Bouquet", Price: decimal.NewFromInt(50), Quantity: 3},
		},
	}
	req := &models.CheckoutRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "+1 234 567 8901",
		Address: "12 Rose St",
		City:    "Cairo",
		ZipCode: "11111",
	}

	raw := builder.OrderURL(order, req)
	if !strings.HasPrefix(raw, "https://wa.me/01515695312?") {
		t.Fatalf("unexpected url prefix: %s", raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}

	text := parsed.Query().Get("text")
	for _, fragment := range []string{
		"*New Order from Rozes Gallery*",
		"Name: Jane Doe",
		"Email: jane@example.com",
		"Address: 12 Rose St",
		"City: Cairo",
		"ZIP Code: 11111",
		"3 x Red Bouquet",
		"*Order Total:* $160.80",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("message missing %q:\n%s", fragment, text)
		}
	}
}

func TestWhatsAppBuilder_OrderURL_NoItemsSection(t *testing.T) {
	builder := NewWhatsAppBuilder(&config.CheckoutConfig{StoreName: "Rozes Gallery", WhatsAppNumber: "1"})

	order := &models.Order{Total: decimal.NewFromInt(10)}
	req := &models.CheckoutRequest{Name: "A", Email: "a@b.c", Phone: "+11234567890"}

	raw := builder.OrderURL(order, req)
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}
	if strings.Contains(parsed.Query().Get("text"), "*Items:*") {
		t.Fatalf("expected no items section for empty order")
	}
}
