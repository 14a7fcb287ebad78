package services

import (
	"fmt"
	"net/url"
	"strings"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/models"
)

// WhatsAppBuilder формирует ссылку wa.me с готовым текстом заказа.
// Подтверждение заказа происходит в переписке, ссылка лишь открывает чат
// с предзаполненным сообщением.
type WhatsAppBuilder struct {
	storeName string
	number    string
}

// NewWhatsAppBuilder создаёт построитель ссылок из конфигурации оформления.
func NewWhatsAppBuilder(cfg *config.CheckoutConfig) *WhatsAppBuilder {
	return &WhatsAppBuilder{
		storeName: cfg.StoreName,
		number:    cfg.WhatsAppNumber,
	}
}

// OrderURL строит ссылку для передачи заказа менеджеру магазина.
func (b *WhatsAppBuilder) OrderURL(order *models.Order, req *models.CheckoutRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🌹 *New Order from %s* 🌹\n\n", b.storeName))
	sb.WriteString("*Customer Details:*\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", req.Name))
	sb.WriteString(fmt.Sprintf("Email: %s\n", req.Email))
	sb.WriteString(fmt.Sprintf("Phone: %s\n\n", req.Phone))
	sb.WriteString("*Delivery Details:*\n")
	sb.WriteString(fmt.Sprintf("Address: %s\n", req.Address))
	sb.WriteString(fmt.Sprintf("City: %s\n", req.City))
	sb.WriteString(fmt.Sprintf("ZIP Code: %s\n\n", req.ZipCode))

	if len(order.Items) > 0 {
		sb.WriteString("*Items:*\n")
		for _, item := range order.Items {
			sb.WriteString(fmt.Sprintf("%d x %s - $%s\n", item.Quantity, item.Title, item.Price.StringFixed(2)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("*Order Total:* $%s", order.Total.StringFixed(2)))

	params := url.Values{}
	params.Set("text", sb.String())

	return fmt.Sprintf("https://wa.me/%s?%s", b.number, params.Encode())
}
