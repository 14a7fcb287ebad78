package handlers

import (
	"encoding/json"
	"net/http"

	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/services"
)

const orderPathPrefix = "/api/orders/"

// OrderHandler обрабатывает оформление и управление заказами.
type OrderHandler struct {
	orderService OrderService
	store        CartStore
	whatsapp     *services.WhatsAppBuilder
	producer     EventProducer
	log          *logger.Logger
}

// NewOrderHandler создает новый обработчик заказов.
func NewOrderHandler(
	orderService OrderService,
	store CartStore,
	whatsapp *services.WhatsAppBuilder,
	producer EventProducer,
	log *logger.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		store:        store,
		whatsapp:     whatsapp,
		producer:     producer,
		log:          log,
	}
}

// Checkout оформляет заказ из текущей корзины сессии. Успешное оформление
// очищает корзину и возвращает заказ вместе со ссылкой WhatsApp для
// подтверждения у менеджера магазина.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load cart")
		return
	}

	items := c.Items()
	if len(items) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	order, err := h.orderService.Checkout(r.Context(), &req, items)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create order")
		return
	}

	whatsAppURL := h.whatsapp.OrderURL(order, &req)

	if h.producer != nil {
		if err := h.producer.PublishOrderCreated(order); err != nil {
			h.log.WithError(err).Warn("Failed to publish order created event")
		}
		if order.CouponCode != nil {
			if err := h.producer.PublishCouponRedeemed(*order.CouponCode, order.ID, order.Discount); err != nil {
				h.log.WithError(err).Warn("Failed to publish coupon redeemed event")
			}
		}
	}

	// Заказ уже создан, поэтому сбой очистки корзины не отменяет оформление.
	if err := h.store.Clear(r.Context(), sessionID); err != nil {
		h.log.WithError(err).Warn("Failed to clear cart after checkout")
	}

	writeJSONResponse(w, http.StatusCreated, models.CheckoutResponse{
		Order:       order,
		WhatsAppURL: whatsAppURL,
	})
}

// ListOrders возвращает список заказов с фильтром по статусу.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, offset := parsePagination(r, 50, 200)

	var status *models.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed := models.OrderStatus(s)
		switch parsed {
		case models.OrderStatusPending, models.OrderStatusProcessing,
			models.OrderStatusCompleted, models.OrderStatusCancelled:
			status = &parsed
		default:
			writeErrorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	orders, err := h.orderService.GetOrders(r.Context(), status, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list orders")
		return
	}

	writeJSONResponse(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ с позициями.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orderID, err := extractUUIDFromPath(r.URL.Path, orderPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get order")
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
}

// UpdateOrderStatus переводит заказ в новый статус. Допустимы только
// переходы вперед по жизненному циклу; завершенные и отмененные заказы
// изменению не подлежат.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orderID, err := extractUUIDFromPath(r.URL.Path, orderPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	oldStatus, err := h.orderService.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update order status")
		return
	}

	if h.producer != nil && oldStatus != req.Status {
		if err := h.producer.PublishOrderStatusChanged(orderID, oldStatus, req.Status); err != nil {
			h.log.WithError(err).Warn("Failed to publish order status event")
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"id":         orderID,
		"old_status": oldStatus,
		"status":     req.Status,
	})
}
