package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"rozes-gallery/internal/cart"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	cartItemPathPrefix  = "/api/cart/items/"
	cartOfferPathPrefix = "/api/cart/offers/"
)

// CartHandler обрабатывает запросы корзины. Корзина привязана к сессии,
// идентификатор передается в заголовке X-Session-ID.
type CartHandler struct {
	store          CartStore
	productService ProductService
	offerService   OfferService
	couponService  CouponService
	calculator     TotalsCalculator
	producer       EventProducer
	log            *logger.Logger
}

// NewCartHandler создает новый обработчик корзины.
func NewCartHandler(
	store CartStore,
	productService ProductService,
	offerService OfferService,
	couponService CouponService,
	calculator TotalsCalculator,
	producer EventProducer,
	log *logger.Logger,
) *CartHandler {
	return &CartHandler{
		store:          store,
		productService: productService,
		offerService:   offerService,
		couponService:  couponService,
		calculator:     calculator,
		producer:       producer,
		log:            log,
	}
}

// CartView — представление корзины в ответах API.
type CartView struct {
	Items                 []cart.LineItem `json:"items"`
	ItemCount             int             `json:"item_count"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	FreeShippingRemainder decimal.Decimal `json:"free_shipping_remainder"`
}

// AddCartItemRequest — запрос на добавление товара в корзину.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// SetCartQuantityRequest — запрос на изменение количества позиции.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// QuoteRequest — запрос расчета итоговой суммы текущей корзины.
type QuoteRequest struct {
	CouponCode *string `json:"coupon_code,omitempty"`
}

// QuoteResponse — разбивка итоговой суммы с примененным купоном.
type QuoteResponse struct {
	pricing.Totals
	CouponCode            *string         `json:"coupon_code,omitempty"`
	FreeShippingRemainder decimal.Decimal `json:"free_shipping_remainder"`
}

func (h *CartHandler) cartView(c *cart.Cart) CartView {
	items := c.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	subtotal := c.Subtotal().Round(2)
	return CartView{
		Items:                 items,
		ItemCount:             c.ItemCount(),
		Subtotal:              subtotal,
		FreeShippingRemainder: h.calculator.FreeShippingRemainder(subtotal).Round(2),
	}
}

// GetCart возвращает содержимое корзины сессии.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	c, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load cart")
		return
	}

	writeJSONResponse(w, http.StatusOK, h.cartView(c))
}

// AddItem добавляет товар в корзину. Если товар уже в корзине, количество
// суммируется.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == uuid.Nil {
		writeErrorResponse(w, http.StatusBadRequest, "product_id is required")
		return
	}

	product, err := h.productService.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get product")
		return
	}

	if product.Status == models.ProductStatusInactive {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Product is not available")
		return
	}

	c, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load cart")
		return
	}

	c.AddItem(cart.LineItem{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Image:     product.Image,
		InStock:   product.Stock > 0,
	}, req.Quantity)
	h.store.Save(r.Context(), sessionID, c)

	writeJSONResponse(w, http.StatusOK, h.cartView(c))
}

// UpdateItem задает количество позиции. Количество меньше 1 удаляет позицию.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	productID, err := extractUUIDFromPath(r.URL.Path, cartItemPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SetCartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load cart")
		return
	}

	c.SetQuantity(productID, req.Quantity)
	h.store.Save(r.Context(), sessionID, c)

	writeJSONResponse(w, http.StatusOK, h.cartView(c))
}

// RemoveItem удаляет позицию из корзины.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	productID, err := extractUUIDFromPath(r.URL.Path, cartItemPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load cart")
		return
	}

	c.RemoveItem(productID)
	h.store.Save(r.Context(), sessionID, c)

	writeJSONResponse(w, http.StatusOK, h.cartView(c))
}

// ClearCart удаляет корзину сессии целиком.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	if err := h.store.Clear(r.Context(), sessionID); err != nil {
		writeServiceError(w, h.log, err, "Failed to clear cart")
		return
	}

	writeJSONResponse(w, http.StatusOK, h.cartView(cart.New()))
}

// ApplyOffer добавляет в корзину товары акции по сниженной цене. Акция
// должна быть активна и действовать в текущий момент.
func (h *CartHandler) ApplyOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	offerID, err := extractUUIDFromPath(r.URL.Path, cartOfferPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.offerService.GetOffer(r.Context(), offerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get offer")
		return
	}

	now := time.Now()
	if !offer.IsActive || now.Before(offer.StartDate) || now.After(offer.EndDate) {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Offer is not active")
		return
	}

	productIDs := make([]uuid.UUID, 0, len(offer.Products))
	for _, id := range offer.Products {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		productIDs = append(productIDs, parsed)
	}

	if len(productIDs) == 0 {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Offer has no products")
		return
	}

	products, err := h.productService.GetProductsByIDs(r.Context(), productIDs)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load offer products")
		return
	}

	values := make([]models.Product, 0, len(products))
	for _, p := range products {
		values = append(values, *p)
	}

	items := pricing.ApplyOffer(offer, values)
	if len(items) == 0 {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "Offer has no available products")
		return
	}

	c, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load cart")
		return
	}

	for _, item := range items {
		c.AddItem(item, item.Quantity)
	}
	h.store.Save(r.Context(), sessionID, c)

	if h.producer != nil {
		if err := h.producer.PublishOfferApplied(offer.ID, sessionID, len(items)); err != nil {
			h.log.WithError(err).Warn("Failed to publish offer applied event")
		}
	}

	writeJSONResponse(w, http.StatusOK, h.cartView(c))
}

// Quote считает итоговую сумму текущей корзины с учетом купона, не
// погашая его. Счетчик использований купона изменится только при
// оформлении заказа.
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	var req QuoteRequest
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

	fraction := decimal.Zero
	var appliedCode *string
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		code := strings.TrimSpace(*req.CouponCode)

		coupon, err := h.couponService.GetCouponByCode(r.Context(), code)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to look up coupon")
			return
		}

		applied, err := pricing.ValidateCoupon(coupon, c.Subtotal().Round(2), time.Now())
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to validate coupon")
			return
		}

		fraction = applied.Fraction
		appliedCode = &applied.Code
	}

	totals := h.calculator.ComputeTotals(items, fraction)
	writeJSONResponse(w, http.StatusOK, QuoteResponse{
		Totals:                totals,
		CouponCode:            appliedCode,
		FreeShippingRemainder: h.calculator.FreeShippingRemainder(totals.Subtotal).Round(2),
	})
}
