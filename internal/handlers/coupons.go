package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/pricing"

	"github.com/shopspring/decimal"
)

const couponPathPrefix = "/api/coupons/"

// CouponHandler обрабатывает запросы управления купонами и их проверку.
type CouponHandler struct {
	couponService CouponService
	log           *logger.Logger
}

// NewCouponHandler создает новый обработчик купонов.
func NewCouponHandler(couponService CouponService, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		log:           log,
	}
}

// CreateCoupon создает купон.
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := h.couponService.CreateCoupon(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create coupon")
		return
	}

	writeJSONResponse(w, http.StatusCreated, coupon)
}

// ListCoupons возвращает список купонов.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, offset := parsePagination(r, 50, 200)

	coupons, err := h.couponService.ListCoupons(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list coupons")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupons)
}

// GetCoupon возвращает купон по ID.
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	couponID, err := extractUUIDFromPath(r.URL.Path, couponPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.couponService.GetCoupon(r.Context(), couponID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupon)
}

// UpdateCoupon обновляет купон. Код купона неизменяем.
func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	couponID, err := extractUUIDFromPath(r.URL.Path, couponPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := h.couponService.UpdateCoupon(r.Context(), couponID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupon)
}

// ToggleCoupon включает или выключает купон.
func (h *CouponHandler) ToggleCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	couponID, err := extractUUIDFromPath(r.URL.Path, couponPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.ToggleCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.couponService.ToggleCoupon(r.Context(), couponID, req.IsActive); err != nil {
		writeServiceError(w, h.log, err, "Failed to toggle coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"id":        couponID,
		"is_active": req.IsActive,
	})
}

// DeleteCoupon удаляет купон.
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	couponID, err := extractUUIDFromPath(r.URL.Path, couponPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.couponService.DeleteCoupon(r.Context(), couponID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Coupon deleted"})
}

// GetStats возвращает сводку по купонам для панели администратора.
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.couponService.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get coupon stats")
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

// ValidateCouponRequest — запрос предварительной проверки купона.
type ValidateCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ValidateCouponResponse — результат проверки купона на заданной сумме.
type ValidateCouponResponse struct {
	Valid    bool            `json:"valid"`
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// ValidateCoupon проверяет купон на заданной сумме корзины без его
// погашения. Счетчик использований не меняется.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Coupon code is required")
		return
	}

	coupon, err := h.couponService.GetCouponByCode(r.Context(), code)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to look up coupon")
		return
	}

	applied, err := pricing.ValidateCoupon(coupon, req.Subtotal, time.Now())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to validate coupon")
		return
	}

	discount := req.Subtotal.Mul(applied.Fraction).Round(2)
	writeJSONResponse(w, http.StatusOK, ValidateCouponResponse{
		Valid:    true,
		Code:     applied.Code,
		Discount: discount,
	})
}
