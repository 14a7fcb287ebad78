package handlers

import (
	"encoding/json"
	"net/http"

	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
)

const productPathPrefix = "/api/products/"

// ProductHandler обрабатывает запросы каталога товаров.
type ProductHandler struct {
	productService ProductService
	log            *logger.Logger
}

// NewProductHandler создает новый обработчик каталога.
func NewProductHandler(productService ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		log:            log,
	}
}

// CreateProduct создает товар.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create product")
		return
	}

	writeJSONResponse(w, http.StatusCreated, product)
}

// ListProducts возвращает список товаров с фильтрами.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, offset := parsePagination(r, 50, 200)
	category := r.URL.Query().Get("category")

	var status *models.ProductStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed := models.ProductStatus(s)
		switch parsed {
		case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusLowStock:
			status = &parsed
		default:
			writeErrorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	products, err := h.productService.GetProducts(r.Context(), category, status, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list products")
		return
	}

	writeJSONResponse(w, http.StatusOK, products)
}

// GetProduct возвращает товар по ID.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	productID, err := extractUUIDFromPath(r.URL.Path, productPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get product")
		return
	}

	writeJSONResponse(w, http.StatusOK, product)
}

// UpdateProduct обновляет товар.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	productID, err := extractUUIDFromPath(r.URL.Path, productPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), productID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update product")
		return
	}

	writeJSONResponse(w, http.StatusOK, product)
}

// DeleteProduct удаляет товар.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	productID, err := extractUUIDFromPath(r.URL.Path, productPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), productID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete product")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
