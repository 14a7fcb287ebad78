package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rozes-gallery/internal/apperror"
	"rozes-gallery/internal/config"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestLog() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

type stubProductService struct {
	product *models.Product
	list    []*models.Product
	err     error
}

func (s *stubProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	return s.product, s.err
}
func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}
func (s *stubProductService) GetProducts(ctx context.Context, category string, status *models.ProductStatus, limit, offset int) ([]*models.Product, error) {
	return s.list, s.err
}
func (s *stubProductService) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Product, error) {
	return s.list, s.err
}
func (s *stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	return s.product, s.err
}
func (s *stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return s.err
}

func sampleProduct() *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		Title:     "Red Rose Bouquet",
		Price:     decimal.NewFromInt(45),
		Category:  "bouquets",
		Stock:     12,
		Status:    models.ProductStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestProductHandler_CreateProduct(t *testing.T) {
	handler := NewProductHandler(&stubProductService{product: sampleProduct()}, newTestLog())

	body := bytes.NewBufferString(`{"title":"Red Rose Bouquet","price":"45","category":"bouquets","stock":12}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	rr := httptest.NewRecorder()
	handler.CreateProduct(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	var got models.Product
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Title != "Red Rose Bouquet" {
		t.Fatalf("unexpected title %q", got.Title)
	}
}

func TestProductHandler_CreateProduct_InvalidBody(t *testing.T) {
	handler := NewProductHandler(&stubProductService{}, newTestLog())

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("bad json"))
	rr := httptest.NewRecorder()
	handler.CreateProduct(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestProductHandler_CreateProduct_ValidationError(t *testing.T) {
	service := &stubProductService{err: apperror.Validation("product price must be positive", nil)}
	handler := NewProductHandler(service, newTestLog())

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(`{"title":"X","price":"-1"}`))
	rr := httptest.NewRecorder()
	handler.CreateProduct(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation error, got %d", rr.Code)
	}
}

func TestProductHandler_GetProduct_NotFound(t *testing.T) {
	service := &stubProductService{err: apperror.NotFound("product not found", nil)}
	handler := NewProductHandler(service, newTestLog())

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	handler.GetProduct(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestProductHandler_GetProduct_InvalidID(t *testing.T) {
	handler := NewProductHandler(&stubProductService{}, newTestLog())

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	handler.GetProduct(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestProductHandler_ListProducts(t *testing.T) {
	service := &stubProductService{list: []*models.Product{sampleProduct(), sampleProduct()}}
	handler := NewProductHandler(service, newTestLog())

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=bouquets&limit=10", nil)
	rr := httptest.NewRecorder()
	handler.ListProducts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var got []*models.Product
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
}

func TestProductHandler_ListProducts_InvalidStatus(t *testing.T) {
	handler := NewProductHandler(&stubProductService{}, newTestLog())

	req := httptest.NewRequest(http.MethodGet, "/api/products?status=bogus", nil)
	rr := httptest.NewRecorder()
	handler.ListProducts(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	handler := NewProductHandler(&stubProductService{}, newTestLog())

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	handler.DeleteProduct(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestProductHandler_MethodNotAllowed(t *testing.T) {
	handler := NewProductHandler(&stubProductService{}, newTestLog())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rr := httptest.NewRecorder()
	handler.CreateProduct(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
