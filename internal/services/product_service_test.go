package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rozes-gallery/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func productColumns() []string {
	return []string{"id", "title", "description", "price", "original_price", "stock", "image", "images", "category", "status", "created_at", "updated_at"}
}

func TestProductService_CreateProduct(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())

	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(1, 1))

	original := decimal.NewFromInt(100)
	product, err := service.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title:         "Red Bouquet",
		Price:         decimal.NewFromInt(80),
		OriginalPrice: &original,
		Stock:         5,
		Category:      "bouquets",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if product.Status != models.ProductStatusActive {
		t.Fatalf("expected default active status, got %s", product.Status)
	}
	if !product.InStock || !product.IsOffer {
		t.Fatalf("expected derived flags set")
	}
	if product.DiscountPercent == nil || *product.DiscountPercent != 20 {
		t.Fatalf("expected discount percent 20, got %v", product.DiscountPercent)
	}
}

func TestProductService_CreateProduct_InvalidPayload(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())

	if _, err := service.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title: "", Price: decimal.NewFromInt(10),
	}); err == nil {
		t.Fatalf("expected validation error for empty title")
	}

	if _, err := service.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title: "X", Price: decimal.Zero,
	}); err == nil {
		t.Fatalf("expected validation error for zero price")
	}

	below := decimal.NewFromInt(5)
	if _, err := service.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title: "X", Price: decimal.NewFromInt(10), OriginalPrice: &below,
	}); err == nil {
		t.Fatalf("expected validation error for original below price")
	}

	if _, err := service.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title: "X", Price: decimal.NewFromInt(10), Stock: -1,
	}); err == nil {
		t.Fatalf("expected validation error for negative stock")
	}
}

func TestProductService_GetProduct(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())
	productID := uuid.New()

	mock.ExpectQuery("SELECT id, title, description").
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(productID, "Red Bouquet", "", "80", "100", 0, "", pq.Array([]string{"a.jpg"}), "bouquets", models.ProductStatusActive, time.Now(), time.Now()))

	product, err := service.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if product.InStock {
		t.Fatalf("expected out of stock for zero stock")
	}
	if !product.IsOffer || product.DiscountPercent == nil || *product.DiscountPercent != 20 {
		t.Fatalf("expected offer flags derived, got %+v", product)
	}
	if len(product.Images) != 1 {
		t.Fatalf("expected images array scanned")
	}
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())

	mock.ExpectQuery("SELECT id, title, description").
		WillReturnError(sql.ErrNoRows)

	if _, err := service.GetProduct(context.Background(), uuid.New()); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestProductService_GetProducts_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())

	status := models.ProductStatusActive
	mock.ExpectQuery("SELECT id, title, description").
		WithArgs("bouquets", status, 20).
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(uuid.New(), "A", "", "10", nil, 3, "", pq.Array([]string{}), "bouquets", status, time.Now(), time.Now()).
			AddRow(uuid.New(), "B", "", "20", nil, 0, "", pq.Array([]string{}), "bouquets", status, time.Now(), time.Now()))

	products, err := service.GetProducts(context.Background(), "bouquets", &status, 20, 0)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].OriginalPrice != nil {
		t.Fatalf("expected nil original price")
	}
	if products[1].InStock {
		t.Fatalf("expected second product out of stock")
	}
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())

	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := service.UpdateProduct(context.Background(), uuid.New(), &models.UpdateProductRequest{
		Title: "X", Price: decimal.NewFromInt(10), Status: models.ProductStatusActive,
	})
	if err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestProductService_DeleteProduct(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())
	productID := uuid.New()

	mock.ExpectExec("DELETE FROM products").
		WithArgs(productID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := service.DeleteProduct(context.Background(), productID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	mock.ExpectExec("DELETE FROM products").
		WithArgs(productID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := service.DeleteProduct(context.Background(), productID); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestProductService_GetProductsByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewProductService(db, newTestLogger())

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	mock.ExpectQuery("SELECT id, title, description").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(ids[0], "A", "", "10", nil, 3, "", pq.Array([]string{}), "bouquets", models.ProductStatusActive, time.Now(), time.Now()))

	products, err := service.GetProductsByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("missing ids are skipped, expected 1 product, got %d", len(products))
	}

	empty, err := service.GetProductsByIDs(context.Background(), nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil result for empty input")
	}
}
