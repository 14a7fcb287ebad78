package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rozes-gallery/internal/apperror"
	"rozes-gallery/internal/database"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProductService представляет сервис для работы с каталогом товаров
type ProductService struct {
	db  *database.DB
	log *logger.Logger
}

// NewProductService создает новый экземпляр сервиса каталога
func NewProductService(db *database.DB, log *logger.Logger) *ProductService {
	return &ProductService{
		db:  db,
		log: log,
	}
}

func validateProductPayload(title string, price decimal.Decimal, originalPrice *decimal.Decimal, stock int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("price must be positive")
	}
	if originalPrice != nil && originalPrice.LessThan(price) {
		return fmt.Errorf("original_price must not be below price")
	}
	if stock < 0 {
		return fmt.Errorf("stock must be non-negative")
	}
	return nil
}

// CreateProduct создает новый товар
func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if err := validateProductPayload(req.Title, req.Price, req.OriginalPrice, req.Stock); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	status := req.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	product := &models.Product{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Stock:         req.Stock,
		Image:         req.Image,
		Images:        req.Images,
		Category:      req.Category,
		Status:        status,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	query := `
		INSERT INTO products (id, title, description, price, original_price, stock, image, images, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query, product.ID, product.Title, product.Description,
		product.Price, product.OriginalPrice, product.Stock, product.Image, pq.Array(product.Images),
		product.Category, product.Status, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.Derive()

	s.log.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	}).Info("Product created")

	return product, nil
}

// GetProduct получает товар по ID
func (s *ProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	query := `
		SELECT id, title, description, price, original_price, stock, image, images, category, status, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &models.Product{}
	var originalPrice decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID, &product.Title, &product.Description, &product.Price, &originalPrice,
		&product.Stock, &product.Image, pq.Array(&product.Images), &product.Category, &product.Status,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("product not found", err)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if originalPrice.Valid {
		product.OriginalPrice = &originalPrice.Decimal
	}
	product.Derive()
	return product, nil
}

// GetProducts возвращает список товаров с фильтрацией по категории и статусу
func (s *ProductService) GetProducts(ctx context.Context, category string, status *models.ProductStatus, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT id, title, description, price, original_price, stock, image, images, category, status, created_at, updated_at
		FROM products
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, category)
		argIndex++
	}

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateProduct обновляет товар
func (s *ProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	if err := validateProductPayload(req.Title, req.Price, req.OriginalPrice, req.Stock); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, original_price = $4, stock = $5,
		    image = $6, images = $7, category = $8, status = $9, updated_at = $10
		WHERE id = $11
	`

	result, err := s.db.ExecContext(ctx, query, req.Title, req.Description, req.Price,
		req.OriginalPrice, req.Stock, req.Image, pq.Array(req.Images), req.Category, req.Status,
		time.Now(), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("product not found", nil)
	}

	return s.GetProduct(ctx, productID)
}

// DeleteProduct удаляет товар из каталога
func (s *ProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("product not found", nil)
	}

	s.log.WithField("product_id", productID).Info("Product deleted")
	return nil
}

// GetProductsByIDs возвращает товары по списку идентификаторов.
// Отсутствующие идентификаторы пропускаются.
func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	query := `
		SELECT id, title, description, price, original_price, stock, image, images, category, status, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	return products, nil
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		var originalPrice decimal.NullDecimal
		if err := rows.Scan(&product.ID, &product.Title, &product.Description, &product.Price,
			&originalPrice, &product.Stock, &product.Image, pq.Array(&product.Images),
			&product.Category, &product.Status, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if originalPrice.Valid {
			product.OriginalPrice = &originalPrice.Decimal
		}
		product.Derive()
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}
