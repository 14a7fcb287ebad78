package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"rozes-gallery/internal/apperror"
	"rozes-gallery/internal/cart"
	"rozes-gallery/internal/database"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

// OrderService оформляет заказы и управляет их жизненным циклом.
type OrderService struct {
	db         *database.DB
	log        *logger.Logger
	calculator *pricing.Calculator
	coupons    *CouponService
}

// NewOrderService создает новый экземпляр сервиса заказов.
func NewOrderService(db *database.DB, log *logger.Logger, calculator *pricing.Calculator, coupons *CouponService) *OrderService {
	return &OrderService{
		db:         db,
		log:        log,
		calculator: calculator,
		coupons:    coupons,
	}
}

func validateCheckoutRequest(req *models.CheckoutRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("invalid email address")
	}
	if !phonePattern.MatchString(req.Phone) {
		return fmt.Errorf("invalid phone number")
	}
	if strings.TrimSpace(req.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if strings.TrimSpace(req.City) == "" {
		return fmt.Errorf("city is required")
	}
	if strings.TrimSpace(req.ZipCode) == "" {
		return fmt.Errorf("zip code is required")
	}
	return nil
}

// Checkout оформляет заказ по снимку корзины. Списание купона, расчет
// итоговой суммы и запись заказа с позициями выполняются в одной
// транзакции: при любой ошибке счетчик купона не меняется и заказ
// не создается.
func (s *OrderService) Checkout(ctx context.Context, req *models.CheckoutRequest, items []cart.LineItem) (*models.Order, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	if len(items) == 0 {
		return nil, apperror.Validation("cart is empty", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	var discountFraction decimal.Decimal
	var couponCode *string
	if req.CouponCode != nil && *req.CouponCode != "" {
		applied, err := s.coupons.RedeemWithTx(ctx, tx, *req.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discountFraction = applied.Fraction
		couponCode = &applied.Code
	}

	totals := s.calculator.ComputeTotals(items, discountFraction)

	address := req.Address
	if req.City != "" {
		address += ", " + req.City
	}
	if req.ZipCode != "" {
		address += ", " + req.ZipCode
	}

	orderID := uuid.New()
	order := &models.Order{
		ID:              orderID,
		CustomerName:    req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ShippingAddress: address,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		CouponCode:      couponCode,
		Status:          models.OrderStatusPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	query := `
		INSERT INTO orders (id, customer_name, email, phone, shipping_address, subtotal, discount, shipping, tax, total, coupon_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.ExecContext(ctx, query, order.ID, order.CustomerName, order.Email, order.Phone,
		order.ShippingAddress, order.Subtotal, order.Discount, order.Shipping, order.Tax,
		order.Total, order.CouponCode, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		itemID := uuid.New()
		itemQuery := `
			INSERT INTO order_items (id, order_id, product_id, title, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, itemQuery, itemID, orderID, item.ProductID, item.Title, item.Price, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		order.Items = append(order.Items, models.OrderItem{
			ID:        itemID,
			OrderID:   orderID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"order_id":      order.ID,
		"customer_name": order.CustomerName,
		"total":         order.Total,
	}).Info("Order created successfully")

	return order, nil
}

// GetOrder получает заказ по ID вместе с позициями.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, customer_name, email, phone, shipping_address, subtotal, discount, shipping, tax, total, coupon_code, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID, &order.CustomerName, &order.Email, &order.Phone, &order.ShippingAddress,
		&order.Subtotal, &order.Discount, &order.Shipping, &order.Tax, &order.Total,
		&order.CouponCode, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order not found", err)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, title, price, quantity
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := s.db.QueryContext(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Title, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return order, nil
}

// GetOrders получает список заказов с фильтрацией по статусу.
func (s *OrderService) GetOrders(ctx context.Context, status *models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, customer_name, email, phone, shipping_address, subtotal, discount, shipping, tax, total, coupon_code, status, created_at, updated_at
		FROM orders
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

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
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.Email, &order.Phone,
			&order.ShippingAddress, &order.Subtotal, &order.Discount, &order.Shipping,
			&order.Tax, &order.Total, &order.CouponCode, &order.Status,
			&order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus обновляет статус заказа с проверкой допустимости
// перехода. Возвращает прежний статус.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus models.OrderStatus) (models.OrderStatus, error) {
	if newStatus == "" {
		return "", apperror.Validation("status is required", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var currentStatus models.OrderStatus
	selectQuery := `
		SELECT status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`
	if err := tx.QueryRowContext(ctx, selectQuery, orderID).Scan(&currentStatus); err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("order not found", err)
		}
		return "", fmt.Errorf("failed to fetch order status: %w", err)
	}

	if !isValidOrderStatusTransition(currentStatus, newStatus) {
		return "", apperror.Conflict("invalid order status transition", nil)
	}

	updateQuery := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.ExecContext(ctx, updateQuery, newStatus, time.Now(), orderID); err != nil {
		return "", fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit order status update: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"order_id":   orderID,
		"old_status": currentStatus,
		"new_status": newStatus,
	}).Info("Order status updated")

	return currentStatus, nil
}

func isValidOrderStatusTransition(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusProcessing || to == models.OrderStatusCancelled
	case models.OrderStatusProcessing:
		return to == models.OrderStatusCompleted || to == models.OrderStatusCancelled
	case models.OrderStatusCompleted, models.OrderStatusCancelled:
		return false
	default:
		return false
	}
}
