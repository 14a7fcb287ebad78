package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rozes-gallery/internal/apperror"
	"rozes-gallery/internal/database"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/pricing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CouponService управляет купонами и их списанием при оформлении заказа.
type CouponService struct {
	db  *database.DB
	log *logger.Logger
}

// NewCouponService создаёт сервис купонов.
func NewCouponService(db *database.DB, log *logger.Logger) *CouponService {
	return &CouponService{
		db:  db,
		log: log,
	}
}

func validateCouponPayload(discountType models.DiscountType, value decimal.Decimal) error {
	switch discountType {
	case models.DiscountTypePercentage:
		if value.LessThanOrEqual(decimal.Zero) || value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage value must be between 0 and 100")
		}
	case models.DiscountTypeFixed:
		if value.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("fixed value must be positive")
		}
	default:
		return fmt.Errorf("invalid discount type")
	}
	return nil
}

// CreateCoupon создаёт новый купон. Код хранится как введён, с учётом
// регистра.
func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperror.Validation("code is required", nil)
	}
	if err := validateCouponPayload(req.Type, req.Value); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	if req.MaxUses < 0 {
		return nil, apperror.Validation("max_uses must be non-negative", nil)
	}

	coupon := &models.Coupon{
		ID:          uuid.New(),
		Code:        code,
		Type:        req.Type,
		Value:       req.Value,
		MaxUses:     req.MaxUses,
		UsedCount:   0,
		ExpiryDate:  req.ExpiryDate,
		MinPurchase: req.MinPurchase,
		IsActive:    req.IsActive,
		Description: req.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO coupons (id, code, type, value, max_uses, used_count, expiry_date, min_purchase, is_active, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query, coupon.ID, coupon.Code, coupon.Type, coupon.Value,
		coupon.MaxUses, coupon.ExpiryDate, coupon.MinPurchase, coupon.IsActive, coupon.Description,
		coupon.CreatedAt, coupon.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("coupon code already exists", err)
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.log.WithField("code", coupon.Code).Info("Coupon created")
	return coupon, nil
}

// GetCoupon возвращает купон по ID.
func (s *CouponService) GetCoupon(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error) {
	return s.getCoupon(ctx, "id = $1", couponID)
}

// GetCouponByCode возвращает купон по точному коду.
func (s *CouponService) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return s.getCoupon(ctx, "code = $1", strings.TrimSpace(code))
}

func (s *CouponService) getCoupon(ctx context.Context, where string, arg interface{}) (*models.Coupon, error) {
	query := `
		SELECT id, code, type, value, max_uses, used_count, expiry_date, min_purchase, is_active, description, created_at, updated_at
		FROM coupons
		WHERE ` + where

	coupon := &models.Coupon{}
	var minPurchase decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&coupon.ID, &coupon.Code, &coupon.Type, &coupon.Value, &coupon.MaxUses, &coupon.UsedCount,
		&coupon.ExpiryDate, &minPurchase, &coupon.IsActive, &coupon.Description,
		&coupon.CreatedAt, &coupon.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("coupon not found", err)
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	if minPurchase.Valid {
		coupon.MinPurchase = &minPurchase.Decimal
	}
	return coupon, nil
}

// ListCoupons возвращает список купонов.
func (s *CouponService) ListCoupons(ctx context.Context, limit, offset int) ([]*models.Coupon, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, code, type, value, max_uses, used_count, expiry_date, min_purchase, is_active, description, created_at, updated_at
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		coupon := &models.Coupon{}
		var minPurchase decimal.NullDecimal
		if err := rows.Scan(&coupon.ID, &coupon.Code, &coupon.Type, &coupon.Value, &coupon.MaxUses,
			&coupon.UsedCount, &coupon.ExpiryDate, &minPurchase, &coupon.IsActive,
			&coupon.Description, &coupon.CreatedAt, &coupon.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		if minPurchase.Valid {
			coupon.MinPurchase = &minPurchase.Decimal
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coupons: %w", err)
	}

	return coupons, nil
}

// UpdateCoupon обновляет параметры купона. Код купона неизменяем.
func (s *CouponService) UpdateCoupon(ctx context.Context, couponID uuid.UUID, req *models.UpdateCouponRequest) (*models.Coupon, error) {
	if err := validateCouponPayload(req.Type, req.Value); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	query := `
		UPDATE coupons
		SET type = $1, value = $2, max_uses = $3, expiry_date = $4, min_purchase = $5,
		    is_active = $6, description = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := s.db.ExecContext(ctx, query, req.Type, req.Value, req.MaxUses, req.ExpiryDate,
		req.MinPurchase, req.IsActive, req.Description, time.Now(), couponID)
	if err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("coupon not found", nil)
	}

	return s.GetCoupon(ctx, couponID)
}

// ToggleCoupon включает или выключает купон.
func (s *CouponService) ToggleCoupon(ctx context.Context, couponID uuid.UUID, isActive bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE coupons SET is_active = $1, updated_at = $2 WHERE id = $3",
		isActive, time.Now(), couponID)
	if err != nil {
		return fmt.Errorf("failed to toggle coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("coupon not found", nil)
	}
	return nil
}

// DeleteCoupon удаляет купон.
func (s *CouponService) DeleteCoupon(ctx context.Context, couponID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM coupons WHERE id = $1", couponID)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("coupon not found", nil)
	}
	return nil
}

// GetStats возвращает сводку по купонам для панели администратора.
func (s *CouponService) GetStats(ctx context.Context) (*models.CouponStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active = true AND expiry_date > NOW()),
			COUNT(*) FILTER (WHERE expiry_date <= NOW()),
			COALESCE(SUM(used_count), 0)
		FROM coupons
	`

	stats := &models.CouponStats{}
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Expired, &stats.TotalUsed); err != nil {
		return nil, fmt.Errorf("failed to get coupon stats: %w", err)
	}

	savedQuery := `SELECT COALESCE(SUM(discount), 0) FROM orders WHERE coupon_code IS NOT NULL`
	if err := s.db.QueryRowContext(ctx, savedQuery).Scan(&stats.TotalSaved); err != nil {
		return nil, fmt.Errorf("failed to get coupon savings: %w", err)
	}

	return stats, nil
}

// RedeemWithTx валидирует купон под блокировкой строки и списывает одно
// использование в рамках транзакции вызывающего. Лимит использований
// проверяется повторно в условии UPDATE, поэтому две конкурентные
// транзакции не могут списать последнее использование дважды.
func (s *CouponService) RedeemWithTx(ctx context.Context, tx *sql.Tx, code string, subtotal decimal.Decimal) (pricing.AppliedDiscount, error) {
	code = strings.TrimSpace(code)

	query := `
		SELECT id, code, type, value, max_uses, used_count, expiry_date, min_purchase, is_active, description, created_at, updated_at
		FROM coupons
		WHERE code = $1
		FOR UPDATE
	`

	coupon := &models.Coupon{}
	var minPurchase decimal.NullDecimal
	err := tx.QueryRowContext(ctx, query, code).Scan(
		&coupon.ID, &coupon.Code, &coupon.Type, &coupon.Value, &coupon.MaxUses, &coupon.UsedCount,
		&coupon.ExpiryDate, &minPurchase, &coupon.IsActive, &coupon.Description,
		&coupon.CreatedAt, &coupon.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return pricing.AppliedDiscount{}, &pricing.CouponError{Reason: pricing.CouponNotFound, Msg: "coupon not found"}
		}
		return pricing.AppliedDiscount{}, fmt.Errorf("failed to get coupon for redeem: %w", err)
	}
	if minPurchase.Valid {
		coupon.MinPurchase = &minPurchase.Decimal
	}

	applied, err := pricing.ValidateCoupon(coupon, subtotal, time.Now())
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}

	updateQuery := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = $1
		WHERE id = $2 AND (max_uses = 0 OR used_count < max_uses)
	`
	result, err := tx.ExecContext(ctx, updateQuery, time.Now(), coupon.ID)
	if err != nil {
		return pricing.AppliedDiscount{}, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return pricing.AppliedDiscount{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pricing.AppliedDiscount{}, &pricing.CouponError{Reason: pricing.CouponUsageExceeded, Msg: "coupon usage limit reached"}
	}

	s.log.WithFields(map[string]interface{}{
		"code":     coupon.Code,
		"subtotal": subtotal,
	}).Info("Coupon redeemed")

	return applied, nil
}
