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

// OfferService управляет акциями магазина.
type OfferService struct {
	db  *database.DB
	log *logger.Logger
}

// NewOfferService создаёт сервис акций.
func NewOfferService(db *database.DB, log *logger.Logger) *OfferService {
	return &OfferService{
		db:  db,
		log: log,
	}
}

func validateOfferPayload(title string, discountType models.DiscountType, discount decimal.Decimal, start, end time.Time) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if err := validateCouponPayload(discountType, discount); err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

// CreateOffer создаёт новую акцию.
func (s *OfferService) CreateOffer(ctx context.Context, req *models.CreateOfferRequest) (*models.Offer, error) {
	if err := validateOfferPayload(req.Title, req.Type, req.Discount, req.StartDate, req.EndDate); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	offer := &models.Offer{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Discount:    req.Discount,
		Products:    req.Products,
		IsActive:    req.IsActive,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Image:       req.Image,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO offers (id, title, description, type, discount, products, is_active, start_date, end_date, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query, offer.ID, offer.Title, offer.Description, offer.Type,
		offer.Discount, pq.Array(offer.Products), offer.IsActive, offer.StartDate, offer.EndDate,
		offer.Image, offer.CreatedAt, offer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"offer_id": offer.ID,
		"title":    offer.Title,
	}).Info("Offer created")

	return offer, nil
}

// GetOffer возвращает акцию по ID.
func (s *OfferService) GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	query := `
		SELECT id, title, description, type, discount, products, is_active, start_date, end_date, image, created_at, updated_at
		FROM offers
		WHERE id = $1
	`

	offer := &models.Offer{}
	err := s.db.QueryRowContext(ctx, query, offerID).Scan(
		&offer.ID, &offer.Title, &offer.Description, &offer.Type, &offer.Discount,
		pq.Array(&offer.Products), &offer.IsActive, &offer.StartDate, &offer.EndDate,
		&offer.Image, &offer.CreatedAt, &offer.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("offer not found", err)
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// ListOffers возвращает все акции.
func (s *OfferService) ListOffers(ctx context.Context, limit, offset int) ([]*models.Offer, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, title, description, type, discount, products, is_active, start_date, end_date, image, created_at, updated_at
		FROM offers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

// ListActive возвращает акции, действующие в указанный момент времени.
func (s *OfferService) ListActive(ctx context.Context, now time.Time) ([]*models.Offer, error) {
	query := `
		SELECT id, title, description, type, discount, products, is_active, start_date, end_date, image, created_at, updated_at
		FROM offers
		WHERE is_active = true AND start_date <= $1 AND end_date >= $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

func scanOffers(rows *sql.Rows) ([]*models.Offer, error) {
	var offers []*models.Offer
	for rows.Next() {
		offer := &models.Offer{}
		if err := rows.Scan(&offer.ID, &offer.Title, &offer.Description, &offer.Type,
			&offer.Discount, pq.Array(&offer.Products), &offer.IsActive, &offer.StartDate,
			&offer.EndDate, &offer.Image, &offer.CreatedAt, &offer.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offers: %w", err)
	}

	return offers, nil
}

// UpdateOffer обновляет акцию.
func (s *OfferService) UpdateOffer(ctx context.Context, offerID uuid.UUID, req *models.UpdateOfferRequest) (*models.Offer, error) {
	if err := validateOfferPayload(req.Title, req.Type, req.Discount, req.StartDate, req.EndDate); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	query := `
		UPDATE offers
		SET title = $1, description = $2, type = $3, discount = $4, products = $5,
		    is_active = $6, start_date = $7, end_date = $8, image = $9, updated_at = $10
		WHERE id = $11
	`

	result, err := s.db.ExecContext(ctx, query, req.Title, req.Description, req.Type, req.Discount,
		pq.Array(req.Products), req.IsActive, req.StartDate, req.EndDate, req.Image, time.Now(), offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("offer not found", nil)
	}

	return s.GetOffer(ctx, offerID)
}

// ToggleOffer включает или выключает акцию.
func (s *OfferService) ToggleOffer(ctx context.Context, offerID uuid.UUID, isActive bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE offers SET is_active = $1, updated_at = $2 WHERE id = $3",
		isActive, time.Now(), offerID)
	if err != nil {
		return fmt.Errorf("failed to toggle offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("offer not found", nil)
	}
	return nil
}

// DeleteOffer удаляет акцию.
func (s *OfferService) DeleteOffer(ctx context.Context, offerID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM offers WHERE id = $1", offerID)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("offer not found", nil)
	}
	return nil
}
