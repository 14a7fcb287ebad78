package services

import (
	"context"
	"fmt"
	"time"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/database"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/redis"

	"github.com/shopspring/decimal"
)

const (
	defaultIncomeCacheTTL   = 10 * time.Minute
	defaultWeeklySeriesDays = 7
)

// IncomeService агрегирует выручку по завершённым заказам и кеширует
// готовый отчёт. Заказы в других статусах в выручку не входят.
type IncomeService struct {
	db         *database.DB
	redis      *redis.Client
	log        *logger.Logger
	cacheTTL   time.Duration
	seriesDays int
}

// NewIncomeService создает новый сервис аналитики доходов.
func NewIncomeService(db *database.DB, redisClient *redis.Client, log *logger.Logger, cfg *config.AnalyticsConfig) *IncomeService {
	cacheTTL := defaultIncomeCacheTTL
	seriesDays := defaultWeeklySeriesDays

	if cfg != nil {
		if cfg.CacheTTLMinutes > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		}
		if cfg.WeeklySeriesDays > 0 {
			seriesDays = cfg.WeeklySeriesDays
		}
	}

	return &IncomeService{
		db:         db,
		redis:      redisClient,
		log:        log,
		cacheTTL:   cacheTTL,
		seriesDays: seriesDays,
	}
}

// GetReport возвращает отчёт по доходам с кешированием.
func (s *IncomeService) GetReport(ctx context.Context, now time.Time) (*models.IncomeReport, error) {
	cacheKey := s.cacheKey(now)

	var cached models.IncomeReport
	if s.tryGetFromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	stats, ordersToday, err := s.fetchStats(ctx, now)
	if err != nil {
		return nil, err
	}

	series, err := s.fetchWeeklySeries(ctx, now)
	if err != nil {
		return nil, err
	}

	categories, err := s.fetchCategoryIncome(ctx)
	if err != nil {
		return nil, err
	}

	avgOrder, err := s.fetchAverageOrderValue(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.IncomeReport{
		Stats:             *stats,
		WeeklySeries:      series,
		Categories:        categories,
		AverageOrderValue: avgOrder,
		OrdersToday:       ordersToday,
		GeneratedAt:       time.Now(),
	}

	s.saveToCache(ctx, cacheKey, report)
	return report, nil
}

// InvalidateCache сбрасывает кешированные отчёты. Вызывается при
// завершении заказа.
func (s *IncomeService) InvalidateCache(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.DeleteByPrefix(ctx, redis.KeyPrefixIncome)
}

func (s *IncomeService) fetchStats(ctx context.Context, now time.Time) (*models.IncomeStats, int, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -6)
	monthStart := dayStart.AddDate(0, 0, -29)
	prevWeekStart := weekStart.AddDate(0, 0, -7)
	prevMonthStart := monthStart.AddDate(0, 0, -30)

	query := `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE created_at >= $1), 0) AS today,
			COALESCE(SUM(total) FILTER (WHERE created_at >= $2), 0) AS weekly,
			COALESCE(SUM(total) FILTER (WHERE created_at >= $3), 0) AS monthly,
			COALESCE(SUM(total), 0) AS total,
			COALESCE(SUM(total) FILTER (WHERE created_at >= $4 AND created_at < $1), 0) AS yesterday,
			COALESCE(SUM(total) FILTER (WHERE created_at >= $5 AND created_at < $2), 0) AS prev_week,
			COALESCE(SUM(total) FILTER (WHERE created_at >= $6 AND created_at < $3), 0) AS prev_month,
			COUNT(*) FILTER (WHERE created_at >= $1) AS orders_today
		FROM orders
		WHERE status = 'completed'
	`

	var (
		stats       models.IncomeStats
		yesterday   decimal.Decimal
		prevWeek    decimal.Decimal
		prevMonth   decimal.Decimal
		ordersToday int
	)

	err := s.db.QueryRowContext(ctx, query,
		dayStart, weekStart, monthStart,
		dayStart.AddDate(0, 0, -1), prevWeekStart, prevMonthStart,
	).Scan(&stats.Today, &stats.Weekly, &stats.Monthly, &stats.Total,
		&yesterday, &prevWeek, &prevMonth, &ordersToday)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load income stats: %w", err)
	}

	stats.Growth = models.IncomeGrowth{
		Today:   growthPercent(stats.Today, yesterday),
		Weekly:  growthPercent(stats.Weekly, prevWeek),
		Monthly: growthPercent(stats.Monthly, prevMonth),
	}

	return &stats, ordersToday, nil
}

func (s *IncomeService) fetchWeeklySeries(ctx context.Context, now time.Time) ([]models.WeeklyIncomePoint, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := dayStart.AddDate(0, 0, -(s.seriesDays - 1))

	query := `
		SELECT date_trunc('day', created_at) AS day,
		       COALESCE(SUM(total), 0) AS income,
		       COUNT(*) AS orders
		FROM orders
		WHERE status = 'completed' AND created_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := s.db.QueryContext(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly income: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]models.WeeklyIncomePoint)
	for rows.Next() {
		var (
			day   time.Time
			point models.WeeklyIncomePoint
		)
		if err := rows.Scan(&day, &point.Income, &point.Orders); err != nil {
			return nil, fmt.Errorf("failed to scan weekly income: %w", err)
		}
		point.Day = day.Format("Mon")
		byDay[day.Format("2006-01-02")] = point
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly income: %w", err)
	}

	// Дни без заказов включаются с нулевой выручкой, чтобы серия всегда
	// покрывала полный период.
	series := make([]models.WeeklyIncomePoint, 0, s.seriesDays)
	for i := 0; i < s.seriesDays; i++ {
		day := from.AddDate(0, 0, i)
		point, ok := byDay[day.Format("2006-01-02")]
		if !ok {
			point = models.WeeklyIncomePoint{Day: day.Format("Mon"), Income: decimal.Zero}
		}
		series = append(series, point)
	}

	return series, nil
}

func (s *IncomeService) fetchCategoryIncome(ctx context.Context) ([]models.CategoryIncome, error) {
	query := `
		SELECT COALESCE(p.category, 'other') AS category,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS income
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'completed'
		GROUP BY category
		ORDER BY income DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load category income: %w", err)
	}
	defer rows.Close()

	var result []models.CategoryIncome
	for rows.Next() {
		var item models.CategoryIncome
		if err := rows.Scan(&item.Name, &item.Value); err != nil {
			return nil, fmt.Errorf("failed to scan category income: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category income: %w", err)
	}

	return result, nil
}

func (s *IncomeService) fetchAverageOrderValue(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(AVG(total), 0) FROM orders WHERE status = 'completed'`

	var avg decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query).Scan(&avg); err != nil {
		return decimal.Zero, fmt.Errorf("failed to load average order value: %w", err)
	}
	return avg.Round(2), nil
}

func (s *IncomeService) cacheKey(now time.Time) string {
	return redis.GenerateKey(redis.KeyPrefixIncome, now.Format("2006-01-02"))
}

func (s *IncomeService) tryGetFromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	return s.redis.Get(ctx, key, dest) == nil
}

func (s *IncomeService) saveToCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache income report")
	}
}

func growthPercent(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	growth, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return growth
}
