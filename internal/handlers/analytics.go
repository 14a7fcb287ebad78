package handlers

import (
	"context"
	"net/http"
	"time"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/logger"
)

// AnalyticsHandler обрабатывает запросы отчетов о доходах.
type AnalyticsHandler struct {
	income         IncomeProvider
	requestTimeout time.Duration
	log            *logger.Logger
}

// NewAnalyticsHandler создает новый обработчик аналитики.
func NewAnalyticsHandler(income IncomeProvider, cfg *config.AnalyticsConfig, log *logger.Logger) *AnalyticsHandler {
	timeout := 10 * time.Second
	if cfg != nil && cfg.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}

	return &AnalyticsHandler{
		income:         income,
		requestTimeout: timeout,
		log:            log,
	}
}

// GetIncomeReport возвращает сводку доходов для панели администратора.
// Отчет кешируется на стороне сервиса, поэтому повторные запросы в течение
// дня не нагружают базу.
func (h *AnalyticsHandler) GetIncomeReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	report, err := h.income.GetReport(ctx, time.Now())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to build income report")
		return
	}

	writeJSONResponse(w, http.StatusOK, report)
}
