package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rozes-gallery/internal/cart"
	"rozes-gallery/internal/config"
	"rozes-gallery/internal/database"
	"rozes-gallery/internal/handlers"
	"rozes-gallery/internal/kafka"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
	"rozes-gallery/internal/pricing"
	"rozes-gallery/internal/redis"
	"rozes-gallery/internal/services"
)

// Срок хранения корзины в Redis.
const cartTTL = 24 * time.Hour

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting storefront server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = app.consumer.Stop()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
	app.log.Info("Server exited")
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	calculator := pricing.NewCalculator(&cfg.Pricing)
	cartStore := cart.NewStore(redisClient, log, cartTTL)

	productService := services.NewProductService(db, log)
	couponService := services.NewCouponService(db, log)
	offerService := services.NewOfferService(db, log)
	orderService := services.NewOrderService(db, log, calculator, couponService)
	incomeService := services.NewIncomeService(db, redisClient, log, &cfg.Analytics)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)
	whatsapp := services.NewWhatsAppBuilder(&cfg.Checkout)

	productHandler := handlers.NewProductHandler(productService, log)
	couponHandler := handlers.NewCouponHandler(couponService, log)
	offerHandler := handlers.NewOfferHandler(offerService, log)
	cartHandler := handlers.NewCartHandler(cartStore, productService, offerService, couponService, calculator, producer, log)
	orderHandler := handlers.NewOrderHandler(orderService, cartStore, whatsapp, producer, log)
	analyticsHandler := handlers.NewAnalyticsHandler(incomeService, &cfg.Analytics, log)
	healthHandler := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	registerEventHandlers(consumer, incomeService, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	mux := setupRoutes(productHandler, couponHandler, offerHandler, cartHandler, orderHandler, analyticsHandler, healthHandler, rateLimitHandler, rateLimiter, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		mux:      mux,
		server:   server,
	}, nil
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(productHandler *handlers.ProductHandler, couponHandler *handlers.CouponHandler, offerHandler *handlers.OfferHandler, cartHandler *handlers.CartHandler, orderHandler *handlers.OrderHandler, analyticsHandler *handlers.AnalyticsHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Catalog endpoints
	mux.HandleFunc("/api/products", applyAPI(handleProductsRoute(productHandler)))
	mux.HandleFunc("/api/products/", applyAPI(handleProductRoute(productHandler)))

	// Coupon endpoints
	mux.HandleFunc("/api/coupons", applyAPI(handleCouponsRoute(couponHandler)))
	mux.HandleFunc("/api/coupons/stats", applyAPI(couponHandler.GetStats))
	mux.HandleFunc("/api/coupons/validate", applyAPI(couponHandler.ValidateCoupon))
	mux.HandleFunc("/api/coupons/", applyAPI(handleCouponRoute(couponHandler)))

	// Offer endpoints
	mux.HandleFunc("/api/offers", applyAPI(handleOffersRoute(offerHandler)))
	mux.HandleFunc("/api/offers/", applyAPI(handleOfferRoute(offerHandler)))

	// Cart endpoints (session scoped)
	mux.HandleFunc("/api/cart", applyAPI(handleCartRoute(cartHandler)))
	mux.HandleFunc("/api/cart/items", applyAPI(cartHandler.AddItem))
	mux.HandleFunc("/api/cart/items/", applyAPI(handleCartItemRoute(cartHandler)))
	mux.HandleFunc("/api/cart/offers/", applyAPI(cartHandler.ApplyOffer))
	mux.HandleFunc("/api/cart/quote", applyAPI(cartHandler.Quote))

	// Order endpoints
	mux.HandleFunc("/api/orders", applyAPI(orderHandler.ListOrders))
	mux.HandleFunc("/api/orders/checkout", applyAPI(orderHandler.Checkout))
	mux.HandleFunc("/api/orders/", applyAPI(handleOrderRoute(orderHandler)))

	// Analytics endpoints
	mux.HandleFunc("/api/analytics/income", applyAPI(analyticsHandler.GetIncomeReport))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", applyAPI(rateLimitHandler.Status))

	return mux
}

// handleProductsRoute обрабатывает коллекцию товаров
func handleProductsRoute(handler *handlers.ProductHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListProducts(w, r)
		case http.MethodPost:
			handler.CreateProduct(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleProductRoute обрабатывает отдельный товар
func handleProductRoute(handler *handlers.ProductHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetProduct(w, r)
		case http.MethodPut:
			handler.UpdateProduct(w, r)
		case http.MethodDelete:
			handler.DeleteProduct(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCouponsRoute обрабатывает коллекцию купонов
func handleCouponsRoute(handler *handlers.CouponHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListCoupons(w, r)
		case http.MethodPost:
			handler.CreateCoupon(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCouponRoute обрабатывает отдельный купон
func handleCouponRoute(handler *handlers.CouponHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/toggle") {
			// Включение/выключение купона
			if r.Method == http.MethodPatch {
				handler.ToggleCoupon(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		switch r.Method {
		case http.MethodGet:
			handler.GetCoupon(w, r)
		case http.MethodPut:
			handler.UpdateCoupon(w, r)
		case http.MethodDelete:
			handler.DeleteCoupon(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleOffersRoute обрабатывает коллекцию акций
func handleOffersRoute(handler *handlers.OfferHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListOffers(w, r)
		case http.MethodPost:
			handler.CreateOffer(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleOfferRoute обрабатывает отдельную акцию
func handleOfferRoute(handler *handlers.OfferHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/toggle") {
			// Включение/выключение акции
			if r.Method == http.MethodPatch {
				handler.ToggleOffer(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		switch r.Method {
		case http.MethodGet:
			handler.GetOffer(w, r)
		case http.MethodPut:
			handler.UpdateOffer(w, r)
		case http.MethodDelete:
			handler.DeleteOffer(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCartRoute обрабатывает корзину целиком
func handleCartRoute(handler *handlers.CartHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetCart(w, r)
		case http.MethodDelete:
			handler.ClearCart(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCartItemRoute обрабатывает отдельную позицию корзины
func handleCartItemRoute(handler *handlers.CartHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handler.UpdateItem(w, r)
		case http.MethodDelete:
			handler.RemoveItem(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleOrderRoute обрабатывает отдельный заказ
func handleOrderRoute(handler *handlers.OrderHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/status") {
			// Обновление статуса заказа
			if r.Method == http.MethodPatch || r.Method == http.MethodPut {
				handler.UpdateOrderStatus(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		// Получение заказа по ID
		if r.Method == http.MethodGet {
			handler.GetOrder(w, r)
		} else {
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, income *services.IncomeService, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeOrderCreated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order created event")
		return nil
	})

	// Смена статуса заказа меняет выручку по завершенным заказам,
	// поэтому кеш отчета о доходах сбрасывается.
	consumer.RegisterHandler(models.EventTypeOrderStatusChanged, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order status changed event")
		return income.InvalidateCache(ctx)
	})

	consumer.RegisterHandler(models.EventTypeCouponRedeemed, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing coupon redeemed event")
		return nil
	})
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
