package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/audit"
	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/config"
	"github.com/estudio-carvalho/booking-api/internal/database"
	"github.com/estudio-carvalho/booking-api/internal/handler"
	"github.com/estudio-carvalho/booking-api/internal/middleware"
	"github.com/estudio-carvalho/booking-api/internal/queue"
	"github.com/estudio-carvalho/booking-api/internal/repository"
	"github.com/estudio-carvalho/booking-api/internal/router"
	queue_publisher "github.com/estudio-carvalho/booking-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := database.Migrate(db, cfg.DBName); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient() // nil when Redis is absent; middleware degrades to pass-through
	tokens := auth.NewTokenService(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	auditLog := audit.New("logs")

	principals := repository.NewPrincipalRepo(db)
	bookings := repository.NewBookingRepo(db)
	services := repository.NewServiceRepo(db)
	quotes := repository.NewQuoteRepo(db)

	publish := handler.PublisherFunc(queue_publisher.PublishBookingCreated)

	authHandler := handler.NewAuthHandler(cfg, tokens, principals, auditLog)
	bookingHandler := handler.NewBookingHandler(cfg, tokens, bookings, principals, publish, auditLog)
	serviceHandler := handler.NewServiceHandler(services, auditLog)
	customerHandler := handler.NewCustomerHandler(principals, bookings, auditLog)
	staffHandler := handler.NewStaffHandler(cfg, principals, auditLog)
	quoteHandler := handler.NewQuoteHandler(quotes, auditLog)
	analyticsHandler := handler.NewAnalyticsHandler(principals, bookings)

	e := echo.New()
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, limit)
	router.RegisterPublic(e, serviceHandler, bookingHandler, cache)
	router.RegisterCustomer(e, bookingHandler, tokens)
	router.RegisterAdmin(e, router.AdminHandlers{
		Bookings:  bookingHandler,
		Services:  serviceHandler,
		Customers: customerHandler,
		Staff:     staffHandler,
		Quotes:    quoteHandler,
		Analytics: analyticsHandler,
	}, tokens)

	go queue.StartBookingConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
