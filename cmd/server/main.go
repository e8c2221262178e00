package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/car-rental-service/internal/booking"
	"github.com/iliyamo/car-rental-service/internal/config"
	"github.com/iliyamo/car-rental-service/internal/database"
	"github.com/iliyamo/car-rental-service/internal/handler"
	"github.com/iliyamo/car-rental-service/internal/middleware"
	"github.com/iliyamo/car-rental-service/internal/payment"
	"github.com/iliyamo/car-rental-service/internal/queue"
	"github.com/iliyamo/car-rental-service/internal/repository"
	"github.com/iliyamo/car-rental-service/internal/router"
	"github.com/iliyamo/car-rental-service/internal/validator"
)

func main() {
	// Local development reads .env; in production the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories and the transactional store backing the booking manager.
	cars := repository.NewCarRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	store := repository.NewStore(db, cars, reservations, payments)

	gateway := payment.NewStubGateway(cfg.PaymentProvider)
	manager := booking.NewManager(store, gateway, cfg.PaymentCurrency)

	// Redis is optional; rate limiting and caching degrade to no-ops
	// when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(cars, reservations, manager)
	customerH := handler.NewCustomerHandler(manager, cars, reservations, payments, cfg.AMQPURL)
	adminH := handler.NewAdminHandler(cars, reservations, manager, cfg.AMQPURL)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, cache)
	router.RegisterCustomer(e, customerH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// The consumer reconnects forever in the background; a broker
	// outage never blocks HTTP traffic.
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartReservationConsumer(cfg.AMQPURL); err != nil {
				log.Printf("reservation consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
