package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"TechMartAPI/external/abstractapi"
	"TechMartAPI/external/midtrans"
	"TechMartAPI/external/resend"

	"TechMartAPI/internal/config"
	"TechMartAPI/internal/db"
	"TechMartAPI/internal/middleware"
	"TechMartAPI/internal/observability/metrics"
	obsmw "TechMartAPI/internal/observability/middleware"
	"TechMartAPI/internal/repository"
	"TechMartAPI/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// ======================
	// INFRA
	// ======================
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	mongoDB, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		slog.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureUserIndexes(ctx, mongoDB); err != nil {
		slog.Error("mongo index setup failed", "error", err)
		os.Exit(1)
	}

	metrics.MustRegister()

	// ======================
	// EXTERNALS
	// ======================
	var emailValidator services.EmailValidator
	if cfg.UseEmailReputation {
		emailValidator, err = abstractapi.NewAbstractReputationValidator(cfg.AbstractAPIKey)
		if err != nil {
			slog.Error("abstractapi setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		emailValidator = services.NewLocalValidator()
	}

	mailer, err := resend.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	if err != nil {
		slog.Error("resend setup failed", "error", err)
		os.Exit(1)
	}

	snapClient := midtrans.NewSnapClient(cfg.MidtransServerKey)
	jwtMgr := middleware.NewJWTManager(cfg.JWTSecret)

	// ======================
	// REPOSITORIES
	// ======================
	userRepo := repository.NewUserRepository(mongoDB)
	productRepo := repository.NewProductRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	salesRepo := repository.NewSalesRepository(pool)

	// ======================
	// SERVICES
	// ======================
	authSvc := services.NewAuthService(userRepo, mailer, emailValidator, jwtMgr)
	productSvc := services.NewProductService(productRepo)
	cartSvc := services.NewCartService(cartRepo, productRepo)
	orderSvc := services.NewOrderService(orderRepo, cartRepo, productRepo)
	paymentSvc := services.NewPaymentService(paymentRepo, orderRepo, snapClient, cfg.MidtransServerKey)
	salesSvc := services.NewSalesService(salesRepo)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(obsmw.WithMetrics())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerAuthRoutes(api, authSvc, jwtMgr)
	registerProductRoutes(api, productSvc, jwtMgr)
	registerCartRoutes(api, cartSvc, jwtMgr)
	registerOrderRoutes(api, orderSvc, jwtMgr)
	registerPaymentRoutes(api, paymentSvc, jwtMgr)
	registerSalesRoutes(api, salesSvc, jwtMgr)

	// ======================
	// SERVER
	// ======================
	slog.Info("starting server", "port", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
