package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/email"
	"github.com/opdbook/booking-api/internal/handler"
	appointmentHandler "github.com/opdbook/booking-api/internal/handler/appointment"
	authHandler "github.com/opdbook/booking-api/internal/handler/auth"
	bookingHandler "github.com/opdbook/booking-api/internal/handler/booking"
	paymentHandler "github.com/opdbook/booking-api/internal/handler/payment"
	slotHandler "github.com/opdbook/booking-api/internal/handler/slot"
	"github.com/opdbook/booking-api/internal/middleware"
	"github.com/opdbook/booking-api/internal/repository/postgres"
	redisrepo "github.com/opdbook/booking-api/internal/repository/redis"
	"github.com/opdbook/booking-api/internal/router"
	appointmentService "github.com/opdbook/booking-api/internal/service/appointment"
	authService "github.com/opdbook/booking-api/internal/service/auth"
	bookingService "github.com/opdbook/booking-api/internal/service/booking"
	slotService "github.com/opdbook/booking-api/internal/service/slot"
	"github.com/opdbook/booking-api/pkg/auth"
	"github.com/opdbook/booking-api/pkg/gateway/razorpay"
	"github.com/opdbook/booking-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	zl := appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	sessionRepo, err := redisrepo.NewSessionRepository(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	adminUserRepo := postgres.NewAdminUserRepository(db)

	gw := razorpay.New(razorpay.Config{
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
	}, zl)

	mailer := email.NewGomailService(cfg.SMTP, zl)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	slotSvc := slotService.NewService(appointmentRepo, cfg.Clinic, zl)
	bookingSvc := bookingService.NewService(sessionRepo, appointmentRepo, paymentRepo, slotSvc, gw, mailer, cfg, zl)
	authSvc := authService.NewService(adminUserRepo, jwtSvc, zl)
	appointmentSvc := appointmentService.NewService(appointmentRepo, zl)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	h := handler.NewHandler()
	bookingH := bookingHandler.NewHandler(bookingSvc)
	paymentH := paymentHandler.NewHandler(bookingSvc)
	slotH := slotHandler.NewHandler(slotSvc)
	authH := authHandler.NewHandler(authSvc)
	adminH := appointmentHandler.NewHandler(appointmentSvc)

	r := router.NewRouter(
		authMiddleware,
		bookingH,
		paymentH,
		slotH,
		authH,
		adminH,
		h,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:      cfg.Server.RateLimitBurst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	zl.Info().Int("port", cfg.Server.Port).Msg("Booking API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
