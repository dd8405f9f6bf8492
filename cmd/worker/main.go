package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/email"
	"github.com/opdbook/booking-api/internal/repository/postgres"
	redisrepo "github.com/opdbook/booking-api/internal/repository/redis"
	bookingService "github.com/opdbook/booking-api/internal/service/booking"
	slotService "github.com/opdbook/booking-api/internal/service/slot"
	"github.com/opdbook/booking-api/internal/worker"
	"github.com/opdbook/booking-api/pkg/gateway/razorpay"
	"github.com/opdbook/booking-api/pkg/logger"
)

// The worker owns the payment deadline sweep: any order stuck past its
// verification window is failed and the patient is pointed at support.
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

	gw := razorpay.New(razorpay.Config{
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
	}, zl)

	slotSvc := slotService.NewService(appointmentRepo, cfg.Clinic, zl)
	bookingSvc := bookingService.NewService(sessionRepo, appointmentRepo, paymentRepo, slotSvc, gw, email.Noop{}, cfg, zl)

	reaper := worker.NewReaper(bookingSvc, 30*time.Second, zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reaper.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("payment reaper failed")
	}

	log.Info().Msg("worker exited properly")
}
