package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisdriver "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/config"
	"github.com/meditrack/clinic-api/internal/repository/cached"
	"github.com/meditrack/clinic-api/internal/repository/postgres"
	billingService "github.com/meditrack/clinic-api/internal/service/billing"
	reminderService "github.com/meditrack/clinic-api/internal/service/reminder"
	"github.com/meditrack/clinic-api/internal/worker"
	"github.com/meditrack/clinic-api/pkg/logger"
	"github.com/meditrack/clinic-api/pkg/messaging/redis"
	"github.com/meditrack/clinic-api/pkg/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	opts, err := redisdriver.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	broker, err := redis.NewRedisBroker(redisdriver.NewClient(opts), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	patientRepo := cached.NewPatientRepository(postgres.NewPatientRepository(db), cfg.Scheduling.CacheTTL)
	providerRepo := cached.NewProviderRepository(postgres.NewProviderRepository(db), cfg.Scheduling.CacheTTL)

	clk := clock.New()
	billingSvc := billingService.NewService(appointmentRepo, paymentRepo, patientRepo, providerRepo, clk, appLogger)
	reminderSvc := reminderService.NewService(appointmentRepo, patientRepo, clk, appLogger)

	engine, err := worker.NewEngine(
		providerRepo,
		billingSvc,
		reminderSvc,
		broker,
		appLogger,
		metrics.NewMetrics("clinic", "worker"),
		worker.Config{
			ReconcileSchedule: cfg.Worker.ReconcileSchedule,
			ReminderSchedule:  cfg.Worker.ReminderSchedule,
			ReminderTemplate:  cfg.Scheduling.ReminderTemplate,
			LeadHours:         cfg.Scheduling.LeadHours,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create worker engine")
	}

	// Metrics endpoint for the worker process.
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	engine.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down...")
	<-engine.Stop().Done()
	log.Info().Msg("worker exited properly")
}
