package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisdriver "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/config"
	appointmentHandler "github.com/meditrack/clinic-api/internal/handler/appointment"
	billingHandler "github.com/meditrack/clinic-api/internal/handler/billing"
	healthHandler "github.com/meditrack/clinic-api/internal/handler/health"
	reminderHandler "github.com/meditrack/clinic-api/internal/handler/reminder"
	"github.com/meditrack/clinic-api/internal/lock"
	"github.com/meditrack/clinic-api/internal/middleware"
	"github.com/meditrack/clinic-api/internal/repository/cached"
	"github.com/meditrack/clinic-api/internal/repository/postgres"
	"github.com/meditrack/clinic-api/internal/router"
	billingService "github.com/meditrack/clinic-api/internal/service/billing"
	reminderService "github.com/meditrack/clinic-api/internal/service/reminder"
	schedulingService "github.com/meditrack/clinic-api/internal/service/scheduling"
	"github.com/meditrack/clinic-api/pkg/logger"
	"github.com/meditrack/clinic-api/pkg/validator"
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

	if err := validator.RegisterSlotFormat(); err != nil {
		log.Fatal().Err(err).Msg("failed to register slot validation")
	}

	// Repositories; patient/provider reads go through the TTL cache.
	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	patientRepo := cached.NewPatientRepository(postgres.NewPatientRepository(db), cfg.Scheduling.CacheTTL)
	providerRepo := cached.NewProviderRepository(postgres.NewProviderRepository(db), cfg.Scheduling.CacheTTL)

	// Booking guard: distributed lock when Redis is on, in-process
	// mutexes otherwise.
	var locker lock.Locker
	if cfg.Redis.Enabled {
		opts, err := redisdriver.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		locker = lock.NewRedis(redisdriver.NewClient(opts), cfg.Redis.LockTTL)
	} else {
		locker = lock.NewLocal()
	}

	clk := clock.New()
	schedulingSvc := schedulingService.NewService(appointmentRepo, patientRepo, providerRepo, locker, clk)
	billingSvc := billingService.NewService(appointmentRepo, paymentRepo, patientRepo, providerRepo, clk, appLogger)
	reminderSvc := reminderService.NewService(appointmentRepo, patientRepo, clk, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		appointmentHandler.NewHandler(schedulingSvc),
		billingHandler.NewHandler(billingSvc),
		reminderHandler.NewHandler(reminderSvc, cfg.Scheduling.ReminderTemplate, cfg.Scheduling.LeadHours),
		router.Config{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "clinic_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

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
