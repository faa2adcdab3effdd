package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/care-portal/internal/config"
	"github.com/jwalitptl/care-portal/internal/handler/admin"
	"github.com/jwalitptl/care-portal/internal/handler/appointment"
	"github.com/jwalitptl/care-portal/internal/handler/clinician"
	"github.com/jwalitptl/care-portal/internal/handler/health"
	"github.com/jwalitptl/care-portal/internal/handler/patient"
	promhandler "github.com/jwalitptl/care-portal/internal/handler/prometheus"
	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/internal/repository/postgres"
	"github.com/jwalitptl/care-portal/internal/router"
	"github.com/jwalitptl/care-portal/internal/service"
	accountService "github.com/jwalitptl/care-portal/internal/service/account"
	"github.com/jwalitptl/care-portal/internal/service/availability"
	"github.com/jwalitptl/care-portal/internal/service/booking"
	"github.com/jwalitptl/care-portal/internal/service/caregraph"
	"github.com/jwalitptl/care-portal/internal/service/prescription"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/metrics"
	"github.com/jwalitptl/care-portal/pkg/security"
	"github.com/jwalitptl/care-portal/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Logging.Console,
	})
	log.Logger = appLogger.ZL

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduling configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	accountRepo := postgres.NewAccountRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)

	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "care_portal")
	storage := service.NewStorage(cfg.Scheduling.ToRetryPolicy(), appLogger, m)

	// Services
	accountSvc := accountService.NewService(accountRepo, security.NewBcryptHasher(bcrypt.DefaultCost), storage, appLogger)
	availabilitySvc := availability.NewService(accountRepo, appointmentRepo, storage)
	bookingSvc := booking.NewService(accountRepo, appointmentRepo, storage, appLogger, m)
	graphSvc := caregraph.NewService(accountRepo, appointmentRepo, storage, loc)
	prescriptionSvc := prescription.NewService(prescriptionRepo, storage)

	tokens := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenExpiry)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Security.AllowedOrigins

	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     cors,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(tokens),
		m,
		routerConfig,
		[]router.PublicHandler{health.NewHandler(db), promhandler.New(prometheus.DefaultGatherer)},
		appointment.NewHandler(bookingSvc, graphSvc),
		clinician.NewHandler(accountSvc, availabilitySvc, graphSvc),
		patient.NewHandler(graphSvc, prescriptionSvc),
		admin.NewHandler(accountSvc, graphSvc),
	)
	r.Setup()

	srv := newServer(cfg.Server, r.Engine())

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("timezone", loc.String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func newServer(cfg config.ServerConfig, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
