package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/go-saas-starter/app/db"
	appLogger "github.com/FACorreiaa/go-saas-starter/app/logger"
	"github.com/FACorreiaa/go-saas-starter/app/observability/metrics"
	"github.com/FACorreiaa/go-saas-starter/app/tracer"
	"github.com/FACorreiaa/go-saas-starter/config"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/api/mailer"
	"github.com/FACorreiaa/go-saas-starter/internal/api/oauth"
	"github.com/FACorreiaa/go-saas-starter/internal/api/session"
	"github.com/FACorreiaa/go-saas-starter/internal/api/stats"
	"github.com/FACorreiaa/go-saas-starter/internal/api/user"
	"github.com/FACorreiaa/go-saas-starter/internal/router"
)

// @title           Go SaaS Starter API
// @version         1.0
// @description     Authentication, session and profile API for the SaaS starter.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metricsHandler, err := tracer.InitTracingAndMetrics("go-saas-starter")
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	tokenIssuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		logger.Error("Failed to initialize token issuer", slog.Any("error", err))
		os.Exit(1)
	}

	smtpMailer, err := mailer.NewSMTPMailer(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize mailer", slog.Any("error", err))
		os.Exit(1)
	}

	sessionRepo := session.NewPostgresSessionRepo(pool, logger)
	sessionService := session.NewSessionService(sessionRepo, cfg.Auth.SessionPageSize, logger)
	sessionHandler := session.NewSessionHandlerImpl(sessionService, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewUserHandlerImpl(userService, logger)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, sessionService, userService, smtpMailer, tokenIssuer, cfg.Auth.OTPWindow, logger)
	authHandler := auth.NewAuthHandlerImpl(authService, logger)

	oauth.SetupProviders(cfg)
	oauthService := oauth.NewOAuthService(authRepo, sessionService, userService, tokenIssuer, logger)
	oauthHandler := oauth.NewOAuthHandlerImpl(oauthService, cfg.OAuth.FrontendURL, logger)

	statsRepo := stats.NewPostgresStatsRepo(pool, logger)
	statsService := stats.NewStatsService(statsRepo, logger)
	statsHandler := stats.NewStatsHandlerImpl(statsService, logger)

	// --- Router Setup ---
	mainRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		SessionHandler:         sessionHandler,
		UserHandler:            userHandler,
		OAuthHandler:           oauthHandler,
		StatsHandler:           statsHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, tokenIssuer, authService, userService, sessionService),
		AllowedOrigins:         []string{cfg.OAuth.FrontendURL, "http://localhost:5173", "http://localhost:3000"},
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", mainRouter)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := chi.NewMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
