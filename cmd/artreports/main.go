package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/artreports/internal/config"
	"github.com/ehr/artreports/internal/domain/artstart"
	"github.com/ehr/artreports/internal/domain/cohort"
	"github.com/ehr/artreports/internal/domain/encounter"
	"github.com/ehr/artreports/internal/domain/enrollment"
	"github.com/ehr/artreports/internal/domain/observation"
	"github.com/ehr/artreports/internal/platform/auth"
	"github.com/ehr/artreports/internal/platform/db"
	"github.com/ehr/artreports/internal/platform/middleware"
	"github.com/ehr/artreports/internal/platform/reporting"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "artreports",
		Short:        "ART cohort reporting service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())
	rootCmd.AddCommand(evaluateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string, w io.Writer) zerolog.Logger {
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: cfg.DBStatementTimeout,
	})
}

// app holds the wired services shared by serve and evaluate.
type app struct {
	meta       artstart.Metadata
	calculator *artstart.Calculator
	cohorts    *cohort.Service
	registry   *reporting.Registry
}

func newApp(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*app, error) {
	meta, err := artstart.LoadMetadata(cfg.MetadataFile)
	if err != nil {
		return nil, err
	}

	calc := artstart.NewCalculator(
		meta,
		enrollment.NewService(enrollment.NewRepoPG(pool), meta.HIVProgram),
		observation.NewService(observation.NewRepoPG(pool)),
		encounter.NewService(encounter.NewRepoPG(pool)),
		logger,
	)
	calc.SetLookupTimeout(cfg.LookupTimeout)

	registry := reporting.NewRegistry()
	if err := registry.Register(artstart.NewCalculation(calc)); err != nil {
		return nil, err
	}

	return &app{
		meta:       meta,
		calculator: calc,
		cohorts:    cohort.NewService(cohort.NewRepoPG(pool)),
		registry:   registry,
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the reporting API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func authMiddleware(cfg *config.Config) (echo.MiddlewareFunc, error) {
	switch cfg.ResolvedAuthMode() {
	case config.AuthModeDevelopment:
		return auth.DevAuthMiddleware(cfg.DefaultTenant), nil
	case config.AuthModeExternal:
		return auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
			Skipper:  auth.AuthSkipper,
		}), nil
	case config.AuthModeSharedKey:
		return auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}), nil
	}
	return nil, fmt.Errorf("unsupported auth mode %q", cfg.ResolvedAuthMode())
}

func newServer(cfg *config.Config, pool *pgxpool.Pool, a *app, logger zerolog.Logger) (*echo.Echo, error) {
	authMW, err := authMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader, "X-Tenant-ID"},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(authMW)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	apiV1 := e.Group("/api/v1", middleware.RateLimit(rateLimitCfg), db.TenantMiddleware(pool, cfg.DefaultTenant))
	reporting.NewHandler(a.registry, a.cohorts, logger).RegisterRoutes(apiV1)

	return e, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, os.Stdout)

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		logger.Warn().Msg("development auth is active: every unauthenticated request is treated as admin")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	a, err := newApp(cfg, pool, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialise reporting")
		return err
	}
	logger.Info().Str("metadata", metadataSource(cfg.MetadataFile)).Msg("calculation metadata loaded")

	e, err := newServer(cfg, pool, a, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func metadataSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
