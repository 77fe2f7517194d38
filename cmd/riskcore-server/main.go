package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/telecare/riskcore/internal/config"
	"github.com/telecare/riskcore/internal/domain/medsafety"
	"github.com/telecare/riskcore/internal/domain/sla"
	"github.com/telecare/riskcore/internal/domain/triage"
	"github.com/telecare/riskcore/internal/platform/auth"
	"github.com/telecare/riskcore/internal/platform/db"
	"github.com/telecare/riskcore/internal/platform/middleware"
	"github.com/telecare/riskcore/internal/platform/notification"
	"github.com/telecare/riskcore/internal/refdata"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "riskcore-server",
		Short: "Clinical risk and safety decision API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List migrations found on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			migrations, err := db.NewMigrator(nil, dir).LoadMigrations()
			if err != nil {
				return err
			}
			for _, m := range migrations {
				fmt.Printf("%04d %s\n", m.Version, m.Name)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	tables := refdata.Default()
	ctx := context.Background()

	// SLA persistence: database-backed when configured, otherwise the
	// in-memory store (single-instance development only).
	var recordRepo sla.SLARecordRepository
	var consultReader sla.ConsultationReader
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
		recordRepo = sla.NewRecordRepoPG(pool)
		consultReader = sla.NewConsultationReaderPG(pool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set; using in-memory SLA store")
		recordRepo = sla.NewMemoryRepo()
		consultReader = nil
	}

	transport := &notification.LogTransport{Logger: logger}
	directory := &notification.StaticDirectory{Email: cfg.EscalationEmail}
	notifier := notification.NewService(directory, transport, transport, logger)

	analyzer := triage.NewAnalyzer(tables, logger)
	checker := medsafety.NewChecker(tables, logger)
	monitor := sla.NewMonitor(recordRepo, consultReader, notifier, tables, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set; authentication disabled")
		apiV1.Use(auth.DevMiddleware())
	} else {
		apiV1.Use(auth.Middleware(cfg.JWTSecret))
	}

	triage.NewHandler(analyzer).RegisterRoutes(apiV1)
	medsafety.NewHandler(checker).RegisterRoutes(apiV1)
	sla.NewHandler(monitor).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped cleanly")
	return nil
}
