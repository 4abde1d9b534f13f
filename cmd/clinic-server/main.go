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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinichq/clinic/internal/config"
	"github.com/clinichq/clinic/internal/domain/content"
	"github.com/clinichq/clinic/internal/domain/directory"
	"github.com/clinichq/clinic/internal/domain/identity"
	"github.com/clinichq/clinic/internal/domain/program"
	"github.com/clinichq/clinic/internal/domain/scheduling"
	"github.com/clinichq/clinic/internal/domain/stats"
	"github.com/clinichq/clinic/internal/platform/apperr"
	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/internal/platform/db"
	"github.com/clinichq/clinic/internal/platform/metrics"
	"github.com/clinichq/clinic/internal/platform/middleware"
	"github.com/clinichq/clinic/internal/platform/sandbox"
	"github.com/clinichq/clinic/internal/platform/token"
)

// participantDirectory adapts the identity service to the consumer-side
// interfaces the scheduling and program domains declare, avoiding a
// cross-domain import.
type participantDirectory struct {
	identity *identity.Service
}

func (d *participantDirectory) ParticipantIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := d.identity.GetParticipantByUser(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (d *participantDirectory) ParticipantExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := d.identity.GetParticipant(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo data (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.IsDev() {
				return fmt.Errorf("refusing to seed: ENV=%q is not development", cfg.Env)
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			result, err := sandbox.NewSeeder(sandbox.DefaultSeedConfig()).Apply(ctx, pool)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Printf("Seeded %d users, %d doctors, %d participants, %d programs, %d appointments, %d articles in %s.\n",
				result.Users, result.Doctors, result.Participants,
				result.Programs, result.Appointments, result.Articles, result.Duration)
			fmt.Printf("All accounts use the password %q.\n", sandbox.DemoPassword)
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tokens := token.NewService(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	promRegistry := metrics.NewRegistry()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(promRegistry.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.Audit(logger))

	// Repositories and services
	userRepo := identity.NewUserRepoPG(pool)
	participantRepo := identity.NewParticipantRepoPG(pool)
	txRunner := identity.TxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	})
	identitySvc := identity.NewService(userRepo, participantRepo, txRunner)

	directorySvc := directory.NewService(
		directory.NewDoctorRepoPG(pool),
		directory.NewSpecializationRepoPG(pool),
		directory.NewInsuranceRepoPG(pool),
	)

	participants := &participantDirectory{identity: identitySvc}
	schedulingSvc := scheduling.NewService(scheduling.NewRepoPG(pool), participants)
	programSvc := program.NewService(
		program.NewProgramRepoPG(pool),
		program.NewCategoryRepoPG(pool),
		program.NewEnrollmentRepoPG(pool),
		program.NewTaskRepoPG(pool),
		participants,
	)
	contentSvc := content.NewService(content.NewArticleRepoPG(pool))
	statsSvc := stats.NewService(stats.NewRepoPG(pool))

	// Route groups: public endpoints carry no auth; everything under
	// /api/v1 requires a valid token.
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(auth.Middleware(tokens))

	identity.NewHandler(identitySvc, tokens).RegisterRoutes(public, api)
	directory.NewHandler(directorySvc).RegisterRoutes(public, api)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	program.NewHandler(programSvc).RegisterRoutes(public, api)
	content.NewHandler(contentSvc).RegisterRoutes(public, api)
	stats.NewHandler(statsSvc).RegisterRoutes(api)

	if cfg.IsDev() {
		dev := e.Group("/dev")
		sandbox.NewHandler(pool).RegisterRoutes(dev)
		logger.Warn().Msg("development seed endpoint enabled at POST /dev/seed")
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", promRegistry.Handler())

	// Serve with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
