package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chaman/hospital/internal/config"
	"github.com/chaman/hospital/internal/domain/account"
	"github.com/chaman/hospital/internal/domain/admin"
	"github.com/chaman/hospital/internal/domain/clinical"
	"github.com/chaman/hospital/internal/domain/identity"
	"github.com/chaman/hospital/internal/domain/scheduling"
	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/db"
	"github.com/chaman/hospital/internal/platform/middleware"
	"github.com/chaman/hospital/internal/platform/reporting"
	"github.com/chaman/hospital/internal/platform/sandbox"
	"github.com/chaman/hospital/migrations"
)

const (
	version         = "0.1.0"
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodySize     = "1M"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-server",
		Short: "Hospital administration API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "hospital-server",
	})
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

// migrationFiles returns dir on disk, or the embedded migrations when dir
// is empty.
func migrationFiles(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
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

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationFiles(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to a migrations directory (defaults to the embedded migrations)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationFiles(dir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to a migrations directory (defaults to the embedded migrations)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format(time.RFC3339)
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo hospital dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env)

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			seeder := sandbox.NewSeeder(sandbox.NewPGStore(pool), sandbox.NewPGTxRunner(pool), cfg.BcryptCost, logger)
			sum, err := seeder.Seed(ctx, sandbox.DemoDataset())
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new row(s).\n", sum.Total())
			return nil
		},
	}
}

// infra holds the optional shared backends. Redis and Kafka replace the
// in-process defaults when configured.
type infra struct {
	revoked  auth.RevocationStore
	limiter  middleware.Limiter
	recorder middleware.AuditRecorder
	closers  []func()
}

func (i *infra) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
}

func newInfra(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*infra, error) {
	in := &infra{}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		in.closers = append(in.closers, func() { _ = client.Close() })
		in.revoked = auth.NewRedisRevocationStore(client)
		in.limiter = middleware.NewRedisLimiter(client, cfg.LoginRatePerMinute)
		logger.Info().Msg("using redis for session revocation and rate limiting")
	} else {
		mem := auth.NewMemoryRevocationStore(time.Minute)
		in.closers = append(in.closers, mem.Close)
		in.revoked = mem
		in.limiter = middleware.NewMemoryLimiter(cfg.LoginRatePerMinute, cfg.LoginRatePerMinute)
	}

	if len(cfg.KafkaBrokers) > 0 {
		rec := middleware.NewKafkaAuditRecorder(cfg.KafkaBrokers, cfg.KafkaAuditTopic, func(err error) {
			logger.Error().Err(err).Msg("audit delivery failed")
		})
		in.closers = append(in.closers, func() {
			if err := rec.Close(); err != nil {
				logger.Error().Err(err).Msg("close audit writer")
			}
		})
		in.recorder = rec
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaAuditTopic).Msg("publishing audit entries to kafka")
	}
	return in, nil
}

// newServer wires the middleware chain and every route.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, in *infra) *echo.Echo {
	mapper := apperr.Mapper{StrictForbidden: cfg.StrictForbidden}
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.SessionTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger, mapper)

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.RequestTimeout(requestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(auth.SessionMiddleware(tokens, in.revoked, auth.AuthSkipper))
	e.Use(middleware.Audit(logger, mapper, in.recorder))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api/v1")

	identitySvc := identity.NewService(identity.NewPatientRepo(pool), identity.NewDoctorRepo(pool))
	identity.NewHandler(identitySvc).RegisterRoutes(api)

	schedulingSvc := scheduling.NewService(scheduling.NewAppointmentRepo(pool))
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)

	clinicalSvc := clinical.NewService(clinical.NewMedicalRecordRepo(pool))
	clinical.NewHandler(clinicalSvc).RegisterRoutes(api)

	adminSvc := admin.NewService(admin.NewDepartmentRepo(pool), admin.NewStaffRepo(pool))
	admin.NewHandler(adminSvc).RegisterRoutes(api)

	reportingSvc := reporting.NewService(reporting.NewPGCounter(pool))
	reporting.NewHandler(reportingSvc).RegisterRoutes(api)

	accountSvc := account.NewService(account.NewUserRepo(pool), tokens, in.revoked, cfg.BcryptCost)
	account.NewHandler(accountSvc, !cfg.IsDev()).RegisterRoutes(api, middleware.RateLimit(in.limiter, logger))

	return e
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)

	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	in, err := newInfra(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialise shared backends")
		return err
	}
	defer in.Close()

	e := newServer(cfg, logger, pool, in)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
