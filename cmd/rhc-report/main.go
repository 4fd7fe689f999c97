package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/config"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/domain/hemodynamics"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/db"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/middleware"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/report"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "rhc-report",
		Short:         "Longitudinal right heart catheterization report generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(outlineCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the report API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// sourceFlags selects where snapshots come from: a JSON file or the database.
type sourceFlags struct {
	input   string
	subject string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "JSON file with a subject and its snapshots")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Subject UUID to load from the database")
	cmd.MarkFlagsMutuallyExclusive("input", "subject")
	cmd.MarkFlagsOneRequired("input", "subject")
}

// open builds a Service over the selected source. The returned closer
// releases the database pool when one was opened.
func (f *sourceFlags) open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*hemodynamics.Service, uuid.UUID, func(), error) {
	rc, err := reportConfig(cfg)
	if err != nil {
		return nil, uuid.Nil, nil, err
	}

	if f.input != "" {
		st, subj, err := hemodynamics.LoadFile(f.input)
		if err != nil {
			return nil, uuid.Nil, nil, err
		}
		svc := hemodynamics.NewService(st.Subjects(), st.Snapshots(), rc, logger)
		return svc, subj.ID, func() {}, nil
	}

	id, err := uuid.Parse(f.subject)
	if err != nil {
		return nil, uuid.Nil, nil, fmt.Errorf("invalid --subject: %w", err)
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, uuid.Nil, nil, err
	}
	svc := hemodynamics.NewService(hemodynamics.NewSubjectRepoPG(pool), hemodynamics.NewSnapshotRepoPG(pool), rc, logger)
	return svc, id, pool.Close, nil
}

func exportCmd() *cobra.Command {
	var src sourceFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a subject's report to a PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, id, closeFn, err := src.open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.ExportFile(ctx, id, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d pages, %d bytes)\n", out, res.Pages, res.Bytes)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "report.pdf", "Output PDF path")
	return cmd
}

func outlineCmd() *cobra.Command {
	var src sourceFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "outline",
		Short: "List the pages a report would contain without rendering it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)
			ctx := cmd.Context()

			svc, id, closeFn, err := src.open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			outline, err := svc.Outline(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outline)
			}
			return writeOutline(cmd.OutOrStdout(), outline)
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outline as JSON")
	return cmd
}

func writeOutline(w io.Writer, outline []report.OutlineEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tKIND\tTITLE\tNOTE")
	for _, e := range outline {
		note := ""
		if e.Clipped {
			note = "truncated"
		}
		fmt.Fprintf(tw, "%d/%d\t%s\t%s\t%s\n", e.Index, e.Total, e.Kind, e.Title, note)
	}
	return tw.Flush()
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
				count, err := m.Up(ctx, schema)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				statuses, err := m.Status(ctx, schema)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Migration status for schema: %s\n", schema)
				return writeStatus(cmd.OutOrStdout(), statuses)
			})
		},
	}
	cmd.AddCommand(statusCmd)

	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("schema", "", "Target schema (defaults to DB_SCHEMA)")
		c.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	}
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator, schema string) error) error {
	schema, _ := cmd.Flags().GetString("schema")
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if schema == "" {
		schema = cfg.DBSchema
	}

	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, fsys), schema)
}

func writeStatus(w io.Writer, statuses []db.MigrationStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, s.Name, status, appliedAt)
	}
	return tw.Flush()
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		Schema:   cfg.DBSchema,
	})
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	rc, err := reportConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid report configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	svc := hemodynamics.NewService(hemodynamics.NewSubjectRepoPG(pool), hemodynamics.NewSnapshotRepoPG(pool), rc, logger)
	e := newServer(cfg, logger, svc)

	e.GET("/health/db", db.HealthHandler(pool, cfg.DBSchema))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires the middleware chain and the report routes. Database
// wiring stays in runServer so the chain can be exercised without a pool.
func newServer(cfg *config.Config, logger zerolog.Logger, svc *hemodynamics.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
	}))
	apiV1.Use(middleware.BodyLimit(cfg.BodyLimit))
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	hemodynamics.NewHandler(svc).RegisterRoutes(apiV1)
	return e
}
