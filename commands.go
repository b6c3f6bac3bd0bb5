package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sanitation-feedback-server/config"
	"sanitation-feedback-server/database"
	"sanitation-feedback-server/jobs"
	"sanitation-feedback-server/routes"
	"sanitation-feedback-server/utils"
	"sanitation-feedback-server/websocket"
)

const (
	serviceName     = "sanitation-feedback-server"
	shutdownTimeout = 10 * time.Second
)

// app holds what every command needs once the root pre-run has executed.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Sanitation feedback and staff performance API",
		Long:          `Collects public ratings of sanitation facilities and lets admins grade the staff assigned to them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), "")
		},
	}

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(seedCmd(a))
	rootCmd.AddCommand(hashPasswordCmd())

	return rootCmd
}

// load reads and validates configuration, then builds the logger
func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.cfg = cfg

	a.logger, err = utils.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger.Info("configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("db_driver", cfg.Database.Driver))
	return nil
}

func serveCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")
	return cmd
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)
			a.logger.Info("migration complete")
			return nil
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load locations, accounts and assignments from a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				a.cfg.Seed.File = file
			}
			data, err := a.seedData()
			if err != nil {
				return err
			}
			if data == nil {
				return errors.New("SEED_FILE or --file is required in production")
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)
			return database.Seed(cmd.Context(), db, data, a.logger)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (overrides SEED_FILE)")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for use as password_hash in a seed file",
		Long:  `Hashes the argument, or the first line of stdin when no argument is given.`,
		Args:  cobra.MaximumNArgs(1),
		// needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					password = strings.TrimRight(scanner.Text(), "\r\n")
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := utils.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// openDatabase connects and makes sure every table exists.
func (a *app) openDatabase() (*gorm.DB, error) {
	db, err := database.Open(a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

// seedData returns the configured seed file, the embedded default outside production,
// or nil when nothing should be seeded.
func (a *app) seedData() (*database.SeedData, error) {
	if a.cfg.Seed.File != "" {
		return database.LoadSeedFile(a.cfg.Seed.File)
	}
	if a.cfg.IsProduction() {
		return nil, nil
	}
	return database.DefaultSeed()
}

func (a *app) serve(ctx context.Context, port string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port == "" {
		port = a.cfg.Server.Port
	}
	switch a.cfg.Server.GinMode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(a.cfg.Server.GinMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	db, err := a.openDatabase()
	if err != nil {
		a.logger.Error("failed to initialize database", zap.Error(err))
		return err
	}
	defer database.Close(db)

	data, err := a.seedData()
	if err != nil {
		return err
	}
	if data == nil {
		a.logger.Info("no seed file configured, skipping seed")
	} else if err := database.Seed(ctx, db, data, a.logger); err != nil {
		return err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(a.logger)
	go hub.Run(hubCtx)

	deps := routes.NewDependencies(a.cfg, db, a.logger, hub)
	router := routes.NewRouter(deps)

	cleanupJob := jobs.NewLimiterCleanupJob(deps.Limiter, jobs.DefaultCleanupInterval, jobs.DefaultLimiterMaxIdle, a.logger)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
