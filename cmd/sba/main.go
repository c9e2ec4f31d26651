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

	"github.com/ak/sba/internal/app"
	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/infrastructure/repositories"
	"github.com/ak/sba/internal/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
)

func main() {
	app.Version = version

	rootCmd := &cobra.Command{
		Use:   "sba",
		Short: "Soil Biostimulant Assistant - brew planning for aerated teas",
		Long: `SBA plans aerated biostimulant teas for growers. It ships an ingredient
catalog with dosing envelopes, suggests substitutes for ingredients that are
out of stock or unavailable in your region, and builds stage-specific brew
recipes. The server keeps inventory, brew sessions and field logs.`,
		SilenceUsage: true,
	}

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "SBA version %s (built %s)\n", version, buildTime)
		},
	})

	// Serve command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the SBA server",
		RunE:  runServe,
	})

	rootCmd.AddCommand(
		newCatalogCmd(),
		newSuggestCmd(),
		newRecipeCmd(),
		newTokenCmd(),
		newBackupCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and the root logger
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// openStorage connects the configured document store within the init timeout
func openStorage(cfg *config.Config, log *logger.Logger) (*repositories.Provider, func(), error) {
	timeout := cfg.Storage.InitTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	repos, err := repositories.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	closeFn := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := repos.Close(shutdownCtx); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}
	return repos, closeFn, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting SBA",
		zap.String("version", version),
		zap.String("environment", cfg.App.Env),
		zap.String("storage", cfg.Storage.Driver),
	)

	repos, closeStorage, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	// Create application
	application, err := app.New(cfg, log, repos)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      application.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("address", cfg.GetAddress()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	// Graceful shutdown
	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server shutdown complete")
	return nil
}
