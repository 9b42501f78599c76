package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"energy-agent/internal/api"
	"energy-agent/internal/metrics"
	"energy-agent/internal/publish"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP recommendation service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Infof("Starting energy agent with history %s (%s)", cfg.History.Path, cfg.History.Driver)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	c, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	if err := c.snapshot.Schedule(ctx, cfg.History.ReloadSchedule); err != nil {
		return err
	}

	hub := publish.NewHub(logger)
	publisher, err := publish.Build(cfg, hub, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()
	logger.Infof("Publishing recommendations to %v", publisher.Names())

	server := api.NewServer(cfg, api.Deps{
		Recommender: c.agent,
		Catalog:     c.catalog,
		Publisher:   publisher,
		Hub:         hub,
		Metrics:     metrics.New(),
	}, logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx); err != nil {
			logger.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	logger.Info("All services started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down...")
	cancel()

	wg.Wait()
	server.Stop()
	c.snapshot.Stop()
	logger.Info("Shutdown complete")
	return nil
}
