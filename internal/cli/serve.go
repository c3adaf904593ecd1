package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flood-status-service/internal/adapter/http"
	"github.com/couchcryptid/flood-status-service/internal/adapter/hydromet"
	kafkaadapter "github.com/couchcryptid/flood-status-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-status-service/internal/config"
	"github.com/couchcryptid/flood-status-service/internal/observability"
	"github.com/couchcryptid/flood-status-service/internal/scraper"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape loop and serve the flood status API",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	return cmd
}

func runServe(addr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := hydromet.NewClient(cfg.HydrometBaseURL, cfg.HydrometTimeout, metrics, logger)

	// Report publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher scraper.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	svc := scraper.New(client, publisher, logger, metrics, cfg.ScrapeInterval)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.Error("scraper error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
