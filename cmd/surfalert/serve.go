package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"surfalert-service/internal/api"
	"surfalert-service/internal/kafka"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduler and the trigger consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			logger := a.logger
			if port != "" {
				a.cfg.API.Port = port
			}

			var wg sync.WaitGroup
			a.service.Start(&wg)

			// Kafka triggers are optional
			var consumer *kafka.Consumer
			if a.cfg.Kafka.Broker != "" {
				consumer = kafka.NewConsumer([]string{a.cfg.Kafka.Broker}, a.cfg.Kafka.Topic, a.cfg.Kafka.GroupID, a.service, logger)
				logger.Infof("Kafka consumer initialized with topic: %s", a.cfg.Kafka.Topic)
				consumer.Start(ctx, &wg)
			}

			// Start API server
			handler := api.NewHandler(a.db, a.conditions, a.catalog, a.enricher, a.service, logger)
			server := &http.Server{
				Addr:              a.cfg.API.Port,
				Handler:           api.NewRouter(logger, a.cfg, handler),
				ReadHeaderTimeout: 10 * time.Second,
			}
			serveErr := make(chan error, 1)
			go func() {
				logger.Infof("Starting API server on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case <-ctx.Done():
				logger.Infof("Shutting down...")
			case err = <-serveErr:
				logger.Errorf("API server failed: %v", err)
			}

			stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("API shutdown failed: %v", err)
			}
			a.service.Stop()
			if consumer != nil {
				if err := consumer.Close(); err != nil {
					logger.Errorf("Kafka consumer close failed: %v", err)
				}
			}
			wg.Wait()
			logger.Infof("Service stopped")
			return err
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen address, overrides API_PORT (e.g. :8080)")
	return cmd
}
