package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/docgraph/internal/bootstrap"
	"github.com/kirillkom/docgraph/internal/config"
	"github.com/kirillkom/docgraph/internal/observability/logging"
	"github.com/kirillkom/docgraph/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()

	errCh := make(chan error, 2)

	go func() {
		slog.Info("worker_subscribed", "subject", cfg.NATSIngestSubject)
		errCh <- app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
			defer cancel()

			workerMetrics.StartDocument()
			start := time.Now()
			if doc, err := app.Docs.GetByID(processCtx, documentID); err == nil {
				workerMetrics.ObserveQueueLag("worker", time.Since(doc.CreatedAt))
			}

			err := app.ProcessUC.ProcessByID(processCtx, documentID)
			workerMetrics.FinishDocument("worker", time.Since(start), err)
			return err
		})
	}()

	go func() {
		slog.Info("worker_subscribed", "subject", cfg.NATSRebuildSubject)
		errCh <- app.Queue.SubscribeSourcesChanged(ctx, func(handlerCtx context.Context, projectID string) error {
			rebuildCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()

			start := time.Now()
			_, err := app.RebuildUC.RebuildProject(rebuildCtx, projectID)
			workerMetrics.FinishRebuild("worker", time.Since(start), err)
			return err
		})
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			slog.Error("worker_subscription_error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
