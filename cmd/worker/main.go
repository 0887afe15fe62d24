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

	"github.com/kirillkom/rfp-matcher/internal/bootstrap"
	"github.com/kirillkom/rfp-matcher/internal/config"
	"github.com/kirillkom/rfp-matcher/internal/observability/logging"
	"github.com/kirillkom/rfp-matcher/internal/observability/metrics"
)

const serviceName = "rfp-matcher-worker"

// One batch covers the whole vendor roster; the ceiling only guards
// against a wedged judge backend.
const batchTimeout = 15 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeRFPActivated(ctx, func(handlerCtx context.Context, rfpID string) error {
		batchCtx, cancel := context.WithTimeout(handlerCtx, batchTimeout)
		defer cancel()

		workerMetrics.StartBatch()
		start := time.Now()
		report, err := app.Batch.ScoreAllVendors(batchCtx, rfpID)
		workerMetrics.FinishBatch(serviceName, time.Since(start), err)
		if err != nil {
			return err
		}

		workerMetrics.ObserveReport(serviceName, report)
		slog.Info("batch scoring finished",
			"rfp_id", report.RFPID,
			"vendors", report.VendorCount,
			"judge_scored", report.JudgeScored,
			"fallback_scored", report.FallbackScored,
			"persisted", report.Persisted,
			"persist_failures", report.PersistFailures,
			"notifications_sent", report.NotificationsSent,
			"notification_failures", report.NotificationFailures,
			"elapsed_ms", report.Elapsed.Milliseconds(),
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
