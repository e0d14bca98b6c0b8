package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/bootstrap"
	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/observability/logging"
	"github.com/kirillkom/papercheck/internal/observability/metrics"
)

const (
	serviceName    = "worker"
	processTimeout = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(serviceName, "info")
		log.Fatal().Err(err).Msg("config_error")
	}
	logging.New(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap_error")
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	processUC := app.ProcessUC.WithObserver(workerMetrics.Observer(serviceName))

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metricsMux(workerMetrics.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", metricsServer.Addr).Msg("worker_metrics_listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("worker_metrics_server_error")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	checks := newDispatcher(cfg.WorkerMaxInFlight, func(submissionID string) {
		processCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), processTimeout)
		defer cancel()

		workerMetrics.StartCheck()
		started := time.Now()
		err := processUC.ProcessByID(processCtx, submissionID)
		workerMetrics.FinishCheck(serviceName, time.Since(started), err)
		if err != nil {
			log.Error().Err(err).Str("submission_id", submissionID).Msg("process_submission_failed")
		}
	})

	log.Info().Str("subject", cfg.NATSSubject).Int("max_in_flight", cap(checks.slots)).Msg("worker_subscribed")
	err = app.Queue.SubscribeSubmissionReceived(ctx, func(_ context.Context, submissionID string) error {
		return checks.dispatch(ctx, submissionID)
	})
	checks.wait()
	if err != nil {
		log.Fatal().Err(err).Msg("worker_subscribe_error")
	}
}

func metricsMux(metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
