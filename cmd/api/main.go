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

	httpadapter "github.com/kirillkom/papercheck/internal/adapters/http"
	"github.com/kirillkom/papercheck/internal/bootstrap"
	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/observability/logging"
	"github.com/kirillkom/papercheck/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("api", "info")
		log.Fatal().Err(err).Msg("config_error")
	}
	logging.New("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap_error")
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.SubmitUC, app.QueryUC, metrics.NewHTTPServerMetrics("api")).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("api_listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api_server_error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api_shutdown_error")
	}
}
