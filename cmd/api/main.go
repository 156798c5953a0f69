package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/mkuzmin/docanalyst/internal/adapters/http"
	"github.com/mkuzmin/docanalyst/internal/bootstrap"
	"github.com/mkuzmin/docanalyst/internal/config"
	"github.com/mkuzmin/docanalyst/internal/observability/logging"
	"github.com/mkuzmin/docanalyst/internal/observability/metrics"
)

const serviceName = "docanalyst-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(
		app.IngestUC,
		app.AnswerUC,
		app.Registry,
		app.RemoveUC,
		app.Index,
		serverMetrics,
		httpadapter.Config{
			ServiceName:       serviceName,
			Collection:        cfg.QdrantCollection,
			RateLimitRPS:      cfg.APIRateLimitRPS,
			RateLimitBurst:    cfg.APIRateLimitBurst,
			MaxConcurrent:     cfg.APIMaxConcurrent,
			BackpressureWait:  time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
			VectorIndexTarget: cfg.QdrantURL,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort, "collection", cfg.QdrantCollection)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown", "error", err)
	}
}
