// Command server starts the resume screening HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/4laawi/recruit-assistant/internal/adapter/ai/inference"
	"github.com/4laawi/recruit-assistant/internal/adapter/ai/openrouter"
	"github.com/4laawi/recruit-assistant/internal/adapter/httpserver"
	"github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/gateway"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/huawei"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/ocrspace"
	"github.com/4laawi/recruit-assistant/internal/app"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Text extraction: signed-OCR gateway first, OCR.space second.
	extractSvc := usecase.NewExtractService(gateway.New(cfg), ocrspace.New(cfg), cfg.ProviderTimeout)
	// Analysis: private inference first, OpenRouter model chain second.
	analyzeSvc := usecase.NewAnalyzeService(inference.New(cfg), openrouter.New(cfg), cfg.Models(), cfg.ProviderTimeout)
	processSvc := usecase.NewProcessService(extractSvc, analyzeSvc)

	for name, check := range map[string]func() error{
		"ocr_primary":        cfg.RequireHuawei,
		"ocr_secondary":      cfg.RequireOCRSpace,
		"analysis_primary":   cfg.RequireInference,
		"analysis_secondary": cfg.RequireOpenRouter,
	} {
		if err := check(); err != nil {
			slog.Warn("provider not configured", slog.String("provider", name), slog.Any("error", err))
		}
	}
	slog.Info("analysis model chain", slog.Any("models", cfg.Models()))

	srv := httpserver.NewServer(cfg, huawei.New(cfg), extractSvc, analyzeSvc, processSvc)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
