package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glizzus/sound-stego/internal/config"
	"github.com/glizzus/sound-stego/internal/datalayer"
	"github.com/glizzus/sound-stego/internal/generator"
	"github.com/glizzus/sound-stego/internal/handler"
	"github.com/glizzus/sound-stego/internal/janitor"
	"github.com/glizzus/sound-stego/internal/observe"
	"github.com/glizzus/sound-stego/internal/transcode"
	"go.opentelemetry.io/otel"
)

const shutdownTimeout = 10 * time.Second

func runServerForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverConfig, err := config.NewServerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	slog.SetLogLoggerLevel(serverConfig.LogLevel)

	minioStorage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure minio bucket: %w", err)
	}

	metricsHandler, shutdownMetrics, err := observe.InitProvider()
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Warn("failed to shut down meter provider", "error", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	ids := &generator.UUIDV4Generator{}
	server := &handler.Server{
		Storage:        minioStorage,
		Transcoder:     &transcode.FFmpeg{Path: serverConfig.FFmpegPath},
		AudioKeys:      generator.EmbeddedAudioKeys(ids),
		ImageKeys:      generator.ExtractedImageKeys(ids),
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		PublicBaseURL:  serverConfig.PublicBaseURL,
		MaxUploadBytes: serverConfig.MaxUploadBytes,
	}

	j := &janitor.Janitor{
		Storage: minioStorage,
		MaxAge:  serverConfig.RetentionMaxAge,
	}
	go func() {
		if err := j.Run(ctx, serverConfig.RetentionCron); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("retention janitor stopped", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              serverConfig.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", serverConfig.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
	}
	return nil
}

func main() {
	if err := runServerForever(); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
