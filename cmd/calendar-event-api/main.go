// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Calendar event service: edits, reconciles, and distributes calendar events
// over NATS.
package main

import (
	"context"
	"errors"
	stdlog "log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/cmd/calendar-event-api/service"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/log"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/utils"
)

func main() {
	log.InitStructureLogConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := loadConfig(ctx)

	shutdownOTel, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		stdlog.Fatalf("failed to set up OpenTelemetry SDK: %v", err)
	}

	var wg sync.WaitGroup

	if err := handleEventAPI(ctx, &wg); err != nil {
		stdlog.Fatalf("failed to start calendar event API: %v", err)
	}

	handleHTTPServer(ctx, &wg, config)

	slog.InfoContext(ctx, "service started",
		"service", constants.ServiceName,
		"port", config.Port)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GracefulShutdown())
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "graceful shutdown timed out")
	}

	if client := service.GetNATSClient(context.Background()); client != nil {
		if err := client.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close NATS client", "error", err)
		}
	}

	if err := shutdownOTel(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "failed to shut down OpenTelemetry SDK", "error", err)
	}

	slog.InfoContext(ctx, "service stopped")
}

// handleHTTPServer serves the liveness and readiness endpoints
func handleHTTPServer(ctx context.Context, wg *sync.WaitGroup, config Config) {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := service.GetNATSClient(r.Context()).IsReady(r.Context()); err != nil {
			http.Error(w, "NATS not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           otelhttp.NewHandler(mux, "calendar-event-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "HTTP server failed", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GracefulShutdown())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "failed to shut down HTTP server", "error", err)
		}
	}()
}
