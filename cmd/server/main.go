// SOC Intake - Server Entry Point
//
// Receives FortiSIEM incidents and FortiGate logs over HTTP and syslog,
// normalizes them and files a ticket for each one.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/soc-intake/internal/config"
	"github.com/soc-intake/internal/handler"
	"github.com/soc-intake/internal/listener"
	"github.com/soc-intake/internal/logger"
	"github.com/soc-intake/internal/normalize"
	"github.com/soc-intake/internal/service"
	"github.com/soc-intake/internal/store"
	"github.com/soc-intake/pkg/sanitizer"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	isDev := os.Getenv("GIN_MODE") != "release"

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(isDev, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting SOC intake",
		zap.Bool("development", isDev),
		zap.String("port", cfg.Server.Port),
		zap.String("store", string(cfg.Store.Driver)),
		zap.Bool("syslog_enabled", cfg.Syslog.Enabled),
	)

	ticketStore, err := store.Open(cfg.Store, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer ticketStore.Close()

	pipeline := normalize.NewPipeline(zapLogger)
	payloadSanitizer := sanitizer.New(cfg.Processing.MaxPayloadSize, cfg.Processing.LogPreviewSize)

	tickets := service.NewTickets(
		pipeline,
		ticketStore,
		payloadSanitizer,
		service.TicketsConfig{
			Reporter:           cfg.Tickets.Reporter,
			Platform:           cfg.Tickets.Platform,
			ResummarizeWorkers: cfg.Processing.ResummarizeWorkers,
		},
		zapLogger,
	)

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(tickets, ticketStore, cfg.Processing.MaxPayloadSize, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syslogDone := make(chan struct{})
	if cfg.Syslog.Enabled {
		udp := listener.NewUDP(cfg.Syslog.Port, cfg.Syslog.MaxWorkers, tickets, zapLogger)
		go func() {
			defer close(syslogDone)
			if err := udp.ListenAndServe(ctx); err != nil {
				zapLogger.Error("syslog listener failed", zap.Error(err))
			}
		}()
	} else {
		close(syslogDone)
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down server...")

	// Give in-flight requests 10 seconds to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	select {
	case <-syslogDone:
	case <-shutdownCtx.Done():
		zapLogger.Warn("syslog listener did not drain in time")
	}

	zapLogger.Info("server stopped")
}
