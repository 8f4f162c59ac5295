package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/birbparty/commerce-sdk/internal/mockplatform"
	"github.com/birbparty/commerce-sdk/internal/telemetry"
)

func main() {
	telCfg := telemetry.NewConfigFromEnv()
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		telCfg.ServiceName = "mockplatform"
	}
	if err := telemetry.InitLogger(telCfg); err != nil {
		telemetry.L().WithError(err).Fatal("Failed to initialize logger")
	}
	defer telemetry.CloseLogger()
	log := telemetry.L()

	cfg, err := mockplatform.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize telemetry")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := mockplatform.NewApp(mockplatform.NewHandler(cfg), reg)

	go func() {
		<-ctx.Done()
		log.Info("🛑 Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Warn("Server forced to shutdown")
		}
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":    cfg.Addr(),
		"seed":    cfg.Seed,
		"auth":    cfg.ClientID != "",
		"latency": cfg.Latency.String(),
	}).Info("🚀 Mock platform listening")

	if err := app.Listen(cfg.Addr()); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
