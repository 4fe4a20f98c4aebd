package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotspot-voucher-manager/internal/config"
	"hotspot-voucher-manager/internal/domain/ports/repository"
	"hotspot-voucher-manager/internal/infra/api"
	"hotspot-voucher-manager/internal/infra/logging"
	"hotspot-voucher-manager/internal/infra/metrics"
	"hotspot-voucher-manager/internal/infra/sched"
	"hotspot-voucher-manager/internal/infra/storage"
	"hotspot-voucher-manager/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Durable store ----
	var kv repository.KeyValue
	switch cfg.Storage.Backend {
	case "redis":
		kv, err = storage.NewRedisStore(ctx, &cfg.Storage.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis store")
		}
	default:
		kv, err = storage.NewFileStore(cfg.Storage.File.Dir, cfg.Storage.File.MaxBytes)
		if err != nil {
			logger.Fatal().Err(err).Msg("file store")
		}
	}
	defer kv.Close()

	// ---- Repositories ----
	voucherRepo := storage.NewVoucherRepo(kv, logger)
	bundleRepo := storage.NewBundleRepo(kv, logger)

	// ---- Use cases ----
	bundleUC := usecase.NewBundleUseCase(bundleRepo, logger)
	voucherUC := usecase.NewVoucherUseCase(voucherRepo, bundleUC, cfg.Vouchers.MaxBatch, logger)
	if err := bundleUC.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("load bundle catalog")
	}
	if err := voucherUC.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("load voucher collection")
	}

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Expiry sweep ----
	worker := sched.NewExpiryWorker(cfg.Sweep.Interval, voucherUC, logger)
	go func() {
		_ = worker.Run(ctx)
	}()

	// ---- HTTP ----
	router := chi.NewRouter()
	api.NewServer(voucherUC, bundleUC, logger).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
