// Seeds the default bundle catalog into the configured durable store.
// Useful before first run with the redis backend, or to reset a catalog
// after heavy editing.
package main

import (
	"context"
	"flag"
	"log"

	"hotspot-voucher-manager/internal/config"
	"hotspot-voucher-manager/internal/domain/model"
	"hotspot-voucher-manager/internal/domain/ports/repository"
	"hotspot-voucher-manager/internal/infra/logging"
	"hotspot-voucher-manager/internal/infra/storage"
)

func main() {
	ctx := context.Background()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	var kv repository.KeyValue
	switch cfg.Storage.Backend {
	case "redis":
		kv, err = storage.NewRedisStore(ctx, &cfg.Storage.Redis)
	default:
		kv, err = storage.NewFileStore(cfg.Storage.File.Dir, cfg.Storage.File.MaxBytes)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer kv.Close()

	repo := storage.NewBundleRepo(kv, logger)
	bundles := model.DefaultBundles()
	if err := repo.SaveAll(ctx, bundles); err != nil {
		logger.Fatal().Err(err).Msg("seed bundles")
	}
	for _, b := range bundles {
		logger.Info().Str("id", b.ID).Str("name", b.Name).Int64("price", b.Price).Msg("seeded")
	}
}
