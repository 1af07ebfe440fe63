package cli

import (
	"context"
	"fmt"
	"time"

	"taskmaster/app/client"
	"taskmaster/app/config"
	"taskmaster/app/services"
	"taskmaster/app/store"
	"taskmaster/app/suggest"

	"github.com/sirupsen/logrus"
)

// DefaultBackend talks to cfg.Server.URL when set and to the local store
// otherwise.
func DefaultBackend(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (services.API, suggest.Suggester, func(), error) {
	if cfg.Server.URL != "" {
		c := client.New(cfg.Server.URL, log)
		return c, c, func() {}, nil
	}

	svc, closeStore, err := LocalService(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	suggester := suggest.New(ctx, suggest.GeminiOptions{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
		Logger:  log,
	})
	return svc, suggester, closeStore, nil
}

// LocalService opens the configured store, seeds it when empty and wraps it
// in a TaskService.
func LocalService(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*services.TaskService, func(), error) {
	kv, err := OpenKV(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(kv, cfg.Store.Key)

	if cfg.Store.Seed {
		seeded, err := store.Seed(ctx, st, time.Now())
		if err != nil {
			kv.Close()
			return nil, nil, err
		}
		if seeded {
			log.WithField("key", st.Key()).Info("seeded empty store with example tasks")
		}
	}

	svc := services.NewTaskService(st, services.Options{
		ReadDelay:  cfg.Latency.Read,
		WriteDelay: cfg.Latency.Write,
		NoDelay:    cfg.Latency.Disable,
		Logger:     log,
	})
	release := func() {
		if err := kv.Close(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}
	return svc, release, nil
}

// OpenKV connects the backend named by cfg.Driver.
func OpenKV(ctx context.Context, cfg config.Store) (store.KV, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryKV(), nil
	case config.DriverSQLite:
		db, err := config.OpenSQLite(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		kv, err := store.NewSQLiteKV(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return kv, nil
	case config.DriverRedis:
		client, err := config.InitRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedisKV(client), nil
	case config.DriverNeo4j:
		driver, err := config.InitNeo4j(ctx, cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		return store.NewNeo4jKV(driver), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
