// Package app builds the shared handles of a running AkiliQuest process.
// It is the single place where configuration turns into connections.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akiliquest/akiliquest/internal/config"
	"github.com/akiliquest/akiliquest/internal/db"
	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/llm"
	"github.com/akiliquest/akiliquest/internal/memstore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/mongostore"
	"github.com/akiliquest/akiliquest/internal/service"
)

// App holds every dependency. Handles are created once and shared.
type App struct {
	Service *service.ExploreService
	Metrics *metrics.Collector

	store  service.Store
	wipe   func(context.Context) error
	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	generator llm.Generator
	store     service.Store
}

// WithGenerator replaces the configured LLM provider.
func WithGenerator(g llm.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithStore replaces the configured backend.
func WithStore(s service.Store) Option {
	return func(o *options) { o.store = s }
}

// New validates cfg, connects the store, creates the generator and wires the service.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if o.store == nil || o.generator == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	mc := metrics.NewCollector()

	store := o.store
	var wipe func(context.Context) error
	if store == nil {
		var err error
		store, wipe, err = openStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	gen := o.generator
	if gen == nil {
		var err error
		gen, err = llm.NewGenerator(ctx, cfg, mc)
		if err != nil {
			store.Close(ctx)
			return nil, fmt.Errorf("create generator: %w", err)
		}
	}

	orch := explore.New(gen,
		explore.WithTimeout(cfg.AITimeout),
		explore.WithBreakerFailures(cfg.BreakerFailures),
		explore.WithLogger(logger),
		explore.WithMetrics(mc))

	svcOpts := []service.Option{service.WithLogger(logger)}
	if cfg.EmbedModel != "" && o.generator == nil {
		embedder, err := llm.NewEmbedder(ctx, cfg, mc)
		if err != nil {
			// Embeddings are optional; exploration works without them.
			logger.Warn("embedder disabled", "model", cfg.EmbedModel, "error", err)
		} else {
			svcOpts = append(svcOpts, service.WithEmbedder(embedder))
		}
	}

	logger.Info("app initialized", "store", cfg.Store, "model", gen.Name())

	return &App{
		Service: service.NewExploreService(service.Instrument(store, mc), orch, svcOpts...),
		Metrics: mc,
		store:   store,
		wipe:    wipe,
		logger:  logger,
	}, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.Store, func(context.Context) error, error) {
	switch cfg.Store {
	case config.StoreMongo:
		s, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.WipeData, nil

	case config.StoreSurreal:
		c, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := c.InitSchema(ctx); err != nil {
			c.Close(ctx)
			return nil, nil, err
		}
		return c, c.WipeData, nil

	case config.StoreMemory:
		s := memstore.New(memstore.WithLogger(logger))
		return s, s.WipeData, nil
	}
	return nil, nil, fmt.Errorf("unsupported store: %s", cfg.Store)
}

// WipeData deletes all stored data. Use for testing only.
func (a *App) WipeData(ctx context.Context) error {
	if a.wipe == nil {
		return fmt.Errorf("wipe data: not supported by this store")
	}
	return a.wipe(ctx)
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	if a.store != nil {
		return a.store.Close(ctx)
	}
	return nil
}
