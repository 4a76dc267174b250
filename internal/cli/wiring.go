package cli

import (
	"context"
	"fmt"

	"resumeats/internal/ai"
	"resumeats/internal/ats"
	"resumeats/internal/config"
	"resumeats/internal/errors"
	"resumeats/internal/extract"
	"resumeats/internal/orders"
	"resumeats/internal/pdftext"
	"resumeats/internal/storage"
	"resumeats/internal/validators"
)

// newEngine builds the scoring engine from configuration. When keyword
// watching is enabled the returned stop function ends the watcher.
func newEngine(cfg *config.Config, logger *errors.Logger) (*ats.Engine, func(), error) {
	locale, _ := ats.ParseLocale(cfg.ATS.DefaultLocale)
	opts := ats.Options{
		SummaryLength: validators.LengthThresholds{
			Min:  cfg.ATS.Summary.Min,
			Good: cfg.ATS.Summary.Good,
			Max:  cfg.ATS.Summary.Max,
		},
		ExperienceDescriptionMin: cfg.ATS.ExperienceDescriptionMin,
		DefaultLocale:            locale,
	}

	noop := func() {}
	if cfg.ATS.KeywordsFile == "" {
		return ats.NewEngine(opts), noop, nil
	}

	if !cfg.ATS.WatchKeywords {
		keywords, err := ats.LoadKeywordsFile(cfg.ATS.KeywordsFile)
		if err != nil {
			return nil, nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load ATS keywords", err)
		}
		opts.Keywords = keywords
		return ats.NewEngine(opts), noop, nil
	}

	engine := ats.NewEngine(opts)
	watcher := ats.NewKeywordWatcher(cfg.ATS.KeywordsFile, engine, cfg.ATS.WatchDebounce, logger)
	if err := watcher.Start(); err != nil {
		return nil, nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to watch ATS keywords", err)
	}
	stop := func() {
		if err := watcher.Stop(); err != nil {
			logger.LogError(err, "Failed to stop keyword watcher")
		}
	}
	return engine, stop, nil
}

// newImporter builds the document reader and the record importer
func newImporter(ctx context.Context, cfg *config.Config, useAI bool, logger *errors.Logger) (*ai.Importer, *pdftext.Reader, error) {
	extractor := extract.New(extract.WithLimits(cfg.Extract.Limits))
	reader := pdftext.NewReader(cfg.Extract.MaxPages)

	if !useAI {
		return ai.NewImporter(nil, extractor, logger), reader, nil
	}

	importer, err := ai.NewService(ctx, cfg, extractor, logger)
	if err != nil {
		return nil, nil, err
	}
	return importer, reader, nil
}

// pipeline is the wired order lifecycle with the resources it owns
type pipeline struct {
	repo    orders.Repository
	queue   orders.Queue
	store   storage.BlobStore
	service *orders.Service
}

// newPipeline wires repository, queue, blob store and renderer from
// configuration
func newPipeline(ctx context.Context, cfg *config.Config, engine *ats.Engine, logger *errors.Logger) (*pipeline, error) {
	p := &pipeline{}

	repo, err := newRepository(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	p.repo = repo

	queue, err := newQueue(ctx, cfg.Queue, logger)
	if err != nil {
		p.Close(logger)
		return nil, err
	}
	p.queue = queue

	store, err := storage.New(ctx, cfg.Storage, cfg.Server.PublicBaseURL, logger)
	if err != nil {
		p.Close(logger)
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "Failed to initialize blob store", err)
	}
	p.store = store

	renderer := orders.NewChromeRenderer(cfg.Orders.ChromePath)
	p.service = orders.NewService(cfg.Orders, repo, queue, renderer, store, engine, logger)
	return p, nil
}

func newRepository(ctx context.Context, cfg config.DatabaseConfig, logger *errors.Logger) (orders.Repository, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := orders.Connect(ctx, cfg)
		if err != nil {
			return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "Failed to connect to Postgres", err)
		}
		logger.Info("Using Postgres order repository")
		return orders.NewPostgresRepository(pool), nil
	case "", "memory":
		logger.Warn("Using in-memory order repository, orders are lost on restart")
		return orders.NewMemoryRepository(), nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported database driver: %s", cfg.Driver), nil)
	}
}

func newQueue(ctx context.Context, cfg config.QueueConfig, logger *errors.Logger) (orders.Queue, error) {
	switch cfg.Backend {
	case "redis":
		queue, err := orders.NewRedisQueue(ctx, cfg)
		if err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeQueueFailed, "Failed to connect to Redis", err)
		}
		logger.Info("Using Redis render queue", "addr", cfg.Redis.Addr, "name", cfg.Name)
		return queue, nil
	case "", "memory":
		return orders.NewMemoryQueue(cfg.BufferSize), nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported queue backend: %s", cfg.Backend), nil)
	}
}

// Close releases the queue and repository connections
func (p *pipeline) Close(logger *errors.Logger) {
	if p.queue != nil {
		if err := p.queue.Close(); err != nil {
			logger.LogError(err, "Failed to close render queue")
		}
	}
	if p.repo != nil {
		if err := p.repo.Close(); err != nil {
			logger.LogError(err, "Failed to close order repository")
		}
	}
}
