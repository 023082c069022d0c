package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeboard/internal/adapters"
	"homeboard/internal/amqp"
	"homeboard/internal/cache"
	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/services"
	"homeboard/internal/sources"
	"homeboard/internal/sources/google"
	"homeboard/internal/sources/memory"
	"homeboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.Location, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional. Without it activity is written directly.
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, recording activity directly",
				log.FieldError, err.Error())
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	activity := services.NewActivityService(repo, publisher, f.logger)
	adapter := adapters.NewStoreAdapter(repo, activity, core.NewResolver(config.Location))

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Backend: adapter,
		Cleanup: func() error {
			return errors.Join(activity.Close(), repo.Close())
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	base, err := memory.NewFromFile(config.seedPath(), config.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Sheet:           config.GoogleTransactionsSheet,
		CacheTTL:        config.SheetsCacheTTL,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
		OAuth: google.OAuth{
			ClientJSON: config.GoogleOAuthClientJSON,
			ClientFile: config.GoogleOAuthClientFile,
			TokenFile:  config.GoogleOAuthTokenFile,
		},
		Location: config.Location,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	caches := cache.NewManager(f.logger)
	caches.Register(client.Cache())
	if config.SheetsCacheTTL > 0 {
		caches.Start(config.SheetsCacheTTL)
	}

	store := sources.WithTransactions(base, client)
	activity := services.NewActivityService(store, nil, f.logger)
	adapter := adapters.NewStoreAdapter(store, activity, core.NewResolver(config.Location))

	f.logger.Info("Initialized Google Sheets backend",
		"sheet", config.GoogleTransactionsSheet,
		"cache_ttl", config.SheetsCacheTTL.String())

	return &BackendResult{
		Backend: adapter,
		Cleanup: func() error {
			caches.Stop()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	path := config.seedPath()
	store, err := memory.NewFromFile(path, config.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	activity := services.NewActivityService(store, nil, f.logger)
	adapter := adapters.NewStoreAdapter(store, activity, core.NewResolver(config.Location))

	f.logger.Info("Initialized memory backend", "seed_file", path)

	return &BackendResult{Backend: adapter}, nil
}
