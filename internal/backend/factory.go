package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"budgetdash/internal/log"
	gsheet "budgetdash/internal/sheets/google"
	"budgetdash/internal/sheets/memory"
	"budgetdash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
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
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Source:   repo,
		Importer: repo,
		Ping:     repo.Ping,
		Cleanup:  repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, config.Sheets, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", log.FieldSource, cli.Name())

	return &BackendResult{Source: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.DataFile == "" {
		store := memory.New()
		f.logger.Info("Initialized memory backend with an empty ledger")
		return &BackendResult{Source: store, Importer: store}, nil
	}
	if _, err := os.Stat(config.DataFile); errors.Is(err, fs.ErrNotExist) {
		store := memory.New()
		f.logger.Warn("Data file not found, starting with an empty ledger", "data_file", config.DataFile)
		return &BackendResult{Source: store, Importer: store}, nil
	}

	file := memory.NewFile(config.DataFile)
	f.logger.Info("Initialized memory backend", "data_file", config.DataFile)
	return &BackendResult{Source: file}, nil
}
