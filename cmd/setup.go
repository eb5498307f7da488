package cmd

import (
	"context"
	"fmt"

	"catalog-bootstrapper/core/config"
	"catalog-bootstrapper/core/database"
	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/storage"
	"catalog-bootstrapper/core/transport"
	"catalog-bootstrapper/feature/bootstrap"

	"go.uber.org/zap"
)

// setup loads configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	transport.RegisterMetrics()
	return cfg, l, nil
}

// openDocuments connects to the spec store.
func openDocuments(cfg storage.Config) (*storage.Documents, error) {
	docs, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	return docs, nil
}

// openJournal connects to the run journal. It returns nil when the journal is disabled.
func openJournal(cfg database.Config, l *zap.Logger) *database.Journal {
	if !cfg.Enabled {
		return nil
	}
	db, err := database.Connect(cfg)
	if err != nil {
		l.Warn("Run journal unavailable", zap.Error(err))
		return nil
	}
	j := database.NewJournal(db)
	if err := j.Migrate(); err != nil {
		l.Warn("Run journal migration failed", zap.Error(err))
		return nil
	}
	l.Info("Connected to run journal", zap.String("driver", cfg.Driver))
	return j
}

// loadSpec reads a spec from a local file, or from storage when key is set.
func loadSpec(ctx context.Context, cfg *config.Config, file, key string) (*spec.Spec, error) {
	if key == "" {
		if file == "" {
			return nil, fmt.Errorf("a spec file or --key is required")
		}
		return spec.LoadFile(file)
	}
	docs, err := openDocuments(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return docs.ReadSpec(ctx, key)
}

func bootstrapOptions(cfg *config.Config, l *zap.Logger) bootstrap.Options {
	return bootstrap.Options{Run: cfg.Run, API: cfg.API, Logger: l}
}
