package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/osse101/StreamRealm_Go/internal/config"
	"github.com/osse101/StreamRealm_Go/internal/item"
	"github.com/osse101/StreamRealm_Go/internal/validation"
)

// LoadCatalog reads the item definitions and validates them against the
// schema on disk, or the embedded schema when that file is absent
func LoadCatalog(cfg *config.Config) (*item.Registry, error) {
	schemas := validation.NewSchemaValidator()

	var (
		loader *item.Loader
		err    error
	)
	schema, readErr := os.ReadFile(cfg.ItemsSchemaPath)
	switch {
	case readErr == nil:
		loader, err = item.NewLoaderWithSchema(schemas, schema)
	case errors.Is(readErr, fs.ErrNotExist):
		slog.Warn(LogMsgCatalogSchemaMissing, "path", cfg.ItemsSchemaPath)
		loader, err = item.NewLoader(schemas)
	default:
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedReadSchema, readErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateLoader, err)
	}

	registry, err := loader.LoadFile(cfg.ItemsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadItems, err)
	}
	slog.Info(LogMsgCatalogLoaded, "path", cfg.ItemsConfigPath, "items", len(registry.All()))
	return registry, nil
}
