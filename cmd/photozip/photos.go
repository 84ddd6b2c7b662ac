package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/photozip"
	"github.com/sagarc03/photozip/config"
	"github.com/sagarc03/photozip/filesystem"
)

// openPhotos opens the configured photo root and builds the token
// registry from its current subdirectories. The caller closes the store.
func openPhotos(ctx context.Context, cfg *config.Config) (*filesystem.Store, *photozip.Registry, error) {
	store, err := filesystem.Open(cfg.Photos.Dir)
	if err != nil {
		return nil, nil, err
	}

	registry, err := photozip.LoadRegistry(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("build registry: %w", err)
	}

	slog.Info("photo directories registered", "root", store.Path(""), "count", registry.Len())
	for _, entry := range registry.Entries() {
		slog.Debug("registered directory", "token", entry.Token, "name", entry.Name)
	}

	return store, registry, nil
}
