package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/config"
	"github.com/herbwise/basil/internal/match"
	"github.com/herbwise/basil/internal/storage"
)

// app bundles the collaborators most commands need.
type app struct {
	cfg   *config.Config
	seeds *config.Seeds
	store *storage.SQLiteStorage
}

// openApp loads configuration and seed data and opens (and migrates) the
// database. Callers must Close the returned app.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	seeds, err := config.LoadSeeds(cfg.SeedsPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, common.NewUserError("failed to open database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("failed to migrate database", err)
	}

	return &app{cfg: cfg, seeds: seeds, store: store}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// catalogSnapshot builds one immutable catalog view for a pipeline run.
func (a *app) catalogSnapshot(ctx context.Context) (*match.Snapshot, error) {
	products, err := a.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	return match.NewSnapshot(products), nil
}

// historyWindow is how much purchase history commands load by default.
// Bounding the load here keeps the suggestion engine's input finite.
const historyWindow = 365 * 24 * time.Hour

func historySince() time.Time {
	return time.Now().Add(-historyWindow)
}
