// Package database opens the storage backend selected by configuration and
// returns the repositories built on it.
package database

import (
	"context"
	"errors"
	"fmt"

	"tienda/internal/config"
	"tienda/internal/repositories"
)

// Stores groups the repositories of one storage backend.
type Stores struct {
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository
	Profiles repositories.ProfileRepository

	closers []func(context.Context) error
}

// Open connects the backend named by cfg.DBDriver and, when cfg.SeedCatalog is
// set, loads DefaultCatalog into an empty catalog.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.SeedCatalog {
		if _, err := SeedCatalog(ctx, stores.Products, DefaultCatalog()); err != nil {
			_ = stores.Close(ctx)
			return nil, err
		}
	}
	return stores, nil
}

func open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return NewMemoryStores(), nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := OpenGORM(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		return &Stores{
			Products: repositories.NewGORMProductRepository(db),
			Orders:   repositories.NewGORMOrderRepository(db),
			Profiles: repositories.NewGORMProfileRepository(db),
			closers:  []func(context.Context) error{func(context.Context) error { return sqlDB.Close() }},
		}, nil

	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		profiles := repositories.NewMongoProfileRepository(db)
		if err := profiles.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Stores{
			Products: repositories.NewMongoProductRepository(db),
			Orders:   repositories.NewMongoOrderRepository(db),
			Profiles: profiles,
			closers:  []func(context.Context) error{client.Disconnect},
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

// NewMemoryStores returns empty in-process repositories.
func NewMemoryStores() *Stores {
	return &Stores{
		Products: repositories.NewMemoryProductRepository(),
		Orders:   repositories.NewMemoryOrderRepository(),
		Profiles: repositories.NewMemoryProfileRepository(),
	}
}

// Close releases the backend connections.
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
