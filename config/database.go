package config

import (
	"context"
	"fmt"

	"food-storefront/store"
	"food-storefront/store/mongostore"
	"food-storefront/store/sqlstore"
)

// OpenStore connects to the configured backend and migrates it.
func OpenStore(ctx context.Context, cfg DatabaseConfig) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Driver {
	case "mongo":
		s, err = mongostore.Connect(ctx, cfg.DSN, cfg.MongoDatabase)
	default:
		s, err = sqlstore.Open(cfg.Driver, cfg.DSN)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}
