package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/infrastructure/config"
	mongodb "github.com/99minutos/user-accounts/internal/infrastructure/db/mongo"
	"github.com/99minutos/user-accounts/internal/infrastructure/db/sqldb"
	"github.com/99minutos/user-accounts/internal/infrastructure/http/handlers"
)

// store bundles the repositories of the configured backend.
type store struct {
	users ports.UserRepository
	roles ports.RoleRepository
	probe handlers.Dependency
	close func(ctx context.Context) error
}

// openStore connects to cfg.StoreDriver and prepares its indexes or schema.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &store{
			users: mongodb.NewUserRepository(db),
			roles: mongodb.NewRoleRepository(db),
			probe: handlers.Dependency{Name: "mongodb", Pinger: mongodb.Pinger{Client: client}},
			close: client.Disconnect,
		}, nil

	case config.DriverPostgres, config.DriverSQLite:
		client, err := sqldb.Open(ctx, sqldb.Config{
			Driver:       cfg.StoreDriver,
			DSN:          cfg.SQL.DSN,
			MaxOpenConns: cfg.SQL.MaxOpenConns,
			MaxIdleConns: cfg.SQL.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		log.Info().Str("driver", cfg.StoreDriver).Msg("connected to sql database")
		return &store{
			users: sqldb.NewUserRepository(client),
			roles: sqldb.NewRoleRepository(client),
			probe: handlers.Dependency{Name: cfg.StoreDriver, Pinger: client},
			close: func(context.Context) error { return client.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
