package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"idbridge/internal/auditlog"
	auditstore "idbridge/internal/auditlog/store"
	"idbridge/internal/mapping"
	mappingstore "idbridge/internal/mapping/store"
	"idbridge/internal/platform/config"
	"idbridge/internal/platform/postgres"
	redisplatform "idbridge/internal/platform/redis"
	"idbridge/internal/providers"
	providerstore "idbridge/internal/providers/store"
	"idbridge/internal/schema"
	txcontext "idbridge/pkg/platform/tx"
)

// infra holds the persistence backends. Without DATABASE_URL everything
// runs in memory.
type infra struct {
	db    *sql.DB
	redis *redisplatform.Client

	mappings mapping.Store
	logs     auditlog.Store
	tx       txcontext.Runner
	limits   schema.Limits
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{
		mappings: mappingstore.NewInMemory(),
		logs:     auditstore.NewInMemory(),
		tx:       txcontext.NoopRunner{},
		limits:   schema.Defaults(),
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			in.close()
			return nil, err
		}
		limits, err := schema.LoadPostgres(ctx, db)
		if err != nil {
			in.close()
			return nil, err
		}
		in.limits = limits
		in.mappings = mappingstore.NewPostgres(db)
		in.logs = auditstore.NewPostgres(db)
		in.tx = txcontext.NewSQLRunner(db)
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set, records are kept in memory")
	}

	client, err := redisplatform.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	in.redis = client
	return in, nil
}

func (in *infra) providerRegistry(kind string) (providers.Registry, error) {
	switch kind {
	case "postgres":
		if in.db == nil {
			return nil, fmt.Errorf("postgres provider registry needs DATABASE_URL")
		}
		return providerstore.NewPostgres(in.db), nil
	case "redis":
		if in.redis == nil {
			return nil, fmt.Errorf("redis provider registry needs REDIS_URL")
		}
		return providerstore.NewRedis(in.redis.Client, in.redis.Key(providerstore.RedisSetName)), nil
	default:
		return providerstore.NewInMemory(), nil
	}
}

func (in *infra) close() {
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
