package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"ivy_homes/internal/adapters/filesource"
	"ivy_homes/internal/adapters/inventoryapi"
	redisad "ivy_homes/internal/adapters/redis"
	"ivy_homes/internal/app"
	"ivy_homes/internal/domain"
	"ivy_homes/internal/shared"
	mysqlrepo "ivy_homes/internal/storage/mysql"
	pgrepo "ivy_homes/internal/storage/postgres"
)

// openSource builds the configured backend. The cleanup func releases
// connections once the process exits; it is never nil on success.
func openSource(ctx context.Context, kind shared.SourceKind, cfg shared.Config) (domain.PropertySource, func(), error) {
	switch kind {
	case shared.SourceFile:
		return filesource.New(cfg.DataPath), func() {}, nil

	case shared.SourceAPI:
		client, err := inventoryapi.New(cfg.APIURL, cfg.APIKey, cfg.APIRPS)
		if err != nil {
			return nil, nil, err
		}
		return withCache(ctx, client, cfg)

	case shared.SourceMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			// unreachable database is a load failure, not a startup failure
			log.Error().Err(err).Msg("db.Ping failed")
		}
		src, cleanup, err := withCache(ctx, mysqlrepo.New(db), cfg)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return src, func() { cleanup(); _ = db.Close() }, nil

	case shared.SourcePostgres:
		repo, err := pgrepo.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return unreachable{name: "postgres", err: err}, func() {}, nil
		}
		src, cleanup, err := withCache(ctx, repo, cfg)
		if err != nil {
			repo.Close()
			return nil, nil, err
		}
		return src, func() { cleanup(); repo.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported source %q", kind)
}

// withCache fronts remote sources with the redis snapshot cache when one
// is configured.
func withCache(ctx context.Context, src domain.PropertySource, cfg shared.Config) (domain.PropertySource, func(), error) {
	if cfg.RedisAddr == "" {
		return src, func() {}, nil
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; snapshot cache may miss")
	}
	return app.NewCachedSource(src, cache, cfg.CacheTTL), func() { _ = cache.Close() }, nil
}

// unreachable stands in for a backend that could not be opened, so the
// failure surfaces as an unavailable inventory.
type unreachable struct {
	name string
	err  error
}

func (u unreachable) Name() string { return u.name }

func (u unreachable) Load(context.Context) ([]domain.Property, error) { return nil, u.err }
