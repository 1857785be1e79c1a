package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"ivy_homes/internal/adapters/filesource"
	"ivy_homes/internal/adapters/observability"
	redisad "ivy_homes/internal/adapters/redis"
	"ivy_homes/internal/app"
	"ivy_homes/internal/domain"
	"ivy_homes/internal/shared"
	mysqlrepo "ivy_homes/internal/storage/mysql"
	pgrepo "ivy_homes/internal/storage/postgres"
)

// seeder copies the JSON inventory into the database named by SEED_TARGET
// (mysql by default) so DATA_SOURCE=mysql|postgres has something to serve.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	target, err := shared.ParseSourceKind(envOr("SEED_TARGET", "mysql"))
	if err != nil || (target != shared.SourceMySQL && target != shared.SourcePostgres) {
		log.Fatal().Str("target", string(target)).Msg("SEED_TARGET must be mysql or postgres")
	}

	log.Info().
		Str("file", cfg.DataPath).
		Str("target", string(target)).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	var repo domain.PropertyRepository
	switch target {
	case shared.SourceMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		if cfg.MigrateOnSeed {
			if err := mysqlrepo.Migrate(db); err != nil {
				log.Fatal().Err(err).Msg("migrate failed")
			}
		}
		repo = mysqlrepo.New(db)

	case shared.SourcePostgres:
		pg, err := pgrepo.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open failed")
		}
		defer pg.Close()
		if cfg.MigrateOnSeed {
			if err := pg.Migrate(); err != nil {
				log.Fatal().Err(err).Msg("migrate failed")
			}
		}
		repo = pg
	}
	log.Info().Msg("db ping ok")

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	rep, err := app.NewSeedService(filesource.New(cfg.DataPath), repo, cache, cfg.SeedWorkers).Seed(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().
		Int("read", rep.Read).
		Int("upserted", rep.Upserted).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Msg("seeding completed")
	if rep.Failed > 0 {
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
