package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"ivy_homes/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

const upsertPropertySQL = `
INSERT INTO properties
  (id, type, city, neighborhood, address, price, bedrooms, bathrooms,
   area_sqft, year_built, description, features, status, listed_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
  type         = EXCLUDED.type,
  city         = EXCLUDED.city,
  neighborhood = EXCLUDED.neighborhood,
  address      = EXCLUDED.address,
  price        = EXCLUDED.price,
  bedrooms     = EXCLUDED.bedrooms,
  bathrooms    = EXCLUDED.bathrooms,
  area_sqft    = EXCLUDED.area_sqft,
  year_built   = EXCLUDED.year_built,
  description  = EXCLUDED.description,
  features     = EXCLUDED.features,
  status       = EXCLUDED.status,
  listed_date  = EXCLUDED.listed_date,
  updated_at   = now()
`

const selectPropertiesSQL = `
SELECT id, type, city, neighborhood, address, price, bedrooms, bathrooms,
       area_sqft, year_built, description, features, status, listed_date
FROM properties
ORDER BY id
`

type Repo struct{ pool *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return New(pool), nil
}

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) Name() string { return "postgres" }

// Migrate applies the embedded schema migrations through a database/sql
// handle borrowed from the pool.
func (r *Repo) Migrate() error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	_, err := r.pool.Exec(ctx, upsertPropertySQL,
		p.ID, string(p.Type), p.City, p.Neighborhood, p.Address,
		p.Price, p.Bedrooms, p.Bathrooms,
		p.AreaSqft, p.YearBuilt, p.Description, features,
		string(p.Status), p.ListedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert property %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repo) Load(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.pool.Query(ctx, selectPropertiesSQL)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Property, error) {
		var (
			p           domain.Property
			typ, status string
		)
		err := row.Scan(
			&p.ID, &typ, &p.City, &p.Neighborhood, &p.Address,
			&p.Price, &p.Bedrooms, &p.Bathrooms,
			&p.AreaSqft, &p.YearBuilt, &p.Description, &p.Features,
			&status, &p.ListedAt,
		)
		p.Type = domain.PropertyType(typ)
		p.Status = domain.Status(status)
		return p, err
	})
}
