package mysql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"ivy_homes/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valDate(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC().Format("2006-01-02")
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Name() string { return "mysql" }

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	feat, err := json.Marshal(features)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertPropertySQL,
		p.ID,
		string(p.Type),
		p.City,
		p.Neighborhood,
		p.Address,
		p.Price,
		p.Bedrooms,
		p.Bathrooms,
		valInt(p.AreaSqft),
		valInt(p.YearBuilt),
		p.Description,
		string(feat),
		string(p.Status),
		valDate(p.ListedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert property %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repo) Load(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, selectPropertiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		var (
			p           domain.Property
			typ, status string
			area, year  sql.NullInt64
			desc        sql.NullString
			featRaw     sql.RawBytes
			listed      sql.NullTime
		)
		if err := rows.Scan(
			&p.ID, &typ, &p.City, &p.Neighborhood, &p.Address,
			&p.Price, &p.Bedrooms, &p.Bathrooms,
			&area, &year, &desc, &featRaw, &status, &listed,
		); err != nil {
			return nil, err
		}
		p.Type = domain.PropertyType(typ)
		p.Status = domain.Status(status)
		p.Description = desc.String
		if area.Valid {
			a := int(area.Int64)
			p.AreaSqft = &a
		}
		if year.Valid {
			y := int(year.Int64)
			p.YearBuilt = &y
		}
		if listed.Valid {
			t := listed.Time.UTC()
			p.ListedAt = &t
		}
		if len(featRaw) > 0 {
			if err := json.Unmarshal(featRaw, &p.Features); err != nil {
				log.Warn().Err(err).Str("id", p.ID).Msg("bad features column; ignored")
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
