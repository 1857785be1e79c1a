package filesource

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ivy_homes/internal/adapters/payload"
	"ivy_homes/internal/domain"
)

// Source reads the inventory from a JSON document on disk.
type Source struct{ path string }

func New(path string) *Source { return &Source{path: path} }

func (s *Source) Name() string { return "file" }

func (s *Source) Load(ctx context.Context) ([]domain.Property, error) {
	if s.path == "" {
		return nil, errors.New("no data path configured")
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return payload.Decode(f)
}
