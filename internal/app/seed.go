package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ivy_homes/internal/domain"
)

// SeedService copies an inventory from one source into a writable
// repository, e.g. the JSON file into MySQL.
type SeedService struct {
	src     domain.PropertySource
	repo    domain.PropertyRepository
	cache   domain.Cache
	workers int
}

type SeedReport struct {
	Read     int
	Upserted int
	Skipped  int
	Failed   int
}

func NewSeedService(src domain.PropertySource, repo domain.PropertyRepository, cache domain.Cache, workers int) *SeedService {
	if workers <= 0 {
		workers = 1
	}
	return &SeedService{src: src, repo: repo, cache: cache, workers: workers}
}

func (s *SeedService) Seed(ctx context.Context) (SeedReport, error) {
	props, err := s.src.Load(ctx)
	if err != nil {
		return SeedReport{}, err
	}
	rep := SeedReport{Read: len(props)}

	seen := make(map[string]struct{}, len(props))
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	var upserted, failed atomic.Int64

	for _, p := range props {
		p = normalize(p)
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Msg("seed: skipping invalid property")
			rep.Skipped++
			continue
		}
		if _, dup := seen[p.ID]; dup {
			log.Warn().Str("id", p.ID).Msg("seed: skipping duplicate id")
			rep.Skipped++
			continue
		}
		seen[p.ID] = struct{}{}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return s.finish(rep, upserted.Load(), failed.Load()), err
		}

		wg.Add(1)
		go func(p domain.Property) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.repo.UpsertProperty(ctx, p); err != nil {
				failed.Add(1)
				log.Warn().Str("id", p.ID).Err(err).Msg("seed: upsert failed")
				return
			}
			upserted.Add(1)
		}(p)
	}
	wg.Wait()

	// the repository changed underneath any cached snapshot
	if s.cache != nil {
		if err := s.cache.Del(ctx, SnapshotKey(s.repo.Name())); err != nil {
			log.Warn().Err(err).Msg("seed: snapshot eviction failed")
		}
	}
	return s.finish(rep, upserted.Load(), failed.Load()), nil
}

func (s *SeedService) finish(rep SeedReport, upserted, failed int64) SeedReport {
	rep.Upserted = int(upserted)
	rep.Failed = int(failed)
	return rep
}
