package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"ivy_homes/internal/domain"
)

// SearchService answers inventory queries over a snapshot loaded once at
// startup. After LoadSearchService returns, nothing mutates it, so it is
// safe for concurrent use without locking.
type SearchService struct {
	source  string
	props   []domain.Property
	places  []string // lower-cased "city neighborhood address", parallel to props
	byID    map[string]int
	loadErr error
}

// LoadSearchService reads the whole collection from src. The returned
// service is never nil: when the load fails the error (wrapping
// domain.ErrDataUnavailable) is returned and also remembered, and every
// query on the service reports it instead of results.
func LoadSearchService(ctx context.Context, src domain.PropertySource) (*SearchService, error) {
	s := &SearchService{source: src.Name(), byID: map[string]int{}}

	raw, err := src.Load(ctx)
	if err != nil {
		s.loadErr = fmt.Errorf("%w: %s source: %v", domain.ErrDataUnavailable, src.Name(), err)
		log.Error().Err(err).Str("source", src.Name()).Msg("inventory load failed")
		return s, s.loadErr
	}

	s.props = make([]domain.Property, 0, len(raw))
	for _, p := range raw {
		p = normalize(p)
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Str("source", src.Name()).Msg("skipping invalid property")
			continue
		}
		if _, dup := s.byID[p.ID]; dup {
			log.Warn().Str("id", p.ID).Str("source", src.Name()).Msg("skipping duplicate property id")
			continue
		}
		s.byID[p.ID] = len(s.props)
		s.props = append(s.props, p.Clone())
		s.places = append(s.places, strings.ToLower(p.City+" "+p.Neighborhood+" "+p.Address))
	}

	log.Info().
		Str("source", src.Name()).
		Int("loaded", len(s.props)).
		Int("skipped", len(raw)-len(s.props)).
		Msg("inventory loaded")
	return s, nil
}

func normalize(p domain.Property) domain.Property {
	p.ID = strings.TrimSpace(p.ID)
	p.Type = domain.PropertyType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	if strings.TrimSpace(string(p.Status)) == "" {
		p.Status = domain.StatusAvailable
	}
	p.Status = domain.Status(strings.ToLower(strings.TrimSpace(string(p.Status))))
	if p.Features != nil {
		tags := make([]string, 0, len(p.Features))
		for _, f := range p.Features {
			if t := strings.ToLower(strings.TrimSpace(f)); t != "" {
				tags = append(tags, t)
			}
		}
		p.Features = tags
	}
	return p
}

func (s *SearchService) Source() string { return s.source }

func (s *SearchService) Ready() bool { return s.loadErr == nil }

func (s *SearchService) LoadErr() error { return s.loadErr }

// Len is the number of properties in the snapshot (0 when the load failed).
func (s *SearchService) Len() int { return len(s.props) }

// Properties returns a copy of the full snapshot in load order.
func (s *SearchService) Properties() []domain.Property {
	out := make([]domain.Property, len(s.props))
	for i, p := range s.props {
		out[i] = p.Clone()
	}
	return out
}

// Search returns every property matching all supplied constraints, in load
// order, truncated to c.Limit when set. No match is an empty slice, not an
// error.
func (s *SearchService) Search(ctx context.Context, c domain.Criteria) ([]domain.Property, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	f, err := compile(c)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Property, 0)
	for i, p := range s.props {
		if !f.match(p, s.places[i]) {
			continue
		}
		out = append(out, p.Clone())
		if f.limit > 0 && len(out) >= f.limit {
			break
		}
	}

	log.Debug().
		Int("matched", len(out)).
		Str("location", deref(c.Location)).
		Str("type", deref(c.Type)).
		Msg("property search")
	return out, nil
}

func (s *SearchService) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	if s.loadErr != nil {
		return domain.Property{}, s.loadErr
	}
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Property{}, fmt.Errorf("property %q: %w", id, domain.ErrNotFound)
	}
	return s.props[i].Clone(), nil
}

// ---- criteria compilation ----

type filter struct {
	location     string
	typ          domain.PropertyType
	minBedrooms  int
	minBathrooms int
	minPrice     *int64
	maxPrice     *int64
	statuses     map[domain.Status]struct{}
	features     []string
	limit        int
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidCriteria, fmt.Sprintf(format, args...))
}

func compile(c domain.Criteria) (filter, error) {
	var f filter

	if c.Location != nil {
		f.location = strings.ToLower(strings.TrimSpace(*c.Location))
	}
	if c.Type != nil && strings.TrimSpace(*c.Type) != "" {
		t, err := domain.ParsePropertyType(*c.Type)
		if err != nil {
			return filter{}, invalid("%v", err)
		}
		f.typ = t
	}
	if c.MinBedrooms != nil {
		if *c.MinBedrooms < 0 {
			return filter{}, invalid("min bedrooms %d is negative", *c.MinBedrooms)
		}
		f.minBedrooms = *c.MinBedrooms
	}
	if c.MinBathrooms != nil {
		if *c.MinBathrooms < 0 {
			return filter{}, invalid("min bathrooms %d is negative", *c.MinBathrooms)
		}
		f.minBathrooms = *c.MinBathrooms
	}
	if c.MinPrice != nil && *c.MinPrice < 0 {
		return filter{}, invalid("min price %d is negative", *c.MinPrice)
	}
	if c.MaxPrice != nil && *c.MaxPrice < 0 {
		return filter{}, invalid("max price %d is negative", *c.MaxPrice)
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return filter{}, invalid("min price %d exceeds max price %d", *c.MinPrice, *c.MaxPrice)
	}
	f.minPrice, f.maxPrice = c.MinPrice, c.MaxPrice

	f.statuses = map[domain.Status]struct{}{}
	for _, raw := range c.Statuses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return filter{}, invalid("%v", err)
		}
		f.statuses[st] = struct{}{}
	}
	if len(f.statuses) == 0 {
		f.statuses[domain.StatusAvailable] = struct{}{}
	}

	for _, tag := range c.Features {
		if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
			f.features = append(f.features, t)
		}
	}

	if c.Limit < 0 {
		return filter{}, invalid("limit %d is negative", c.Limit)
	}
	f.limit = c.Limit
	return f, nil
}

// match tests p against every constraint. place is the listing's
// lower-cased "city neighborhood address", so a location may span fields.
func (f filter) match(p domain.Property, place string) bool {
	if _, ok := f.statuses[p.Status]; !ok {
		return false
	}
	if f.location != "" && !strings.Contains(place, f.location) {
		return false
	}
	if f.typ != "" && p.Type != f.typ {
		return false
	}
	if p.Bedrooms < f.minBedrooms || p.Bathrooms < f.minBathrooms {
		return false
	}
	if f.minPrice != nil && p.Price < *f.minPrice {
		return false
	}
	if f.maxPrice != nil && p.Price > *f.maxPrice {
		return false
	}
	for _, tag := range f.features {
		if !p.HasFeature(tag) {
			return false
		}
	}
	return true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
