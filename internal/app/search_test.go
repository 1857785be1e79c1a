package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ivy_homes/internal/app"
	"ivy_homes/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	name  string
	props []domain.Property
	err   error
	calls int
}

func (f *fakeSource) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeSource) Load(ctx context.Context) ([]domain.Property, error) {
	f.calls++
	return f.props, f.err
}

func ptr[T any](v T) *T { return &v }

func inventory() []domain.Property {
	return []domain.Property{
		{ID: "a", Type: domain.TypeApartment, City: "Bengaluru", Neighborhood: "Whitefield", Address: "12 ITPL Main Road",
			Price: 8_500_000, Bedrooms: 2, Bathrooms: 2, Status: domain.StatusAvailable, Features: []string{"Parking", "gym"}},
		{ID: "b", Type: domain.TypeHouse, City: "Bengaluru", Neighborhood: "Indiranagar", Address: "4 HAL 2nd Stage",
			Price: 32_000_000, Bedrooms: 4, Bathrooms: 3, Status: domain.StatusAvailable, Features: []string{"garden"}},
		{ID: "c", Type: domain.TypeApartment, City: "Pune", Neighborhood: "Baner", Address: "7 Baner Road",
			Price: 6_000_000, Bedrooms: 2, Bathrooms: 1, Status: domain.StatusSold},
		{ID: "d", Type: domain.TypeCondo, City: "Mumbai", Neighborhood: "Powai", Address: "Hiranandani Gardens",
			Price: 21_000_000, Bedrooms: 3, Bathrooms: 2, Status: domain.StatusPending},
		{ID: "e", Type: domain.TypeCommercial, City: "Bengaluru", Neighborhood: "Koramangala", Address: "80 Feet Road",
			Price: 45_000_000, Bedrooms: 0, Bathrooms: 2, Status: domain.StatusAvailable, Features: []string{"parking"}},
		{ID: "f", Type: domain.TypeApartment, City: "Bengaluru", Neighborhood: "Whitefield", Address: "Hope Farm Junction",
			Price: 7_200_000, Bedrooms: 3, Bathrooms: 2, Status: domain.StatusAvailable},
	}
}

func load(t *testing.T, props []domain.Property) *app.SearchService {
	t.Helper()
	s, err := app.LoadSearchService(context.Background(), &fakeSource{props: props})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func ids(props []domain.Property) string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return strings.Join(out, ",")
}

// ---- tests ----

func TestSearch_NoCriteriaReturnsAvailableInLoadOrder(t *testing.T) {
	s := load(t, inventory())
	got, err := s.Search(context.Background(), domain.Criteria{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ids(got) != "a,b,e,f" {
		t.Fatalf("expected available listings in load order, got %s", ids(got))
	}
}

func TestSearch_Filters(t *testing.T) {
	s := load(t, inventory())
	cases := []struct {
		name string
		c    domain.Criteria
		want string
	}{
		{"location matches neighborhood case-insensitively", domain.Criteria{Location: ptr("WHITEFIELD")}, "a,f"},
		{"location matches city", domain.Criteria{Location: ptr("bengaluru")}, "a,b,e,f"},
		{"location matches address", domain.Criteria{Location: ptr("hal 2nd")}, "b"},
		{"location may span city and neighborhood", domain.Criteria{Location: ptr("Bengaluru Whitefield")}, "a,f"},
		{"location may span neighborhood and address", domain.Criteria{Location: ptr("indiranagar 4 hal")}, "b"},
		{"blank location is no constraint", domain.Criteria{Location: ptr("   ")}, "a,b,e,f"},
		{"type", domain.Criteria{Type: ptr("Apartment")}, "a,f"},
		{"min bedrooms", domain.Criteria{MinBedrooms: ptr(3)}, "b,f"},
		{"min bathrooms", domain.Criteria{MinBathrooms: ptr(3)}, "b"},
		{"max price is inclusive", domain.Criteria{MaxPrice: ptr(int64(8_500_000))}, "a,f"},
		{"price band", domain.Criteria{MinPrice: ptr(int64(8_000_000)), MaxPrice: ptr(int64(40_000_000))}, "a,b"},
		{"features are all required", domain.Criteria{Features: []string{"parking", "GYM"}}, "a"},
		{"status filter replaces default", domain.Criteria{Statuses: []string{"sold", "pending"}}, "c,d"},
		{"combined", domain.Criteria{Location: ptr("bengaluru"), Type: ptr("apartment"), MinBedrooms: ptr(2), MaxPrice: ptr(int64(8_000_000))}, "f"},
		{"limit keeps the first N", domain.Criteria{Location: ptr("bengaluru"), Limit: 2}, "a,b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Search(context.Background(), tc.c)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if ids(got) != tc.want {
				t.Fatalf("got %s, want %s", ids(got), tc.want)
			}
		})
	}
}

func TestSearch_ResultsSatisfyCriteria(t *testing.T) {
	s := load(t, inventory())
	c := domain.Criteria{Location: ptr("a"), MinBedrooms: ptr(2), MaxPrice: ptr(int64(30_000_000))}

	got, err := s.Search(context.Background(), c)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	order := map[string]int{}
	for i, p := range s.Properties() {
		order[p.ID] = i
	}
	last := -1
	for _, p := range got {
		loc := strings.ToLower(p.City + " " + p.Neighborhood + " " + p.Address)
		if !strings.Contains(loc, "a") || p.Bedrooms < 2 || p.Price > 30_000_000 || p.Status != domain.StatusAvailable {
			t.Fatalf("result violates criteria: %+v", p)
		}
		if order[p.ID] <= last {
			t.Fatalf("results are not a subsequence of load order: %s", ids(got))
		}
		last = order[p.ID]
	}
}

func TestSearch_ImpossibleConstraintIsEmptyNotError(t *testing.T) {
	s := load(t, inventory())
	got, err := s.Search(context.Background(), domain.Criteria{MinBedrooms: ptr(12)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearch_InvalidCriteria(t *testing.T) {
	s := load(t, inventory())
	bad := []domain.Criteria{
		{MinBedrooms: ptr(-1)},
		{MinBathrooms: ptr(-1)},
		{MaxPrice: ptr(int64(-5))},
		{MinPrice: ptr(int64(-5))},
		{MinPrice: ptr(int64(10)), MaxPrice: ptr(int64(5))},
		{Type: ptr("castle")},
		{Statuses: []string{"rented"}},
		{Limit: -1},
	}
	for i, c := range bad {
		if _, err := s.Search(context.Background(), c); !errors.Is(err, domain.ErrInvalidCriteria) {
			t.Fatalf("case %d: expected ErrInvalidCriteria, got %v", i, err)
		}
	}
}

func TestSearch_ResultsDoNotAliasSnapshot(t *testing.T) {
	s := load(t, inventory())
	got, _ := s.Search(context.Background(), domain.Criteria{Features: []string{"gym"}})
	got[0].Features[0] = "mutated"
	got[0].Price = 1

	again, _ := s.Search(context.Background(), domain.Criteria{Features: []string{"gym"}})
	if len(again) != 1 || again[0].Price != 8_500_000 || again[0].Features[0] != "parking" {
		t.Fatalf("snapshot was mutated through a result: %+v", again)
	}
}

func TestLoad_MissingSourceReportsUnavailable(t *testing.T) {
	s, err := app.LoadSearchService(context.Background(), &fakeSource{err: errors.New("open data.json: no such file")})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable from load, got %v", err)
	}
	if s == nil || s.Ready() || s.Len() != 0 || len(s.Properties()) != 0 {
		t.Fatalf("service should exist with no properties")
	}
	if _, err := s.Search(context.Background(), domain.Criteria{}); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable from search, got %v", err)
	}
	if _, err := s.GetProperty(context.Background(), "a"); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable from get, got %v", err)
	}
}

func TestLoad_SkipsInvalidAndDuplicateRecords(t *testing.T) {
	props := []domain.Property{
		// missing status defaults to available
		{ID: "x", Type: "House", Price: 100},
		// duplicate id, first one wins
		{ID: "x", Type: domain.TypeCondo, Price: 200, Status: domain.StatusAvailable},
		{ID: "neg", Type: domain.TypeHouse, Price: -1, Status: domain.StatusAvailable},
		{ID: "bad", Type: domain.TypeHouse, Price: 1, Status: "rented"},
		{ID: "", Type: domain.TypeHouse, Price: 1, Status: domain.StatusAvailable},
		{ID: "typ", Type: "castle", Price: 1, Status: domain.StatusAvailable},
		{ID: "rooms", Type: domain.TypeHouse, Bedrooms: -2, Status: domain.StatusAvailable},
	}
	s := load(t, props)
	if s.Len() != 1 {
		t.Fatalf("expected 1 property, got %d: %+v", s.Len(), s.Properties())
	}
	p, err := s.GetProperty(context.Background(), "x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Type != domain.TypeHouse || p.Status != domain.StatusAvailable || p.Price != 100 {
		t.Fatalf("unexpected normalised property: %+v", p)
	}
}

func TestGetProperty_NotFound(t *testing.T) {
	s := load(t, inventory())
	if _, err := s.GetProperty(context.Background(), "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	p, err := s.GetProperty(context.Background(), " c ")
	if err != nil || p.ID != "c" {
		t.Fatalf("expected sold listing c by id, got %+v %v", p, err)
	}
}
