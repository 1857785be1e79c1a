package app_test

import (
	"math"
	"strings"
	"testing"

	"ivy_homes/internal/app"
	"ivy_homes/internal/domain"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{99_999, "99,999"},
		{100_000, "1.0 lakh"},
		{2_550_000, "25.5 lakh"},
		{9_999_999, "100.0 lakh"},
		{10_000_000, "1.0 crore"},
		{32_000_000, "3.2 crore"},
		{1_250_000_000, "125.0 crore"},
		{-8_500_000, "-85.0 lakh"},
	}
	for _, tc := range cases {
		if got := app.FormatPrice(tc.in); got != tc.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPrice_MinInt64DoesNotOverflow(t *testing.T) {
	got := app.FormatPrice(math.MinInt64)
	if !strings.HasPrefix(got, "-") || !strings.HasSuffix(got, " crore") {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestSummarize_None(t *testing.T) {
	if got := app.Summarize(nil); got != app.NoMatchesSpeech {
		t.Fatalf("got %q", got)
	}
}

func TestSummarize_Single(t *testing.T) {
	p := domain.Property{
		ID: "a", Type: domain.TypeApartment, Address: "12 ITPL Main Road", Price: 8_500_000,
		Bedrooms: 2, Bathrooms: 1, Description: "Corner unit with a view.",
	}
	want := "I found an apartment at 12 ITPL Main Road. It has 2 bedrooms, 1 bathroom, and is priced at 85.0 lakh rupees. Corner unit with a view."
	if got := app.Summarize([]domain.Property{p}); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}

	p.Type, p.Address, p.Description = domain.TypeHouse, "", ""
	got := app.Summarize([]domain.Property{p})
	if !strings.HasPrefix(got, "I found a house at an available location.") {
		t.Fatalf("got %q", got)
	}
}

func TestSummarize_Many(t *testing.T) {
	props := []domain.Property{
		{ID: "1", Type: domain.TypeApartment, Neighborhood: "Whitefield", Bedrooms: 2, Price: 8_500_000},
		{ID: "2", Type: domain.TypeHouse, City: "Pune", Bedrooms: 4, Price: 32_000_000},
		{ID: "3", Type: domain.TypeCondo, Neighborhood: "Powai", Bedrooms: 3, Price: 21_000_000},
		{ID: "4", Type: domain.TypeCondo, Neighborhood: "Powai", Bedrooms: 1, Price: 9_000_000},
	}
	got := app.Summarize(props)

	for _, part := range []string{
		"I found 4 properties. Here are the top matches: ",
		"Property 1: A 2-bedroom apartment in Whitefield for 85.0 lakh rupees. ",
		"Property 2: A 4-bedroom house in Pune for 3.2 crore rupees. ",
		"Property 3: A 3-bedroom condo in Powai for 2.1 crore rupees. ",
		"And 1 more option. ",
	} {
		if !strings.Contains(got, part) {
			t.Fatalf("missing %q in %q", part, got)
		}
	}
	if strings.Contains(got, "Property 4") {
		t.Fatalf("only the top three should be read out: %q", got)
	}
	if !strings.HasSuffix(got, "Would you like more details on any of these?") {
		t.Fatalf("missing closing question: %q", got)
	}

	two := app.Summarize(props[:2])
	if strings.Contains(two, "more option") {
		t.Fatalf("no remainder expected for two results: %q", two)
	}
}
