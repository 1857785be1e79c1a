package app

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ivy_homes/internal/domain"
)

const (
	lakh  = 100_000
	crore = 10_000_000

	// number of listings read out individually before "and N more"
	spokenTop = 3
)

var numbers = message.NewPrinter(language.English)

// FormatPrice renders an amount for speech using the Indian numbering
// units: crores from 1e7, lakhs from 1e5 (one decimal place each), plain
// grouped digits below that.
func FormatPrice(amount int64) string {
	if amount < 0 {
		if amount == math.MinInt64 {
			return "-" + FormatPrice(math.MaxInt64)
		}
		return "-" + FormatPrice(-amount)
	}
	switch {
	case amount >= crore:
		return fmt.Sprintf("%.1f crore", float64(amount)/crore)
	case amount >= lakh:
		return fmt.Sprintf("%.1f lakh", float64(amount)/lakh)
	}
	return numbers.Sprintf("%d", amount)
}

const NoMatchesSpeech = "I couldn't find any properties matching your criteria."

// Summarize turns a result set into a few sentences fit for text-to-speech:
// full detail for a single match, the top three for several.
func Summarize(props []domain.Property) string {
	switch len(props) {
	case 0:
		return NoMatchesSpeech
	case 1:
		p := props[0]
		var b strings.Builder
		fmt.Fprintf(&b, "I found %s at %s. ", withArticle(typeWord(p)), orDefault(p.Address, "an available location"))
		fmt.Fprintf(&b, "It has %s, %s, and is priced at %s rupees.",
			plural(p.Bedrooms, "bedroom"), plural(p.Bathrooms, "bathroom"), FormatPrice(p.Price))
		if d := strings.TrimSpace(p.Description); d != "" {
			b.WriteString(" ")
			b.WriteString(d)
		}
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d properties. Here are the top matches: ", len(props))
	for i, p := range props {
		if i == spokenTop {
			break
		}
		fmt.Fprintf(&b, "Property %d: A %d-bedroom %s in %s for %s rupees. ",
			i+1, p.Bedrooms, typeWord(p), area(p), FormatPrice(p.Price))
	}
	if extra := len(props) - spokenTop; extra > 0 {
		fmt.Fprintf(&b, "And %d more %s. ", extra, pluralWord(extra, "option"))
	}
	b.WriteString("Would you like more details on any of these?")
	return b.String()
}

func typeWord(p domain.Property) string {
	if p.Type == "" {
		return "property"
	}
	return string(p.Type)
}

func area(p domain.Property) string {
	if p.Neighborhood != "" {
		return p.Neighborhood
	}
	return orDefault(p.City, "the area")
}

func withArticle(w string) string {
	if w != "" && strings.ContainsRune("aeiou", rune(w[0])) {
		return "an " + w
	}
	return "a " + w
}

func plural(n int, word string) string {
	return fmt.Sprintf("%d %s", n, pluralWord(n, word))
}

func pluralWord(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
