package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ivy_homes/internal/domain"
)

/********** alias registries (single source of truth) **********/

var propertyAliases = map[string][]string{
	"id":           {"id", "property_id", "propertyId", "listing_id", "uuid"},
	"type":         {"type", "property_type", "propertyType", "category"},
	"city":         {"city", "location.city", "address.city"},
	"neighborhood": {"neighborhood", "neighbourhood", "locality", "location.neighborhood", "address.neighborhood"},
	"address":      {"address", "address_line", "full_address", "location.address", "address.line"},
	"description":  {"description", "summary", "details"},
	"status":       {"status", "availability", "listing_status"},
	"listed":       {"listed_date", "listing_date", "listed_at", "listedAt"},
}

var numericAliases = map[string][]string{
	"price":     {"price", "price_minor", "list_price", "amount"},
	"bedrooms":  {"bedrooms", "bhk", "beds"},
	"bathrooms": {"bathrooms", "baths"},
	"area":      {"area_sqft", "sqft", "square_feet", "area"},
	"year":      {"year_built", "construction_year", "built_year"},
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "02-01-2006"}

/********** decoding **********/

// Decode reads an inventory document: either {"properties":[...]} or a
// bare array of property objects. Non-object entries and entries without a
// usable price are skipped.
func Decode(r io.Reader) ([]domain.Property, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber() // integer amounts stay exact past 2^53

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["properties"].([]any)
		if !ok {
			return nil, errors.New(`decode inventory: missing "properties" array`)
		}
		items = list
	default:
		return nil, fmt.Errorf("decode inventory: unexpected top-level %T", doc)
	}

	out := make([]domain.Property, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			log.Warn().Int("index", i).Msg("inventory entry is not an object; skipped")
			continue
		}
		p, err := MapProperty(m)
		if err != nil {
			log.Warn().Int("index", i).Err(err).Msg("inventory entry skipped")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

/********** property mapper **********/

// ErrNoPrice is returned by MapProperty when no price alias holds a number.
var ErrNoPrice = errors.New("missing or unparseable price")

// MapProperty maps a loosely-shaped JSON object onto domain.Property. A
// listing without a price is rejected; everything else is left to the
// loader's validation.
func MapProperty(p map[string]any) (domain.Property, error) {
	out := domain.Property{
		ID:           firstString(p, "id"),
		Type:         domain.PropertyType(firstString(p, "type")),
		City:         firstString(p, "city"),
		Neighborhood: firstString(p, "neighborhood"),
		Address:      firstString(p, "address"),
		Description:  firstString(p, "description"),
		Status:       domain.Status(firstString(p, "status")),
		Features:     firstSliceStrings(p, "features", "amenities", "tags"),
	}
	if out.ID == "" {
		// numeric ids are common in exported spreadsheets
		if n := firstInt64Flexible(p, propertyAliases["id"]...); n != nil {
			out.ID = strconv.FormatInt(*n, 10)
		}
	}
	n := firstInt64Flexible(p, numericAliases["price"]...)
	if n == nil {
		return out, fmt.Errorf("property %q: %w", out.ID, ErrNoPrice)
	}
	out.Price = *n
	if n := firstInt64Flexible(p, numericAliases["bedrooms"]...); n != nil {
		out.Bedrooms = int(*n)
	}
	if n := firstInt64Flexible(p, numericAliases["bathrooms"]...); n != nil {
		out.Bathrooms = int(*n)
	}
	if n := firstInt64Flexible(p, numericAliases["area"]...); n != nil {
		a := int(*n)
		out.AreaSqft = &a
	}
	if n := firstInt64Flexible(p, numericAliases["year"]...); n != nil {
		y := int(*n)
		out.YearBuilt = &y
	}
	if s := firstString(p, "listed"); s != "" {
		if t, ok := parseDate(s); ok {
			out.ListedAt = &t
		} else {
			log.Warn().Str("id", out.ID).Str("value", s).Msg("unparseable listing date; ignored")
		}
	}
	return out, nil
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstString: first non-empty string for a named alias set.
func firstString(m map[string]any, key string) string {
	for _, p := range propertyAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstInt64Flexible: int64 from several paths (float64/int/string like
// "85,00,000" or "3BHK").
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(math.Round(v))
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return &n
			}
			if f, err := v.Float64(); err == nil {
				x := int64(math.Round(f))
				return &x
			}
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			s = strings.TrimSpace(strings.TrimSuffix(s, "bhk"))
			s = strings.ReplaceAll(s, ",", "")
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				x := int64(math.Round(f))
				return &x
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/label}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				if n, ok := t["name"].(string); ok && n != "" {
					out = append(out, n)
					continue
				}
				if n, ok := t["label"].(string); ok && n != "" {
					out = append(out, n)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
