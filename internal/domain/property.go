package domain

import (
	"fmt"
	"strings"
	"time"
)

type PropertyType string

const (
	TypeApartment  PropertyType = "apartment"
	TypeHouse      PropertyType = "house"
	TypeCondo      PropertyType = "condo"
	TypeCommercial PropertyType = "commercial"
)

func ParsePropertyType(s string) (PropertyType, error) {
	switch t := PropertyType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeApartment, TypeHouse, TypeCondo, TypeCommercial:
		return t, nil
	}
	return "", fmt.Errorf("unknown property type %q", s)
}

type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAvailable, StatusPending, StatusSold:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Property is one inventory listing. Price is an integer amount in the
// smallest currency unit; Area, YearBuilt and ListedAt are optional.
type Property struct {
	ID           string       `json:"id"`
	Type         PropertyType `json:"type"`
	City         string       `json:"city"`
	Neighborhood string       `json:"neighborhood"`
	Address      string       `json:"address"`
	Price        int64        `json:"price"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	AreaSqft     *int         `json:"area_sqft,omitempty"`
	YearBuilt    *int         `json:"year_built,omitempty"`
	Description  string       `json:"description"`
	Features     []string     `json:"features"`
	Status       Status       `json:"status"`
	ListedAt     *time.Time   `json:"listed_date,omitempty"`
}

// Validate checks the per-record invariants. Uniqueness of ID is a
// collection property and is enforced by the loader.
func (p Property) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("property: empty id")
	}
	if _, err := ParsePropertyType(string(p.Type)); err != nil {
		return fmt.Errorf("property %s: %w", p.ID, err)
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return fmt.Errorf("property %s: %w", p.ID, err)
	}
	if p.Price < 0 {
		return fmt.Errorf("property %s: negative price %d", p.ID, p.Price)
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 {
		return fmt.Errorf("property %s: negative room count", p.ID)
	}
	if p.AreaSqft != nil && *p.AreaSqft < 0 {
		return fmt.Errorf("property %s: negative area", p.ID)
	}
	return nil
}

// HasFeature reports whether the listing carries tag, ignoring case.
func (p Property) HasFeature(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, f := range p.Features {
		if strings.ToLower(f) == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Property) Clone() Property {
	out := p
	if p.Features != nil {
		out.Features = append([]string(nil), p.Features...)
	}
	if p.AreaSqft != nil {
		a := *p.AreaSqft
		out.AreaSqft = &a
	}
	if p.YearBuilt != nil {
		y := *p.YearBuilt
		out.YearBuilt = &y
	}
	if p.ListedAt != nil {
		t := *p.ListedAt
		out.ListedAt = &t
	}
	return out
}
