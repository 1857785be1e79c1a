package domain

import "context"

// PropertySource is the capability every inventory backend provides: one
// full read of the collection, performed once at startup.
type PropertySource interface {
	Name() string
	Load(ctx context.Context) ([]Property, error)
}

type PropertyRepository interface {
	PropertySource

	// Write paths (seeder only)
	UpsertProperty(ctx context.Context, p Property) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Criteria are the optional search constraints. Nil / empty means no
// constraint; an empty Statuses slice means available only; Limit <= 0
// means no cap.
type Criteria struct {
	Location     *string
	Type         *string
	MinBedrooms  *int
	MinBathrooms *int
	MinPrice     *int64
	MaxPrice     *int64
	Statuses     []string
	Features     []string
	Limit        int
}
