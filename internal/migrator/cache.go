package migrator

import (
	"context"
	"fmt"
	"log/slog"
)

// lookupCache memoizes repository objects by name, creating missing ones on first use
type lookupCache[V any] struct {
	kind   string
	items  map[string]V
	create func(ctx context.Context, name string) (V, error)
}

func newLookupCache[V any](kind string, create func(ctx context.Context, name string) (V, error)) *lookupCache[V] {
	return &lookupCache[V]{
		kind:   kind,
		items:  make(map[string]V),
		create: create,
	}
}

func (c *lookupCache[V]) put(name string, value V) {
	c.items[name] = value
}

func (c *lookupCache[V]) get(ctx context.Context, name string) (V, error) {
	if value, ok := c.items[name]; ok {
		return value, nil
	}

	slog.Info("Creating "+c.kind, "name", name)
	value, err := c.create(ctx, name)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("failed to create %s %q: %w", c.kind, name, err)
	}
	c.items[name] = value
	return value, nil
}
