package ports

import (
	"context"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Catalog defines how the controller reads tool records.
// Implementations never expose a way to mutate the catalog.
type Catalog interface {
	// List returns every tool in catalog order.
	List(ctx context.Context) ([]domain.Tool, error)

	// Get returns a tool by id.
	// Returns domain.ErrToolNotFound if no tool matches.
	Get(ctx context.Context, id string) (domain.Tool, error)
}

// Watchable defines an interface for catalogs that can notify about backend changes.
// This is typically used for hot-reload in development.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying catalog changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
