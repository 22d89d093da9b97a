// Package loam reads the tool catalog from a directory of markdown tool cards.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/domain"
)

// Catalog adapts a Loam repository of tool cards to ports.Catalog.
type Catalog struct {
	Repo *loam.TypedRepository[ToolCard]
}

// New creates a new Loam catalog adapter.
func New(repo *loam.TypedRepository[ToolCard]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across markdown and JSON cards.
	// The catalog never writes, so ReadOnly avoids Loam's sandbox copy.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ToolCard](repo)), nil
}

// List returns every card in the repository.
// Two cards resolving to the same id are an error.
func (c *Catalog) List(ctx context.Context) ([]domain.Tool, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	tools := make([]domain.Tool, 0, len(docs))
	for _, doc := range docs {
		tool, err := toTool(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[tool.ID]; ok {
			return nil, fmt.Errorf("collision detected: tool '%s' is defined in both '%s' and '%s'", tool.ID, existing, doc.ID)
		}
		seen[tool.ID] = doc.ID
		tools = append(tools, tool)
	}
	return tools, nil
}

// Get returns the card whose id matches.
func (c *Catalog) Get(ctx context.Context, id string) (domain.Tool, error) {
	tools, err := c.List(ctx)
	if err != nil {
		return domain.Tool{}, err
	}
	for _, t := range tools {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Tool{}, fmt.Errorf("%w: %s", domain.ErrToolNotFound, id)
}

// Watch implements ports.Watchable.
func (c *Catalog) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func toTool(docID string, card ToolCard, body string) (domain.Tool, error) {
	id := card.ID
	if id == "" {
		id = docID
	}
	id = trimExtension(id)

	r, err := rating(card.Rating)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("card %s: %w", docID, err)
	}

	desc := card.Description
	if desc == "" {
		desc = strings.TrimSpace(body)
	}
	name := card.Name
	if name == "" {
		name = id
	}

	tool := domain.Tool{
		ID:          id,
		Name:        name,
		Description: desc,
		Category:    card.Category,
		Rating:      r,
		Pricing:     domain.Pricing(card.Pricing),
		PriceLabel:  card.PriceLabel,
		Status:      domain.ToolStatus(card.Status),
		Tags:        card.Tags,
		URL:         card.URL,
	}
	if tool.Status == "" {
		tool.Status = domain.StatusActive
	}
	if err := catalog.Validate(tool); err != nil {
		return domain.Tool{}, fmt.Errorf("card %s: %w", docID, err)
	}
	return tool, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
