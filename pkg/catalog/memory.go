// Package catalog provides read-only tool catalogs and search over them.
package catalog

import (
	"context"
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Validate checks a single tool record.
func Validate(t domain.Tool) error {
	if t.ID == "" {
		return fmt.Errorf("tool %q: missing id", t.Name)
	}
	if t.Name == "" {
		return fmt.Errorf("tool %s: missing name", t.ID)
	}
	if t.Rating < 0 || t.Rating > 5 {
		return fmt.Errorf("tool %s: rating %.1f outside [0, 5]", t.ID, t.Rating)
	}
	switch t.Pricing {
	case "", domain.PricingFree, domain.PricingFreemium, domain.PricingPaid, domain.PricingEnterprise:
	default:
		return fmt.Errorf("tool %s: unknown pricing %q", t.ID, t.Pricing)
	}
	switch t.Status {
	case "", domain.StatusActive, domain.StatusBeta, domain.StatusPending, domain.StatusDeprecated:
	default:
		return fmt.Errorf("tool %s: unknown status %q", t.ID, t.Status)
	}
	return nil
}

// Memory is an immutable in-memory catalog.
type Memory struct {
	tools []domain.Tool
	index map[string]int
}

// NewMemory builds a catalog from tools, keeping their order.
// Every tool must be valid and ids must be unique.
func NewMemory(tools ...domain.Tool) (*Memory, error) {
	m := &Memory{
		tools: make([]domain.Tool, 0, len(tools)),
		index: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if err := Validate(t); err != nil {
			return nil, err
		}
		if _, dup := m.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool id %s", t.ID)
		}
		if t.Status == "" {
			t.Status = domain.StatusActive
		}
		m.index[t.ID] = len(m.tools)
		m.tools = append(m.tools, t)
	}
	return m, nil
}

func (m *Memory) List(ctx context.Context) ([]domain.Tool, error) {
	out := make([]domain.Tool, len(m.tools))
	for i, t := range m.tools {
		out[i] = clone(t)
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (domain.Tool, error) {
	i, ok := m.index[id]
	if !ok {
		return domain.Tool{}, fmt.Errorf("%w: %s", domain.ErrToolNotFound, id)
	}
	return clone(m.tools[i]), nil
}

func clone(t domain.Tool) domain.Tool {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}
