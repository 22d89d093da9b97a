package catalog

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/ports"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query filters a catalog. Zero fields match everything.
type Query struct {
	// Text matches name, description and tags, ignoring case and accents.
	Text      string            `json:"text,omitempty"`
	Category  string            `json:"category,omitempty"`
	Pricing   domain.Pricing    `json:"pricing,omitempty"`
	Status    domain.ToolStatus `json:"status,omitempty"`
	MinRating float64           `json:"min_rating,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}

// Fold normalizes s for matching: accents stripped, case folded.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(strings.TrimSpace(out))
}

// Matches reports whether a tool satisfies the query.
func (q Query) Matches(t domain.Tool) bool {
	if q.Category != "" && Fold(q.Category) != Fold(t.Category) {
		return false
	}
	if q.Pricing != "" && q.Pricing != t.Pricing {
		return false
	}
	if q.Status != "" && q.Status != t.Status {
		return false
	}
	if t.Rating < q.MinRating {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := Fold(q.Text)
	haystack := []string{t.ID, t.Name, t.Description, t.Category}
	haystack = append(haystack, t.Tags...)
	for _, h := range haystack {
		if strings.Contains(Fold(h), needle) {
			return true
		}
	}
	return false
}

// Search returns the tools matching q, best rated first, then by name.
func Search(ctx context.Context, c ports.Catalog, q Query) ([]domain.Tool, error) {
	tools, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Tool, 0, len(tools))
	for _, t := range tools {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return Fold(out[i].Name) < Fold(out[j].Name)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Categories returns the distinct categories of a catalog, sorted.
func Categories(ctx context.Context, c ports.Catalog) ([]string, error) {
	tools, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range tools {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out, nil
}
