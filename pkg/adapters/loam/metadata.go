package loam

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ToolCard is the frontmatter of a markdown tool card.
// The markdown body becomes the tool description unless Description is set.
type ToolCard struct {
	ID          string   `json:"id" mapstructure:"id"`
	Name        string   `json:"name" mapstructure:"name"`
	Description string   `json:"description" mapstructure:"description"`
	Category    string   `json:"category" mapstructure:"category"`
	Rating      any      `json:"rating" mapstructure:"rating"`
	Pricing     string   `json:"pricing" mapstructure:"pricing"`
	PriceLabel  string   `json:"price_label" mapstructure:"price_label"`
	Status      string   `json:"status" mapstructure:"status"`
	Tags        []string `json:"tags" mapstructure:"tags"`
	URL         string   `json:"url" mapstructure:"url"`
}

// rating accepts the numeric shapes frontmatter parsers produce.
// Strict mode yields json.Number.
func rating(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("rating: unexpected %T", v)
}
