package domain

// Pricing is the pricing model of a catalog tool.
type Pricing string

const (
	PricingFree       Pricing = "free"
	PricingFreemium   Pricing = "freemium"
	PricingPaid       Pricing = "paid"
	PricingEnterprise Pricing = "enterprise"
)

// ToolStatus is the listing status of a catalog tool.
type ToolStatus string

const (
	StatusActive     ToolStatus = "active"
	StatusBeta       ToolStatus = "beta"
	StatusPending    ToolStatus = "pending"
	StatusDeprecated ToolStatus = "deprecated"
)

// Tool is a catalog record. The coordination layer only reads tools.
type Tool struct {
	ID          string     `json:"id" yaml:"id" toml:"id" mapstructure:"id"`
	Name        string     `json:"name" yaml:"name" toml:"name" mapstructure:"name"`
	Description string     `json:"description" yaml:"description" toml:"description" mapstructure:"description"`
	Category    string     `json:"category" yaml:"category" toml:"category" mapstructure:"category"`
	Rating      float64    `json:"rating" yaml:"rating" toml:"rating" mapstructure:"rating"`
	Pricing     Pricing    `json:"pricing" yaml:"pricing" toml:"pricing" mapstructure:"pricing"`
	PriceLabel  string     `json:"price_label,omitempty" yaml:"price_label,omitempty" toml:"price_label" mapstructure:"price_label"`
	Status      ToolStatus `json:"status" yaml:"status" toml:"status" mapstructure:"status"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags" mapstructure:"tags"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty" toml:"url" mapstructure:"url"`
}

// Label returns the price label shown to users, falling back to the pricing model.
func (t Tool) Label() string {
	if t.PriceLabel != "" {
		return t.PriceLabel
	}
	switch t.Pricing {
	case PricingFree:
		return "Free"
	case PricingFreemium:
		return "Freemium"
	case PricingPaid:
		return "Paid"
	case PricingEnterprise:
		return "Contact sales"
	}
	return ""
}

// ComparisonItem projects the tool into the compare tray.
func (t Tool) ComparisonItem() ComparisonItem {
	return ComparisonItem{
		ID:         t.ID,
		Name:       t.Name,
		Category:   t.Category,
		Rating:     t.Rating,
		PriceLabel: t.Label(),
	}
}

// ComparisonItem is one member of the comparison tray.
type ComparisonItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Rating     float64 `json:"rating"`
	PriceLabel string  `json:"price_label"`
}
