package recommend

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds are the tunable constants of the scoring algorithm.
type Thresholds struct {
	// Include is the score a category must exceed to become a candidate.
	Include float64 `yaml:"include" json:"include"`
	// Featured is the score a candidate must exceed to be featured.
	Featured float64 `yaml:"featured" json:"featured"`
	// Comprehensive is the category sum that adds the composite candidate.
	Comprehensive float64 `yaml:"comprehensive" json:"comprehensive"`
	// MinGoalsForComprehensive adds the composite candidate by goal count alone.
	MinGoalsForComprehensive int `yaml:"min_goals_for_comprehensive" json:"min_goals_for_comprehensive"`
	// Fallback is the score of the discovery candidate.
	Fallback float64 `yaml:"fallback" json:"fallback"`
	// MaxScore clamps every score.
	MaxScore float64 `yaml:"max_score" json:"max_score"`
}

// Category is a recommendation the engine can produce.
type Category struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Features    []string `yaml:"features" json:"features"`
	PriceRange  string   `yaml:"price_range" json:"price_range"`
	Duration    string   `yaml:"duration" json:"duration"`
}

// Contribution adds points to a category.
type Contribution struct {
	Category string  `yaml:"category" json:"category"`
	Points   float64 `yaml:"points" json:"points"`
}

// Rule fires when Field holds Value (as the scalar answer or one of the selections).
type Rule struct {
	Field         string         `yaml:"field" json:"field"`
	Value         string         `yaml:"value" json:"value"`
	Reason        string         `yaml:"reason" json:"reason"`
	Contributions []Contribution `yaml:"contributions" json:"contributions"`
}

// Config is the full rule table.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	Categories []Category `yaml:"categories" json:"categories"`
	Rules      []Rule     `yaml:"rules" json:"rules"`

	// PreferenceField holds explicit service selections; Preferences maps a
	// selected value to the category it forces into the result.
	PreferenceField string            `yaml:"preference_field" json:"preference_field"`
	Preferences     map[string]string `yaml:"preferences" json:"preferences"`

	// GoalsField is counted against MinGoalsForComprehensive.
	GoalsField string `yaml:"goals_field" json:"goals_field"`

	// Comprehensive is the composite candidate. An empty ID disables it.
	Comprehensive Category `yaml:"comprehensive" json:"comprehensive"`
	Fallback      Category `yaml:"fallback" json:"fallback"`
}

// LoadConfig reads a YAML rule table. Keys absent from the file keep their
// DefaultConfig values; lists present in the file replace the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scoring config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML rule table over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every structural problem in the rule table.
func (c Config) Validate() error {
	var errs []error
	t := c.Thresholds
	if t.MaxScore <= 0 {
		errs = append(errs, errors.New("thresholds.max_score must be positive"))
	}
	if t.Include < 0 || t.Featured < 0 || t.Comprehensive < 0 || t.Fallback < 0 {
		errs = append(errs, errors.New("thresholds cannot be negative"))
	}
	if t.MinGoalsForComprehensive < 0 {
		errs = append(errs, errors.New("thresholds.min_goals_for_comprehensive cannot be negative"))
	}

	known := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		switch {
		case cat.ID == "":
			errs = append(errs, fmt.Errorf("categories[%d]: missing id", i))
		case known[cat.ID]:
			errs = append(errs, fmt.Errorf("categories[%d]: duplicate id %q", i, cat.ID))
		}
		known[cat.ID] = true
	}
	if c.Fallback.ID == "" {
		errs = append(errs, errors.New("fallback: missing id"))
	}
	if c.Comprehensive.ID != "" && known[c.Comprehensive.ID] {
		errs = append(errs, fmt.Errorf("comprehensive: id %q collides with a category", c.Comprehensive.ID))
	}

	for i, r := range c.Rules {
		if r.Field == "" || r.Value == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: field and value are required", i))
		}
		for _, contrib := range r.Contributions {
			if !known[contrib.Category] {
				errs = append(errs, fmt.Errorf("rules[%d]: unknown category %q", i, contrib.Category))
			}
		}
	}
	for value, cat := range c.Preferences {
		if !known[cat] {
			errs = append(errs, fmt.Errorf("preferences[%s]: unknown category %q", value, cat))
		}
	}
	return errors.Join(errs...)
}
