package domain

// Candidate is a ranked program/package recommendation.
type Candidate struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	MatchScore  float64  `json:"match_score" yaml:"match_score"`
	MatchReason string   `json:"match_reason" yaml:"match_reason"`
	Features    []string `json:"features" yaml:"features"`
	PriceRange  string   `json:"price_range" yaml:"price_range"`
	Duration    string   `json:"duration" yaml:"duration"`
	IsFeatured  bool     `json:"is_featured" yaml:"is_featured"`
}
