// Package recommend turns a completed answer set into ranked recommendations.
//
// Scoring is a pure, total function of the answers and the rule table: no I/O,
// no randomness, and no errors. Equal answers always produce equal output.
package recommend

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Hit records one rule that fired for a category.
type Hit struct {
	Field  string  `json:"field"`
	Value  string  `json:"value"`
	Points float64 `json:"points"`
	Reason string  `json:"reason"`
}

// Breakdown is the accumulation detail of one category.
type Breakdown struct {
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	Preferred bool    `json:"preferred"`
	Included  bool    `json:"included"`
	Hits      []Hit   `json:"hits,omitempty"`
}

// Engine scores answers against a validated Config.
type Engine struct {
	cfg Config
}

// New creates an engine. The config is validated once here.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Default creates an engine with DefaultConfig.
func Default() *Engine {
	e, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the engine's rule table.
func (e *Engine) Config() Config { return e.cfg }

// Explain returns the per-category accumulation in declaration order.
func (e *Engine) Explain(answers domain.Answers) []Breakdown {
	preferred := make(map[string]bool)
	for _, v := range answers.Selected(e.cfg.PreferenceField) {
		if cat, ok := e.cfg.Preferences[v]; ok {
			preferred[cat] = true
		}
	}

	byID := make(map[string]*Breakdown, len(e.cfg.Categories))
	out := make([]Breakdown, len(e.cfg.Categories))
	for i, cat := range e.cfg.Categories {
		out[i] = Breakdown{Category: cat.ID, Preferred: preferred[cat.ID]}
		byID[cat.ID] = &out[i]
	}

	for _, r := range e.cfg.Rules {
		if !answers.Contains(r.Field, r.Value) {
			continue
		}
		for _, c := range r.Contributions {
			b := byID[c.Category]
			b.Score += c.Points
			b.Hits = append(b.Hits, Hit{Field: r.Field, Value: r.Value, Points: c.Points, Reason: r.Reason})
		}
	}

	for i := range out {
		out[i].Score = e.clamp(out[i].Score)
		out[i].Included = out[i].Score > e.cfg.Thresholds.Include || out[i].Preferred
	}
	return out
}

// Score ranks the candidates for answers. The result is never empty: when no
// category qualifies, the single fallback candidate is returned, featured.
func (e *Engine) Score(answers domain.Answers) []domain.Candidate {
	t := e.cfg.Thresholds
	breakdown := e.Explain(answers)

	var (
		candidates []domain.Candidate
		sum        float64
		positive   []float64
	)
	for i, b := range breakdown {
		sum += b.Score
		if b.Score > 0 {
			positive = append(positive, b.Score)
		}
		if b.Included {
			candidates = append(candidates, e.candidate(e.cfg.Categories[i], b))
		}
	}

	goals := len(answers.Selected(e.cfg.GoalsField))
	wantsComposite := sum > t.Comprehensive ||
		(t.MinGoalsForComprehensive > 0 && goals >= t.MinGoalsForComprehensive)
	if e.cfg.Comprehensive.ID != "" && wantsComposite && len(positive) > 0 {
		candidates = append(candidates, e.composite(positive, sum, goals))
	}

	if len(candidates) == 0 {
		return []domain.Candidate{e.fallback()}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	featured := false
	for i := range candidates {
		if !featured && candidates[i].MatchScore > t.Featured {
			candidates[i].IsFeatured = true
			featured = true
		}
	}
	return candidates
}

func (e *Engine) candidate(cat Category, b Breakdown) domain.Candidate {
	var reasons []string
	if b.Preferred {
		reasons = append(reasons, "You selected "+cat.Title)
	}
	for _, h := range b.Hits {
		if h.Reason != "" && !slices.Contains(reasons, h.Reason) {
			reasons = append(reasons, h.Reason)
		}
	}
	c := fromCategory(cat, b.Score)
	c.MatchReason = strings.Join(reasons, "; ")
	return c
}

func (e *Engine) composite(scores []float64, sum float64, goals int) domain.Candidate {
	var total float64
	for _, s := range scores {
		total += s
	}
	c := fromCategory(e.cfg.Comprehensive, e.clamp(total/float64(len(scores))))
	if sum > e.cfg.Thresholds.Comprehensive {
		c.MatchReason = "Your answers point to several areas at once"
	} else {
		c.MatchReason = fmt.Sprintf("You set %d distinct goals", goals)
	}
	return c
}

func (e *Engine) fallback() domain.Candidate {
	c := fromCategory(e.cfg.Fallback, e.clamp(e.cfg.Thresholds.Fallback))
	c.MatchReason = "Let's talk through your goals together"
	c.IsFeatured = true
	return c
}

func (e *Engine) clamp(v float64) float64 {
	return min(max(v, 0), e.cfg.Thresholds.MaxScore)
}

func fromCategory(cat Category, score float64) domain.Candidate {
	return domain.Candidate{
		ID:          cat.ID,
		Title:       cat.Title,
		Description: cat.Description,
		MatchScore:  score,
		Features:    slices.Clone(cat.Features),
		PriceRange:  cat.PriceRange,
		Duration:    cat.Duration,
	}
}
