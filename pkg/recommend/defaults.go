package recommend

import "github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"

// Category identifiers of the default rule table.
const (
	CategoryBranding      = "branding"
	CategoryCoaching      = "coaching"
	CategoryFitness       = "fitness"
	CategoryComprehensive = "comprehensive"
	CategoryDiscovery     = "discovery"
)

// DefaultThresholds are the stock scoring constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Include:                  50,
		Featured:                 70,
		Comprehensive:            150,
		MinGoalsForComprehensive: 3,
		Fallback:                 50,
		MaxScore:                 100,
	}
}

// DefaultConfig returns the rule table for the built-in flows.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Categories: []Category{
			{
				ID:          CategoryBranding,
				Title:       "Brand Strategy & Identity",
				Description: "Clarify your message and build a brand that reflects who you are.",
				Features:    []string{"Brand discovery workshop", "Visual identity", "Messaging guide"},
				PriceRange:  "$1,500 - $5,000",
				Duration:    "6-10 weeks",
			},
			{
				ID:          CategoryCoaching,
				Title:       "Life & Business Coaching",
				Description: "One-on-one coaching to set direction and keep you accountable.",
				Features:    []string{"Bi-weekly sessions", "Goal roadmap", "Accountability check-ins"},
				PriceRange:  "$300 - $800 / month",
				Duration:    "3-6 months",
			},
			{
				ID:          CategoryFitness,
				Title:       "Personal Training Program",
				Description: "A training plan built around your level, schedule and goals.",
				Features:    []string{"Custom programming", "Form coaching", "Progress tracking"},
				PriceRange:  "$200 - $600 / month",
				Duration:    "12 weeks",
			},
		},
		Rules:           defaultRules(),
		PreferenceField: flows.KeyPreferredServices,
		Preferences: map[string]string{
			flows.ServiceBranding: CategoryBranding,
			flows.ServiceCoaching: CategoryCoaching,
			flows.ServiceFitness:  CategoryFitness,
		},
		GoalsField: flows.KeyGoals,
		Comprehensive: Category{
			ID:          CategoryComprehensive,
			Title:       "Comprehensive Transformation Package",
			Description: "Brand, mindset and body, combined into one program.",
			Features:    []string{"Everything in each program", "Single point of contact", "Quarterly strategy review"},
			PriceRange:  "$5,000+",
			Duration:    "6 months",
		},
		Fallback: Category{
			ID:          CategoryDiscovery,
			Title:       "Discovery Consultation",
			Description: "A free conversation to find the right starting point together.",
			Features:    []string{"30-minute call", "Personalized next steps"},
			PriceRange:  "Free",
			Duration:    "30 minutes",
		},
	}
}

func rule(field, value, reason string, contribs ...Contribution) Rule {
	return Rule{Field: field, Value: value, Reason: reason, Contributions: contribs}
}

func pts(category string, points float64) Contribution {
	return Contribution{Category: category, Points: points}
}

func defaultRules() []Rule {
	const (
		goals      = flows.KeyGoals
		level      = flows.KeyFitnessLevel
		last       = flows.KeyLastWorkout
		prefs      = flows.KeyPreferredServices
		challenges = flows.KeyChallenges
		budget     = flows.KeyBudget
		sessions   = flows.KeySessionsPerWeek
	)
	return []Rule{
		rule(level, flows.LevelAdvancedAthlete, "Built for an experienced athlete", pts(CategoryFitness, 40)),
		rule(level, flows.LevelAdvanced, "Matches your advanced fitness level", pts(CategoryFitness, 30)),
		rule(level, flows.LevelIntermediate, "Builds on your current fitness", pts(CategoryFitness, 20)),
		rule(level, flows.LevelBeginner, "A guided start for beginners", pts(CategoryFitness, 15), pts(CategoryCoaching, 10)),

		rule(goals, "weight-management", "Supports your weight management goal", pts(CategoryFitness, 30), pts(CategoryCoaching, 10)),
		rule(goals, "strength", "Focused on building strength", pts(CategoryFitness, 30)),
		rule(goals, "endurance", "Improves endurance", pts(CategoryFitness, 25)),
		rule(goals, "mobility", "Improves mobility", pts(CategoryFitness, 20)),
		rule(goals, "athletic-performance", "Targets athletic performance", pts(CategoryFitness, 35)),
		rule(goals, "general-health", "Supports overall health", pts(CategoryFitness, 20), pts(CategoryCoaching, 5)),
		rule(goals, "brand-identity", "Shapes your brand identity", pts(CategoryBranding, 35)),
		rule(goals, "business-launch", "Helps launch your business", pts(CategoryBranding, 30), pts(CategoryCoaching, 15)),
		rule(goals, "career-growth", "Accelerates your career growth", pts(CategoryCoaching, 30), pts(CategoryBranding, 10)),
		rule(goals, "mindset", "Works on your mindset", pts(CategoryCoaching, 30)),
		rule(goals, "work-life-balance", "Restores work-life balance", pts(CategoryCoaching, 25), pts(CategoryFitness, 10)),

		rule(last, "over-a-year", "Eases you back into training", pts(CategoryFitness, 10), pts(CategoryCoaching, 10)),
		rule(last, "several-months", "Rebuilds your training habit", pts(CategoryFitness, 10)),

		rule(prefs, flows.ServiceBranding, "You asked about branding", pts(CategoryBranding, 25)),
		rule(prefs, flows.ServiceCoaching, "You asked about coaching", pts(CategoryCoaching, 25)),
		rule(prefs, flows.ServiceFitness, "You asked about fitness", pts(CategoryFitness, 25)),

		rule(challenges, "visibility", "Raises your visibility", pts(CategoryBranding, 20)),
		rule(challenges, "clarity", "Brings clarity", pts(CategoryCoaching, 20), pts(CategoryBranding, 10)),
		rule(challenges, "motivation", "Keeps you motivated", pts(CategoryCoaching, 15), pts(CategoryFitness, 10)),
		rule(challenges, "accountability", "Keeps you accountable", pts(CategoryCoaching, 20), pts(CategoryFitness, 10)),
		rule(challenges, "time", "Fits a busy schedule", pts(CategoryCoaching, 10)),
		rule(challenges, "consistency", "Builds consistency", pts(CategoryFitness, 15), pts(CategoryCoaching, 10)),

		rule(budget, "2000-5000", "Fits your budget", pts(CategoryCoaching, 10)),
		rule(budget, "over-5000", "Fits your budget", pts(CategoryBranding, 10), pts(CategoryCoaching, 10)),

		rule(sessions, "3", "Matches your training frequency", pts(CategoryFitness, 10)),
		rule(sessions, "4+", "Matches your training frequency", pts(CategoryFitness, 15)),
	}
}
