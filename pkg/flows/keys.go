package flows

// Flow identifiers.
const (
	IndividualPath   = "individual-path"
	PersonalTraining = "personal-training"
)

// Answer keys shared by the built-in flows and the default scoring rules.
const (
	KeyGoals             = "goals"
	KeyFitnessLevel      = "fitnessLevel"
	KeyLastWorkout       = "lastWorkout"
	KeyPreferredServices = "preferredServices"
	KeyChallenges        = "challenges"
	KeyBudget            = "budget"
	KeyTimeline          = "timeline"
	KeySessionsPerWeek   = "sessionsPerWeek"
	KeyNotes             = "notes"
)

// Fitness levels.
const (
	LevelBeginner        = "beginner"
	LevelIntermediate    = "intermediate"
	LevelAdvanced        = "advanced"
	LevelAdvancedAthlete = "advanced-athlete"
)

// Service preferences. Each maps onto a recommendation category.
const (
	ServiceBranding = "branding"
	ServiceCoaching = "coaching"
	ServiceFitness  = "fitness"
)

// MaxGoals and MaxChallenges cap the multi-select questions.
const (
	MaxGoals      = 3
	MaxChallenges = 3
)

var (
	goalOptions = []string{
		"brand-identity", "business-launch", "career-growth", "mindset",
		"work-life-balance", "weight-management", "strength", "endurance",
	}
	trainingGoalOptions = []string{
		"weight-management", "strength", "endurance", "mobility", "athletic-performance", "general-health",
	}
	levelOptions     = []string{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAdvancedAthlete}
	lastWorkoutOpts  = []string{"this-week", "this-month", "several-months", "over-a-year"}
	serviceOptions   = []string{ServiceBranding, ServiceCoaching, ServiceFitness}
	challengeOptions = []string{"time", "motivation", "clarity", "accountability", "visibility", "consistency"}
	budgetOptions    = []string{"under-500", "500-2000", "2000-5000", "over-5000"}
	timelineOptions  = []string{"asap", "1-3-months", "3-6-months", "exploring"}
	frequencyOptions = []string{"1", "2", "3", "4+"}
)
