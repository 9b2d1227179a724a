package dto

// FlowDefinition is the on-disk shape of a questionnaire flow.
// It uses "mapstructure" tags to match the YAML keys.
type FlowDefinition struct {
	ID    string           `json:"id" mapstructure:"id"`
	Title string           `json:"title" mapstructure:"title"`
	Steps []StepDefinition `json:"steps" mapstructure:"steps"`
}

// StepDefinition declares one step and its gates.
type StepDefinition struct {
	ID         string               `json:"id" mapstructure:"id"`
	Title      string               `json:"title" mapstructure:"title"`
	Questions  []QuestionDefinition `json:"questions" mapstructure:"questions"`
	Applicable *ConditionDefinition `json:"applicable" mapstructure:"applicable"`
	Complete   *ConditionDefinition `json:"complete" mapstructure:"complete"`
}

// QuestionDefinition declares one collected field.
type QuestionDefinition struct {
	Key       string   `json:"key" mapstructure:"key"`
	Kind      string   `json:"kind" mapstructure:"kind"`
	Prompt    string   `json:"prompt" mapstructure:"prompt"`
	Options   []string `json:"options" mapstructure:"options"`
	Required  bool     `json:"required" mapstructure:"required"`
	MaxSelect int      `json:"max_select" mapstructure:"max_select"`
}

// ConditionDefinition is a declarative predicate over the answers.
// Exactly one of Field, All, Any or Not should be set.
type ConditionDefinition struct {
	Field string                `json:"field" mapstructure:"field"`
	Op    string                `json:"op" mapstructure:"op"`
	Value any                   `json:"value" mapstructure:"value"`
	All   []ConditionDefinition `json:"all" mapstructure:"all"`
	Any   []ConditionDefinition `json:"any" mapstructure:"any"`
	Not   *ConditionDefinition  `json:"not" mapstructure:"not"`
}
