/*
Package observability turns questionnaire lifecycle hooks into Prometheus metrics.

	m := observability.NewMetrics(observability.WithRegistry(reg))
	eng, err := intake.New(intake.WithLifecycleHooks(m.Hooks()))

Step entries are counted per flow and step, submissions per terminal status and
collaborator side effects per outcome, with their latency in a histogram.
*/
package observability
