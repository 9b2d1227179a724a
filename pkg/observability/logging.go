package observability

import (
	"context"
	"log/slog"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// LogHooks returns lifecycle hooks that write each event to logger at debug
// level, and failed submissions or side effects at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step enter", "flow", e.FlowID, "step", e.StepID, "position", e.Position)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step leave", "flow", e.FlowID, "step", e.StepID)
		},
		OnSubmission: func(ctx context.Context, e *domain.SubmissionEvent) {
			level := slog.LevelInfo
			if e.Status == domain.SubmissionFailed {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "submission", "flow", e.FlowID, "status", e.Status, "id", e.SubmissionID, "attempt", e.Attempt)
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			if e.Result.Success {
				logger.DebugContext(ctx, "collaborator", "name", e.Result.Name, "duration", e.Result.Duration)
				return
			}
			logger.WarnContext(ctx, "collaborator failed", "name", e.Result.Name, "message", e.Result.Message)
		},
	}
}
