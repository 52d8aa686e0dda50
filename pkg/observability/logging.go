package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tablebot/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write an audit trail of turns
// and booking API calls to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "turn",
				"session_id", e.SessionID,
				"intent", e.Intent.String(),
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
		OnRemoteReturn: func(ctx context.Context, e *domain.RemoteEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"op", e.Op,
				"duration", e.Duration,
			}
			if e.IsError {
				logger.WarnContext(ctx, "remote call failed", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "remote call", attrs...)
		},
	}
}
