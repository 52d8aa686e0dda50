package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn         EventType = "turn"
	EventRemoteCall   EventType = "remote_call"
	EventRemoteReturn EventType = "remote_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TurnEvent is emitted once a turn has produced its reply.
type TurnEvent struct {
	EventBase
	Intent   Intent        `json:"intent"`
	Outcome  string        `json:"outcome"`
	Duration time.Duration `json:"duration"`
}

// Turn outcomes.
const (
	OutcomePrompt     = "prompt"
	OutcomeCompleted  = "completed"
	OutcomeFailed     = "failed"
	OutcomeNotMatched = "not_matched"
)

// RemoteEvent represents a call to the booking service.
type RemoteEvent struct {
	EventBase
	Op       string        `json:"op"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurn         func(context.Context, *TurnEvent)
	OnRemoteCall   func(context.Context, *RemoteEvent)
	OnRemoteReturn func(context.Context, *RemoteEvent)
}

// Merge returns hooks that invoke h then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:         chain(h.OnTurn, other.OnTurn),
		OnRemoteCall:   chain(h.OnRemoteCall, other.OnRemoteCall),
		OnRemoteReturn: chain(h.OnRemoteReturn, other.OnRemoteReturn),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
