package dialog

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/intent"
	"github.com/aretw0/tablebot/pkg/ports"
)

// DefaultTimeout bounds each booking service call made during a turn.
const DefaultTimeout = 10 * time.Second

// Engine runs the slot-filling conversation. It holds no per-session state:
// every turn receives the session it mutates.
type Engine struct {
	service      ports.BookingService
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	timeout      time.Duration
	channel      string
	cancelReason int
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for turn and remote call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithTimeout bounds each booking service call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithChannel sets the channel code sent with searches and bookings.
func WithChannel(channel string) Option {
	return func(e *Engine) {
		if channel != "" {
			e.channel = channel
		}
	}
}

// WithCancellationReason sets the reason code sent with cancellations.
func WithCancellationReason(id int) Option {
	return func(e *Engine) {
		if id > 0 {
			e.cancelReason = id
		}
	}
}

// NewEngine creates an engine backed by service.
func NewEngine(service ports.BookingService, opts ...Option) *Engine {
	e := &Engine{
		service:      service,
		logger:       logging.NewNop(),
		timeout:      DefaultTimeout,
		channel:      domain.DefaultChannel,
		cancelReason: domain.DefaultCancellationReason,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one utterance, mutating s, and returns the reply.
// Failures never escape a turn: they are reported in the reply and leave the
// session as it was before the failing call.
func (e *Engine) Handle(ctx context.Context, s *domain.Session, utterance string) string {
	start := e.now()
	if s.Slots == nil {
		s.Slots = make(map[string]string)
	}

	fresh := intent.Classify(utterance)
	handled := fresh
	var res result

	switch {
	case fresh.SingleShot():
		res = e.handleSingleShot(ctx, s, fresh, utterance)
	case s.ActiveIntent == domain.IntentNone:
		switch fresh {
		case domain.IntentUnknown:
			res = result{reply: MsgNotUnderstood, outcome: domain.OutcomeNotMatched}
		case domain.IntentHelp:
			res = result{reply: MsgHelp, outcome: domain.OutcomeCompleted}
		default:
			s.SwitchIntent(fresh)
			res = e.handleActive(ctx, s)
		}
	default:
		if s.ActiveIntent == domain.IntentCheckAvailability && fresh == domain.IntentBook {
			s.SwitchIntent(domain.IntentBook)
		}
		handled = s.ActiveIntent
		res = e.handleActive(ctx, s)
	}

	s.Turns++
	s.UpdatedAt = e.now()

	e.logger.Debug("turn handled",
		"session_id", s.ID,
		"intent", handled.String(),
		"active_intent", s.ActiveIntent.String(),
		"outcome", res.outcome,
	)
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: domain.EventBase{Timestamp: s.UpdatedAt, Type: domain.EventTurn, SessionID: s.ID},
			Intent:    handled,
			Outcome:   res.outcome,
			Duration:  s.UpdatedAt.Sub(start),
		})
	}
	return res.reply
}

// result is the reply of a turn plus its outcome label.
type result struct {
	reply   string
	outcome string
}

func prompt(reply string) result    { return result{reply: reply, outcome: domain.OutcomePrompt} }
func completed(reply string) result { return result{reply: reply, outcome: domain.OutcomeCompleted} }

func (e *Engine) handleActive(ctx context.Context, s *domain.Session) result {
	s.PruneSlots()
	switch s.ActiveIntent {
	case domain.IntentCheckAvailability:
		return e.checkAvailability(ctx, s)
	case domain.IntentBook:
		return e.book(ctx, s)
	default:
		return result{reply: MsgCannotHandle, outcome: domain.OutcomeNotMatched}
	}
}

func (e *Engine) handleSingleShot(ctx context.Context, s *domain.Session, in domain.Intent, utterance string) result {
	switch in {
	case domain.IntentGetBooking:
		return e.getBooking(ctx, s, utterance)
	case domain.IntentModifyBooking:
		return e.modifyBooking(ctx, s, utterance)
	case domain.IntentCancelBooking:
		return e.cancelBooking(ctx, s, utterance)
	default:
		return result{reply: MsgCannotHandle, outcome: domain.OutcomeNotMatched}
	}
}

// call runs one booking service operation under the engine timeout and
// reports it to the lifecycle hooks.
func (e *Engine) call(ctx context.Context, s *domain.Session, op string, fn func(context.Context) error) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if e.hooks.OnRemoteCall != nil {
		e.hooks.OnRemoteCall(ctx, &domain.RemoteEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventRemoteCall, SessionID: s.ID},
			Op:        op,
		})
	}

	start := e.now()
	err := fn(ctx)
	elapsed := e.now().Sub(start)

	if err != nil {
		e.logger.Warn("booking service call failed", "session_id", s.ID, "op", op, "err", err)
	}
	if e.hooks.OnRemoteReturn != nil {
		e.hooks.OnRemoteReturn(ctx, &domain.RemoteEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventRemoteReturn, SessionID: s.ID},
			Op:        op,
			Duration:  elapsed,
			IsError:   err != nil,
			Err:       err,
		})
	}
	return err
}
