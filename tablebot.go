package tablebot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/adapters/memory"
	"github.com/aretw0/tablebot/pkg/dialog"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/extract"
	"github.com/aretw0/tablebot/pkg/ports"
	"github.com/aretw0/tablebot/pkg/runner"
	"github.com/aretw0/tablebot/pkg/session"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/tablebot.Version=...".
var Version = "0.1.0-dev"

// ErrEmptyUtterance is returned by Send for input that is blank after
// sanitizing.
var ErrEmptyUtterance = errors.New("utterance is empty")

// Bot is the high-level entry point for the library. It wires the intent
// classifier, slot extractor, dialog engine and session manager around a
// booking service.
type Bot struct {
	pipeline  *dialog.Pipeline
	sessions  *session.Manager
	store     ports.SessionStore
	locker    ports.DistributedLocker
	extractor ports.SlotExtractor
	hooks     domain.LifecycleHooks
	timeout   time.Duration
	channel   string
	reason    int
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLogger sets the logger shared by the engine and session manager.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithStore replaces the default in-memory session store.
func WithStore(store ports.SessionStore) Option {
	return func(b *Bot) {
		b.store = store
	}
}

// WithLocker serializes turns across processes sharing the store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) {
		b.locker = locker
	}
}

// WithExtractor replaces the regular-expression slot extractor.
// A nil extractor disables extraction.
func WithExtractor(x ports.SlotExtractor) Option {
	return func(b *Bot) {
		b.extractor = x
	}
}

// WithTimeout bounds every booking service call.
func WithTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.timeout = d
	}
}

// WithChannel sets the booking channel code.
func WithChannel(channel string) Option {
	return func(b *Bot) {
		b.channel = channel
	}
}

// WithCancellationReason sets the reason code sent with cancellations.
func WithCancellationReason(id int) Option {
	return func(b *Bot) {
		b.reason = id
	}
}

// New creates a Bot answering through service.
func New(service ports.BookingService, opts ...Option) *Bot {
	b := &Bot{
		store:     memory.NewStore(),
		extractor: extract.New(),
		timeout:   dialog.DefaultTimeout,
		channel:   domain.DefaultChannel,
		reason:    domain.DefaultCancellationReason,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	engine := dialog.NewEngine(service,
		dialog.WithLogger(b.logger),
		dialog.WithLifecycleHooks(b.hooks),
		dialog.WithTimeout(b.timeout),
		dialog.WithChannel(b.channel),
		dialog.WithCancellationReason(b.reason),
	)
	b.pipeline = dialog.NewPipeline(engine, b.extractor)

	managerOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(b.locker))
	}
	b.sessions = session.NewManager(b.store, managerOpts...)
	return b
}

// Start creates a new conversation with a random ID.
func (b *Bot) Start(ctx context.Context) (*domain.Session, error) {
	return b.sessions.Create(ctx)
}

// Send sanitizes utterance and runs it as the next turn of the stored
// session sessionID, starting it when unknown. Turns of one session are
// serialized.
func (b *Bot) Send(ctx context.Context, sessionID, utterance string) (string, *domain.Session, error) {
	text, err := runner.SanitizeInput(utterance)
	if err != nil {
		return "", nil, err
	}
	if text == "" {
		return "", nil, ErrEmptyUtterance
	}

	var reply string
	s, err := b.sessions.Turn(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		reply = b.pipeline.Turn(ctx, s, text)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return reply, s, nil
}

// Turn answers utterance on a caller-owned session without touching the
// store. It implements runner.Turner.
func (b *Bot) Turn(ctx context.Context, s *domain.Session, utterance string) string {
	return b.pipeline.Turn(ctx, s, utterance)
}

// Sessions returns the session manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}
