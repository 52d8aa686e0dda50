package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/tablebot"
	"github.com/aretw0/tablebot/internal/config"
	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/adapters/bookingapi"
	"github.com/aretw0/tablebot/pkg/adapters/memory"
	"github.com/aretw0/tablebot/pkg/adapters/redis"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/observability"
	"github.com/aretw0/tablebot/pkg/persistence/middleware"
	"github.com/aretw0/tablebot/pkg/ports"
	"github.com/aretw0/tablebot/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// NewLogger builds the application logger from the log settings.
// Text output goes to stderr so it never mixes with chat output.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "json") {
		return logging.NewJSON(w, level), nil
	}
	if w == os.Stderr {
		return logging.New(level), nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// NewBookingClient builds the booking API client.
func NewBookingClient(cfg config.APIConfig, logger *slog.Logger) *bookingapi.Client {
	opts := []bookingapi.Option{
		bookingapi.WithTimeout(cfg.Timeout),
		bookingapi.WithRestaurant(cfg.Restaurant),
		bookingapi.WithRetry(cfg.Retries, cfg.Backoff),
		bookingapi.WithLogger(logger),
	}
	if cfg.Breaker.Failures > 0 {
		failures := cfg.Breaker.Failures
		opts = append(opts, bookingapi.WithBreaker(gobreaker.Settings{
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}))
	}
	return bookingapi.New(cfg.BaseURL, cfg.Token, opts...)
}

// Storage is the session store selected by configuration.
type Storage struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	Close  func() error
}

// NewStorage returns a Redis-backed store and lock when a Redis URL is set,
// and a process-local memory store otherwise.
// A configured encryption key seals sessions in either store.
func NewStorage(ctx context.Context, cfg config.RedisConfig) (*Storage, error) {
	var mws []middleware.Middleware
	if cfg.EncryptionKey != "" {
		keys, err := middleware.DecodeKeys(cfg.EncryptionKey, cfg.FallbackKeys...)
		if err != nil {
			return nil, fmt.Errorf("redis.encryption_key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}

	if cfg.URL == "" {
		return &Storage{
			Store: middleware.Chain(memory.NewStore(), mws...),
			Close: func() error { return nil },
		}, nil
	}
	store, err := redis.New(cfg.URL, redis.WithTTL(cfg.TTL), redis.WithPrefix(cfg.Prefix))
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return &Storage{
		Store:  middleware.Chain(store, mws...),
		Locker: redis.NewLocker(store.Client(), store.Prefix()),
		Close:  store.Close,
	}, nil
}

// App bundles everything a command needs to hold a conversation.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *bookingapi.Client
	Sessions *session.Manager
	Bot      *tablebot.Bot
	Metrics  *observability.Metrics

	storage *Storage
}

// AppOptions tunes NewApp.
type AppOptions struct {
	// Registerer receives the metrics collectors. Nil keeps them private.
	Registerer prometheus.Registerer
	// Audit logs every turn and API call at info level.
	Audit bool
}

// NewApp wires the booking client, storage, session manager, metrics and
// dialog pipeline from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	storage, err := NewStorage(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	client := NewBookingClient(cfg.API, logger)
	metrics := observability.NewMetrics(opts.Registerer)
	hooks := metrics.Hooks()
	if opts.Audit {
		hooks = hooks.Merge(observability.LoggingHooks(logger))
	}

	botOpts := []tablebot.Option{
		tablebot.WithLogger(logger),
		tablebot.WithLifecycleHooks(hooks),
		tablebot.WithStore(storage.Store),
		tablebot.WithTimeout(cfg.API.Timeout),
		tablebot.WithChannel(cfg.API.Channel),
		tablebot.WithCancellationReason(cfg.API.CancellationReason),
	}
	if storage.Locker != nil {
		botOpts = append(botOpts, tablebot.WithLocker(storage.Locker))
	}
	bot := tablebot.New(client, botOpts...)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Client:   client,
		Sessions: bot.Sessions(),
		Bot:      bot,
		Metrics:  metrics,
		storage:  storage,
	}, nil
}

// Close releases the session storage.
func (a *App) Close() error {
	if a.storage == nil || a.storage.Close == nil {
		return nil
	}
	return a.storage.Close()
}

// sessionTurner runs each turn through the session manager so that
// concurrent surfaces sharing a store see serialized, persisted turns.
type sessionTurner struct {
	bot      *tablebot.Bot
	sessions *session.Manager
	logger   *slog.Logger
}

func (t *sessionTurner) Turn(ctx context.Context, s *domain.Session, utterance string) string {
	var (
		reply   string
		handled *domain.Session
	)
	updated, err := t.sessions.Turn(ctx, s.ID, func(ctx context.Context, current *domain.Session) error {
		reply = t.bot.Turn(ctx, current, utterance)
		handled = current
		return nil
	})
	switch {
	case err == nil:
		*s = *updated
	case handled != nil:
		// The turn ran but could not be stored; keep the local copy current.
		t.logger.Error("failed to persist turn", "session_id", s.ID, "err", err)
		*s = *handled
	default:
		t.logger.Error("failed to load session for turn", "session_id", s.ID, "err", err)
		reply = t.bot.Turn(ctx, s, utterance)
	}
	return reply
}
