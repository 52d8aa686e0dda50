package runner

import (
	"log/slog"

	"github.com/aretw0/tablebot/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless suppresses the greeting, for scripted use.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithGreeting replaces the greeting printed at start.
func WithGreeting(greeting string) Option {
	return func(r *Runner) {
		r.Greeting = greeting
	}
}

// WithSession runs the loop over an existing session.
func WithSession(s *domain.Session) Option {
	return func(r *Runner) {
		r.Session = s
	}
}
