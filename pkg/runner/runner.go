package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/domain"
)

// Greeting is printed when an interactive chat starts.
const Greeting = "Hello, I'm the HungryUnicorn booking assistant. Type 'help' for options."

// Farewell is printed when the user leaves the chat.
const Farewell = "Bye!"

// Turner answers one utterance for a session. dialog.Pipeline implements it.
type Turner interface {
	Turn(ctx context.Context, s *domain.Session, utterance string) string
}

// IOHandler abstracts how the runner reads utterances and writes replies.
type IOHandler interface {
	Input(ctx context.Context) (string, error)
	Output(ctx context.Context, reply Reply) error
}

// Reply is one answer of the assistant.
type Reply struct {
	Text    string          `json:"reply"`
	Session *domain.Session `json:"session,omitempty"`
}

// ContentRenderer is a function that transforms the content before outputting it.
type ContentRenderer func(string) (string, error)

// Runner drives a read-eval-print loop over a single session.
type Runner struct {
	Handler  IOHandler
	Logger   *slog.Logger
	Headless bool
	Greeting string
	Session  *domain.Session
}

// NewRunner creates a runner reading from stdin and writing to stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:   logging.NewNop(),
		Greeting: Greeting,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Session == nil {
		r.Session = domain.NewSession("local")
	}
	return r
}

// Run loops until the input ends, the user types quit/exit, or ctx is done.
func (r *Runner) Run(ctx context.Context, bot Turner) error {
	if !r.Headless && r.Greeting != "" {
		if err := r.Handler.Output(ctx, Reply{Text: r.Greeting}); err != nil {
			return err
		}
	}

	for {
		input, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if isQuit(input) {
			return r.Handler.Output(ctx, Reply{Text: Farewell})
		}

		reply := bot.Turn(ctx, r.Session, input)
		r.Logger.Debug("reply sent",
			"session_id", r.Session.ID,
			"active_intent", r.Session.ActiveIntent.String(),
			"turns", r.Session.Turns,
		)
		if err := r.Handler.Output(ctx, Reply{Text: reply, Session: r.Session.Snapshot()}); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
}

func isQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit":
		return true
	}
	return false
}
