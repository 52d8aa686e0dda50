package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/tablebot/internal/presentation/tui"
	"github.com/aretw0/tablebot/pkg/runner"
)

// DefaultSessionID is the session used by chat when none is given.
const DefaultSessionID = "local"

// ChatOptions contains the configuration for the chat command.
type ChatOptions struct {
	SessionID string
	JSON      bool
	Headless  bool
	Fresh     bool
	// Markdown renders replies through glamour. Only meaningful on a TTY.
	Markdown bool
	Width    int
	In       io.Reader
	Out      io.Writer
}

// RunChat holds a conversation over stdin/stdout (or opts.In/opts.Out).
// Every turn is stored through the session manager, so a chat can be
// resumed later and shares state with the HTTP and MCP surfaces.
func RunChat(ctx context.Context, app *App, opts ChatOptions) error {
	if opts.SessionID == "" {
		opts.SessionID = DefaultSessionID
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	quiet := opts.JSON || opts.Headless

	if opts.Fresh {
		if err := app.Sessions.Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}
	sess, err := app.Sessions.LoadOrStart(ctx, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}

	if !quiet {
		tui.PrintBanner(opts.Out)
	}
	logSessionStatus(opts.Out, app.Logger, sess.ID, sess.Turns > 0, quiet)

	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	case opts.Markdown && !opts.Headless:
		render, err := tui.NewRenderer(opts.Width)
		if err != nil {
			return err
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(render))
	default:
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}

	r := runner.NewRunner(
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
		runner.WithHeadless(quiet),
		runner.WithSession(sess),
	)
	runErr := r.Run(ctx, &sessionTurner{bot: app.Bot, sessions: app.Sessions, logger: app.Logger})
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	var sig os.Signal
	if sc, ok := ctx.(*SignalContext); ok {
		sig = sc.Signal()
	}
	logCompletion(opts.Out, sess.ID, runErr, quiet, sig)

	return handleExecutionError(runErr)
}
