package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(w io.Writer, logger *slog.Logger, sessionID string, resumed, quiet bool) {
	if resumed {
		logger.Info("Session Resumed", "session_id", sessionID)
		if !quiet {
			printSystemMessage(w, "Resuming session '%s'.", sessionID)
		}
		return
	}
	logger.Info("Session Created", "session_id", sessionID)
	if !quiet {
		printSystemMessage(w, "Session '%s' active.", sessionID)
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, sessionID string, err error, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	switch {
	case err != nil && !isInterrupted(err):
		return
	case sig == os.Interrupt:
		fmt.Fprintf(w, "[CTRL+C]\n")
		printSystemMessage(w, "Interrupted session '%s'.", sessionID)
	case sig != nil:
		fmt.Fprintf(w, "\n")
		printSystemMessage(w, "Terminated session '%s'.", sessionID)
	default:
		printSystemMessage(w, "Session '%s' saved.", sessionID)
	}
}
