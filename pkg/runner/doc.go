/*
Package runner implements the interactive chat loop of the booking assistant.

It acts as the bridge between a Turner (usually a dialog.Pipeline) and the
outside world: it reads utterances through a pluggable IOHandler, sanitizes
them, and writes the replies back.

# Key Components

  - Runner: the read-eval-print loop over a single session.
  - TextHandler: interactive terminal IO with a "> " prompt.
  - JSONHandler: JSON-Lines IO for scripts.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx, pipeline); err != nil {
		log.Fatal(err)
	}
*/
package runner
