package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/tablebot/internal/testutils"
	"github.com/aretw0/tablebot/pkg/dialog"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/extract"
	"github.com/aretw0/tablebot/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline() *dialog.Pipeline {
	return dialog.NewPipeline(dialog.NewEngine(testutils.NewStubBookingService()), extract.New())
}

func TestRunner_Transcript(t *testing.T) {
	in := strings.NewReader("I want to check availability\n2025-08-10\n2\nquit\nnever read\n")
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(in, out)))

	require.NoError(t, r.Run(context.Background(), newPipeline()))

	want := strings.Join([]string{
		runner.Greeting,
		"> " + dialog.MsgAskDate,
		"> " + dialog.MsgAskPartySize,
		"> Available times on 2025-08-10: 19:00:00",
		"> " + runner.Farewell,
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
	assert.Equal(t, 3, r.Session.Turns)
}

func TestRunner_EOFEndsQuietly(t *testing.T) {
	out := &bytes.Buffer{}
	r := runner.NewRunner(
		runner.WithHeadless(true),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("hello"), out, runner.WithPrompt(""))),
	)

	require.NoError(t, r.Run(context.Background(), newPipeline()))

	assert.Equal(t, dialog.MsgNotUnderstood+"\n", out.String())
}

func TestRunner_JSONLines(t *testing.T) {
	in := strings.NewReader(`{"utterance":"book a table"}` + "\nEXIT\n")
	out := &bytes.Buffer{}
	s := domain.NewSession("scripted")
	r := runner.NewRunner(
		runner.WithHeadless(true),
		runner.WithSession(s),
		runner.WithInputHandler(runner.NewJSONHandler(in, out)),
	)

	require.NoError(t, r.Run(context.Background(), newPipeline()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first runner.Reply
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Please provide date (YYYY-MM-DD).", first.Text)
	require.NotNil(t, first.Session)
	assert.Equal(t, domain.IntentBook, first.Session.ActiveIntent)
	assert.JSONEq(t, `{"reply":"Bye!"}`, lines[1])
}
