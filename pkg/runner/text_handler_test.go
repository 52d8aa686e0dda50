package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s + "\n\n", nil
	}))

	require.NoError(t, handler.Output(context.Background(), Reply{Text: "Hello World"}))

	assert.Equal(t, "Rendered: Hello World\n", outBuf.String())
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("\n  my user input  \nbad\x00line\n"), outBuf)
	ctx := context.Background()

	val, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "my user input", val)

	val, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "badline", val)

	_, err = handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > > ", outBuf.String(), "empty lines re-prompt")
}

func TestTextHandler_InputRejectsOversized(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("this is far too long\nok\n"), outBuf, WithPrompt(""))

	val, err := handler.Input(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Contains(t, outBuf.String(), "Please try again.")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestJSONHandler(t *testing.T) {
	in := strings.NewReader("{\"utterance\":\"book a table\"}\n\"help\"\nplain text\n")
	out := &bytes.Buffer{}
	handler := NewJSONHandler(in, out)
	ctx := context.Background()

	for _, want := range []string{"book a table", "help", "plain text"} {
		got, err := handler.Input(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, handler.Output(ctx, Reply{Text: "hi"}))
	assert.JSONEq(t, `{"reply":"hi"}`, out.String())
}
