package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// DefaultPrompt is printed before each line read by the TextHandler.
const DefaultPrompt = "> "

// TextHandler implements IOHandler for interactive terminal use.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithPrompt replaces the input prompt. An empty prompt prints nothing.
func WithPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour context cancellation.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

// Output prints the reply, rendered when a renderer is configured.
func (h *TextHandler) Output(ctx context.Context, reply Reply) error {
	output := reply.Text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return err
}

// Input prompts for and returns the next non-empty sanitized line.
// Invalid lines are reported to the user and skipped.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			if h.Prompt != "" {
				fmt.Fprint(h.Writer, h.Prompt)
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(res.text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			if clean == "" {
				continue
			}
			return clean, nil
		}
	}
}
