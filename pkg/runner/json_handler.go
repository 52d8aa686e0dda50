package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements IOHandler for JSON-Lines communication, for driving
// the assistant from scripts. Each input line is either an object with an
// "utterance" field, a JSON string, or plain text. Each reply is one object.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

type jsonInput struct {
	Utterance string `json:"utterance"`
}

type jsonError struct {
	Error string `json:"error"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the reply as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, reply Reply) error {
	return h.Encoder.Encode(reply)
}

// Input reads the next utterance. Invalid lines produce an error object and are skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := h.Reader.ReadString('\n')
		if line == "" && err != nil {
			return "", err
		}

		text := decodeUtterance(strings.TrimSpace(line))
		clean, serr := SanitizeInput(text)
		if serr != nil {
			if encErr := h.Encoder.Encode(jsonError{Error: serr.Error()}); encErr != nil {
				return "", encErr
			}
		} else if clean != "" {
			return clean, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func decodeUtterance(line string) string {
	if strings.HasPrefix(line, "{") {
		var in jsonInput
		if err := json.Unmarshal([]byte(line), &in); err == nil {
			return in.Utterance
		}
	}
	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return s
	}
	return line
}
