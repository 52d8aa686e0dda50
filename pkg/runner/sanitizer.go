package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB, far above any reasonable chat message.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default.
	EnvMaxInputSize = "TABLEBOT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput turns raw user input into a single clean utterance.
// Oversized input and invalid UTF-8 are rejected rather than truncated.
// Newlines and tabs become spaces; other control characters (ANSI escapes,
// NUL, BEL) are dropped so they never reach logs or the terminal.
func SanitizeInput(input string) (string, error) {
	limit := MaxInputSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// MaxInputSize returns the input size limit in bytes.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
