package cli

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLineSize bounds a single simulator command.
const MaxLineSize = 4096

var (
	ErrLineTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeLine rejects oversized or non UTF-8 input and strips control
// characters (ANSI escapes included) so they never reach the terminal or logs.
func SanitizeLine(line string) (string, error) {
	if len(line) > MaxLineSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrLineTooLarge, len(line), MaxLineSize)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(line, unsafeControl) < 0 {
		return strings.TrimSpace(line), nil
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}
