package lexer

import "strings"

// Preprocess trims surrounding whitespace and guarantees a terminating
// semicolon. The parser finalizes the pending statement on ";", so the
// appended terminator makes end-of-input and ";" equivalent.
func Preprocess(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimSuffix(input, "\n")
	if !strings.HasSuffix(input, ";") {
		input += ";"
	}
	return input
}
