package alias

import (
	"strings"
)

// maxExpansions bounds the rewrite loop per segment so alias cycles
// (a=b, b=a) cannot hang the shell.
const maxExpansions = 10

// Expand rewrites the command head of each top-level segment of input using
// the table. It runs on the raw string before lexing. Alias definitions
// inside the line are applied to a provisional copy of the table, so
// "alias x=y && x" sees x within the same input.
func Expand(input string, t *Table) string {
	prov := t.clone()
	segments, seps := splitSegments(input)

	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(expandSegment(seg, prov))
		if i < len(seps) {
			b.WriteString(seps[i])
		}
	}
	return b.String()
}

// splitSegments splits input on the top-level separators ";", "&&" and "|",
// returning the segments and the separators between them. Separators inside
// quotes or after a backslash are not split points.
func splitSegments(input string) ([]string, []string) {
	var segments, seps []string
	var quote rune
	escaped := false
	start := 0

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ';' || c == '|':
			segments = append(segments, string(runes[start:i]))
			seps = append(seps, string(c))
			start = i + 1
		case c == '&' && i+1 < len(runes) && runes[i+1] == '&':
			segments = append(segments, string(runes[start:i]))
			seps = append(seps, "&&")
			i++
			start = i + 1
		}
	}
	segments = append(segments, string(runes[start:]))
	return segments, seps
}

// expandSegment rewrites one segment's head word until no alias matches or
// the expansion bound is hit.
func expandSegment(seg string, prov *Table) string {
	head, rest, lead := splitHead(seg)
	if head == "" {
		return seg
	}

	// Alias definitions are not expanded; they update the provisional
	// table so later segments of the same line see them.
	if head == "alias" {
		if name, value, ok := parseDefinition(rest); ok {
			prov.Set(name, value)
		}
		return seg
	}

	for i := 0; i < maxExpansions; i++ {
		value, ok := prov.Get(head)
		if !ok {
			break
		}
		seg = lead + value + rest
		next, _, _ := splitHead(value)
		if next == head {
			// Self-referential alias (alias ls='ls -F'): one rewrite, then stop.
			break
		}
		head = next
		_, rest, lead = splitHead(seg)
	}
	return seg
}

// splitHead splits a segment into its leading whitespace, first
// whitespace-delimited word, and the remainder.
func splitHead(seg string) (head, rest, lead string) {
	trimmed := strings.TrimLeft(seg, " \t")
	lead = seg[:len(seg)-len(trimmed)]
	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		return trimmed, "", lead
	}
	return trimmed[:end], trimmed[end:], lead
}

// parseDefinition parses the tail of an "alias name=value" segment. The
// value may carry one level of surrounding quotes, which are stripped the
// same way the builtin strips them at run time.
func parseDefinition(rest string) (name, value string, ok bool) {
	rest = strings.TrimSpace(rest)
	idx := strings.IndexByte(rest, '=')
	if idx <= 0 {
		return "", "", false
	}
	name = rest[:idx]
	value = unquote(rest[idx+1:])
	if name == "" {
		return "", "", false
	}
	return name, value, true
}

// unquote strips one level of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
