package lexer

import (
	"os"
	"strings"
)

// Token is one lexed unit of shell input. Meta tokens separate statements
// and stages; every other kind resolves to its final string value at run
// time via Resolve.
type Token interface {
	// Resolve evaluates the token to its final string: variables read the
	// environment, tildes read HOME, composites concatenate their children.
	Resolve() string

	// Raw returns the token in input form, quotes included. Backslash
	// escapes are not reproduced: the lexer has already applied them.
	Raw() string
}

// Meta is one of the six separators: ";", "|", "&&", "<", ">", ">>".
type Meta string

// Plain is an unquoted text segment.
type Plain string

// Variable resolves to the environment value of its name, or "" if unset.
type Variable string

// Tilde resolves to the HOME environment value.
type Tilde struct{}

// SingleQuoted holds inner tokens captured verbatim. A dollar sign inside
// single quotes is literal, so the children are never Variable.
type SingleQuoted struct {
	Children []Token
}

// DoubleQuoted holds inner tokens where $NAME pieces are preserved as
// Variable children and expanded at resolve time.
type DoubleQuoted struct {
	Children []Token
}

// Group joins adjacent heterogeneous tokens that had no whitespace between
// them, e.g. ~/$X/bin. It always has at least two children.
type Group struct {
	Children []Token
}

func (m Meta) Resolve() string { return string(m) }
func (m Meta) Raw() string     { return string(m) }

func (p Plain) Resolve() string { return string(p) }
func (p Plain) Raw() string     { return string(p) }

func (v Variable) Resolve() string { return os.Getenv(string(v)) }
func (v Variable) Raw() string     { return "$" + string(v) }

func (t Tilde) Resolve() string { return os.Getenv("HOME") }
func (t Tilde) Raw() string     { return "~" }

func (s SingleQuoted) Resolve() string { return resolveAll(s.Children) }
func (s SingleQuoted) Raw() string     { return "'" + rawAll(s.Children) + "'" }

func (d DoubleQuoted) Resolve() string { return resolveAll(d.Children) }
func (d DoubleQuoted) Raw() string     { return `"` + rawAll(d.Children) + `"` }

func (g Group) Resolve() string { return resolveAll(g.Children) }
func (g Group) Raw() string     { return rawAll(g.Children) }

func resolveAll(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Resolve())
	}
	return b.String()
}

func rawAll(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Raw())
	}
	return b.String()
}

// IsMeta reports whether tok is the given meta separator.
func IsMeta(tok Token, s string) bool {
	m, ok := tok.(Meta)
	return ok && string(m) == s
}
