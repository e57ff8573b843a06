package lexer

import (
	"github.com/siliconlad/aish/internal/errors"
)

// Lex turns one preprocessed input line into a token stream. Adjacent
// heterogeneous pieces with no whitespace between them are wrapped in a
// single Group; a lone piece passes through directly.
func Lex(input string) ([]Token, error) {
	l := &lexer{sc: NewScanner([]rune(input))}
	return l.run()
}

type lexer struct {
	sc     *Scanner[rune]
	tokens []Token

	// pieces and lit accumulate the current word between whitespace and
	// meta boundaries: lit is the running literal, pieces the finished
	// sub-tokens of the word.
	pieces []Token
	lit    []rune
}

func (l *lexer) run() ([]Token, error) {
	for {
		c, ok := l.sc.Peek()
		if !ok {
			break
		}

		switch {
		case c == ' ' || c == '\t':
			l.sc.Next()
			l.flushWord()
		case c == ';' || c == '|' || c == '<':
			l.sc.Next()
			l.flushWord()
			l.tokens = append(l.tokens, Meta(string(c)))
		case c == '>':
			l.sc.Next()
			l.flushWord()
			if n, ok := l.sc.Peek(); ok && n == '>' {
				l.sc.Next()
				l.tokens = append(l.tokens, Meta(">>"))
			} else {
				l.tokens = append(l.tokens, Meta(">"))
			}
		case c == '&':
			l.sc.Next()
			n, ok := l.sc.Peek()
			if !ok || n != '&' {
				return nil, errors.NewUnexpectedToken("&")
			}
			l.sc.Next()
			l.flushWord()
			l.tokens = append(l.tokens, Meta("&&"))
		case c == '$':
			l.sc.Next()
			name := l.readName()
			if name == "" {
				return nil, errors.NewUnexpectedToken("$")
			}
			l.flushLit()
			l.pieces = append(l.pieces, Variable(name))
		case c == '~':
			l.sc.Next()
			if n, ok := l.sc.Peek(); !ok || n == '/' || n == ' ' || n == '\t' || isMetaChar(n) {
				l.flushLit()
				l.pieces = append(l.pieces, Tilde{})
			} else {
				l.lit = append(l.lit, '~')
			}
		case c == '\'':
			l.sc.Next()
			inner, err := l.readSingle()
			if err != nil {
				return nil, err
			}
			l.flushLit()
			l.pieces = append(l.pieces, SingleQuoted{Children: []Token{Plain(inner)}})
		case c == '"':
			l.sc.Next()
			children, err := l.readDouble()
			if err != nil {
				return nil, err
			}
			l.flushLit()
			l.pieces = append(l.pieces, DoubleQuoted{Children: children})
		case c == '\\':
			l.sc.Next()
			if e, ok := l.sc.Peek(); ok {
				l.sc.Next()
				l.lit = append(l.lit, e)
			} else {
				l.lit = append(l.lit, '\\')
			}
		default:
			l.sc.Next()
			l.lit = append(l.lit, c)
		}
	}

	l.flushWord()
	return l.tokens, nil
}

// flushLit closes the running literal into a Plain piece.
func (l *lexer) flushLit() {
	if len(l.lit) > 0 {
		l.pieces = append(l.pieces, Plain(string(l.lit)))
		l.lit = nil
	}
}

// flushWord finishes the current word. Two or more accumulated pieces wrap
// in a Group; a single piece never wraps itself.
func (l *lexer) flushWord() {
	l.flushLit()
	switch len(l.pieces) {
	case 0:
	case 1:
		l.tokens = append(l.tokens, l.pieces[0])
	default:
		l.tokens = append(l.tokens, Group{Children: l.pieces})
	}
	l.pieces = nil
}

// readName consumes a variable name: letters, digits, underscore.
func (l *lexer) readName() string {
	var name []rune
	for {
		c, ok := l.sc.Peek()
		if !ok || !isNameRune(c) {
			break
		}
		l.sc.Next()
		name = append(name, c)
	}
	return string(name)
}

// readSingle consumes verbatim characters up to the closing single quote.
// Backslash has no escape role inside single quotes.
func (l *lexer) readSingle() (string, error) {
	var inner []rune
	for {
		c, ok := l.sc.Peek()
		if !ok {
			return "", errors.NewUnclosedQuote()
		}
		l.sc.Next()
		if c == '\'' {
			return string(inner), nil
		}
		inner = append(inner, c)
	}
}

// readDouble consumes up to the closing double quote. Inside, $NAME becomes
// a Variable child, backslash escapes $, " and \, and everything else is
// literal.
func (l *lexer) readDouble() ([]Token, error) {
	var children []Token
	var lit []rune
	flush := func() {
		if len(lit) > 0 {
			children = append(children, Plain(string(lit)))
			lit = nil
		}
	}

	for {
		c, ok := l.sc.Peek()
		if !ok {
			return nil, errors.NewUnclosedQuote()
		}
		l.sc.Next()

		switch c {
		case '"':
			flush()
			return children, nil
		case '\\':
			e, ok := l.sc.Peek()
			if ok && (e == '$' || e == '"' || e == '\\') {
				l.sc.Next()
				lit = append(lit, e)
			} else {
				lit = append(lit, '\\')
			}
		case '$':
			name := l.readName()
			if name == "" {
				lit = append(lit, '$')
			} else {
				flush()
				children = append(children, Variable(name))
			}
		default:
			lit = append(lit, c)
		}
	}
}

func isMetaChar(c rune) bool {
	return c == ';' || c == '|' || c == '<' || c == '>' || c == '&'
}

func isNameRune(c rune) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
