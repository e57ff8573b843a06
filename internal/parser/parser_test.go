package parser

import (
	"testing"

	"github.com/siliconlad/aish/internal/errors"
	"github.com/siliconlad/aish/internal/exec"
	"github.com/siliconlad/aish/internal/lexer"
)

// parse lexes and parses one preprocessed line.
func parse(t *testing.T, input string, opts Options) (*exec.Sequence, error) {
	t.Helper()
	tokens, err := lexer.Lex(input)
	if err != nil {
		t.Fatalf("lex %q: %v", input, err)
	}
	return Parse(tokens, opts)
}

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		input    string
		rendered string
	}{
		{"echo hi;", "echo hi"},
		{"echo a && echo b;", "echo a && echo b"},
		{"echo a; echo b;", "echo a; echo b"},
		{"echo Hello | wc -c;", "echo Hello | wc -c"},
		{"echo x > f.txt && cat f.txt;", "echo x > f.txt && cat f.txt"},
		{"sed s/a/b/ < f.txt;", "sed s/a/b/ < f.txt"},
		{"cat < in.txt > out.txt;", "cat < in.txt > out.txt"},
		{"a | b | c;", "a | b | c"},
		{"a | b && c; d;", "a | b && c; d"},
		// Repeated output redirects: the last target wins.
		{"echo x > a.txt > b.txt;", "echo x > b.txt"},
		// Empty trailing statement is dropped.
		{"echo hi;;", "echo hi"},
	}

	for _, tt := range tests {
		root, err := parse(t, tt.input, Options{})
		if err != nil {
			t.Fatalf("parse %q: unexpected error: %v", tt.input, err)
		}
		if got := root.String(); got != tt.rendered {
			t.Errorf("parse %q: rendered %q, expected %q", tt.input, got, tt.rendered)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input string
		kind  errors.SyntaxKind
	}{
		{"echo >;", errors.ExpectedToken},     // redirect with no path
		{"| cat;", errors.ExpectedToken},      // pipeline with no head
		{"echo a | ;", errors.ExpectedToken},  // pipeline with no tail
		{"echo a && ;", errors.ExpectedToken}, // and-sequence with no tail
		{"> f.txt;", errors.ExpectedToken},    // redirect with no command
	}

	for _, tt := range tests {
		_, err := parse(t, tt.input, Options{})
		if err == nil {
			t.Fatalf("parse %q: expected error, got none", tt.input)
		}
		synErr, ok := err.(*errors.SyntaxError)
		if !ok {
			t.Fatalf("parse %q: expected SyntaxError, got %T: %v", tt.input, err, err)
		}
		if synErr.Kind != tt.kind {
			t.Fatalf("parse %q: expected kind %v, got %v", tt.input, tt.kind, synErr.Kind)
		}
	}
}

func TestParse_LlmClassification(t *testing.T) {
	// A bare double-quoted statement is an LLM invocation; without a
	// configured generator it fails at parse time.
	_, err := parse(t, `"list all files";`, Options{})
	if err == nil {
		t.Fatal("expected InvalidOpenAIKey error")
	}
	synErr, ok := err.(*errors.SyntaxError)
	if !ok || synErr.Kind != errors.InvalidOpenAIKey {
		t.Fatalf("expected InvalidOpenAIKey, got %v", err)
	}

	root, err := parse(t, `"list all files";`, Options{LLMEnabled: true})
	if err != nil {
		t.Fatalf("unexpected error with LLM enabled: %v", err)
	}
	if got := root.String(); got != `"list all files"` {
		t.Errorf("rendered %q", got)
	}

	// A double-quoted word with other words around it is a plain command.
	root, err = parse(t, `echo "list all files";`, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := root.String(); got != `echo 'list all files'` {
		t.Errorf("rendered %q", got)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	root, err := parse(t, ";", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := root.String(); got != "" {
		t.Errorf("rendered %q, expected empty", got)
	}
}
