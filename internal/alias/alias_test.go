package alias

import (
	"reflect"
	"testing"
)

func TestTable_Basics(t *testing.T) {
	table := NewTable()
	if table.Len() != 0 {
		t.Fatalf("new table not empty: %d", table.Len())
	}

	table.Set("ll", "ls -l")
	table.Set("greet", `echo "Hello, World!"`)

	if v, ok := table.Get("ll"); !ok || v != "ls -l" {
		t.Fatalf("Get(ll): got %q (%v)", v, ok)
	}

	// Overwrite keeps the latest definition.
	table.Set("ll", "ls -la")
	if v, _ := table.Get("ll"); v != "ls -la" {
		t.Fatalf("overwrite: got %q", v)
	}

	if names := table.Names(); !reflect.DeepEqual(names, []string{"greet", "ll"}) {
		t.Fatalf("Names: got %v", names)
	}

	table.Delete("ll")
	if _, ok := table.Get("ll"); ok {
		t.Fatal("Delete: alias still present")
	}
}

func TestExpand_Head(t *testing.T) {
	table := NewTable()
	table.Set("greet", `echo "Hello, World!"`)
	table.Set("ll", "ls -l")

	tests := []struct {
		input    string
		expected string
	}{
		{"greet", `echo "Hello, World!"`},
		{"ll /tmp", "ls -l /tmp"},
		// Only the head word is rewritten.
		{"echo greet", "echo greet"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := Expand(tt.input, table); got != tt.expected {
			t.Errorf("Expand(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestExpand_Segments(t *testing.T) {
	table := NewTable()
	table.Set("a", "echo A")
	table.Set("b", "echo B")

	tests := []struct {
		input    string
		expected string
	}{
		{"a && b", "echo A && echo B"},
		{"a; b", "echo A; echo B"},
		{"a | wc -c", "echo A | wc -c"},
		// Separators inside quotes are not split points.
		{`echo "a && b"`, `echo "a && b"`},
	}
	for _, tt := range tests {
		if got := Expand(tt.input, table); got != tt.expected {
			t.Errorf("Expand(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestExpand_AliasHeadExempt(t *testing.T) {
	table := NewTable()
	table.Set("alias", "echo nope")

	input := "alias x=y"
	if got := Expand(input, table); got != input {
		t.Fatalf("alias head was expanded: %q", got)
	}
}

func TestExpand_SelfReferenceStops(t *testing.T) {
	table := NewTable()
	table.Set("ls", "ls -F")

	if got := Expand("ls /tmp", table); got != "ls -F /tmp" {
		t.Fatalf("self-referential alias: got %q", got)
	}
}

func TestExpand_ChainBounded(t *testing.T) {
	table := NewTable()
	// A cycle that never reaches a fixed point must stop at the bound.
	table.Set("x", "y")
	table.Set("y", "x")

	got := Expand("x", table)
	if got != "x" && got != "y" {
		t.Fatalf("cycle expansion: got %q", got)
	}
}

func TestExpand_ChainFollowsHeads(t *testing.T) {
	table := NewTable()
	table.Set("one", "two -a")
	table.Set("two", "echo done")

	if got := Expand("one", table); got != "echo done -a" {
		t.Fatalf("chained expansion: got %q", got)
	}
}

func TestExpand_ProvisionalDefinition(t *testing.T) {
	table := NewTable()

	// The definition in the first segment is visible to the second.
	got := Expand("alias x='echo A' && x", table)
	if got != "alias x='echo A' && echo A" {
		t.Fatalf("provisional expansion: got %q", got)
	}
	// The real table is untouched until the builtin runs.
	if _, ok := table.Get("x"); ok {
		t.Fatal("provisional definition leaked into the table")
	}
}
