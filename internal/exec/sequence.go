package exec

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/siliconlad/aish/internal/builtins"
)

// AndSequence runs its children in order and stops at the first failure,
// propagating that error to the caller.
type AndSequence struct {
	children []Runnable
}

// NewAndSequence creates a short-circuiting sequence.
func NewAndSequence(children []Runnable) *AndSequence {
	return &AndSequence{children: children}
}

// Run executes children left to right. The first error aborts the rest;
// otherwise the non-empty child outputs are joined by newlines.
func (s *AndSequence) Run(ctx *Context) (string, error) {
	var outs []string
	for _, child := range s.children {
		out, err := child.Run(ctx)
		if err != nil {
			return "", err
		}
		if out != "" {
			outs = append(outs, out)
		}
	}
	return strings.Join(outs, "\n"), nil
}

// String renders the sequence for the debug log.
func (s *AndSequence) String() string {
	return joinChildren(s.children, " && ")
}

// Sequence runs its children unconditionally. Child errors are reported to
// stderr and swallowed so one bad line of an .aishrc does not abort the
// rest; only the exit builtin stops the walk.
type Sequence struct {
	children []Runnable
}

// NewSequence creates an unconditional sequence.
func NewSequence(children []Runnable) *Sequence {
	return &Sequence{children: children}
}

// Run executes every child, joining the non-empty outputs by newlines.
func (s *Sequence) Run(ctx *Context) (string, error) {
	var outs []string
	for _, child := range s.children {
		out, err := child.Run(ctx)
		if out != "" {
			outs = append(outs, out)
		}
		if err != nil {
			if stderrors.Is(err, builtins.ErrExit) {
				return strings.Join(outs, "\n"), err
			}
			fmt.Fprintln(ctx.Stderr, err)
		}
	}
	return strings.Join(outs, "\n"), nil
}

// String renders the sequence for the debug log.
func (s *Sequence) String() string {
	return joinChildren(s.children, "; ")
}

func joinChildren(children []Runnable, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}
