package exec

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/siliconlad/aish/internal/alias"
)

// Generator produces text for LLM commands. The REPL wires in the OpenAI
// client; tests substitute a stub.
type Generator interface {
	// Generate sends a bare prompt and returns the response text.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithInput wraps prompt and piped input in the suggestion
	// template before sending.
	GenerateWithInput(ctx context.Context, prompt, input string) (string, error)
}

// Context carries the shell state a node needs while running: the alias
// table, the output sinks, and the text generator (nil when no API key is
// configured). It is passed by exclusive reference through each run.
type Context struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Generator Generator

	aliases *alias.Table
}

// NewContext creates a run context around the given alias table.
func NewContext(aliases *alias.Table, stdout, stderr io.Writer, gen Generator) *Context {
	return &Context{
		Stdout:    stdout,
		Stderr:    stderr,
		Generator: gen,
		aliases:   aliases,
	}
}

// Aliases returns the process-wide alias table.
func (c *Context) Aliases() *alias.Table {
	return c.aliases
}

// Runnable executes to completion and yields a final textual result.
// Pipelines and sequences are runnable only; commands and redirects are
// both runnable and pipeable.
type Runnable interface {
	Run(ctx *Context) (string, error)
	String() string
}

// Pipeable yields, given an optional readable stdin, an optional readable
// stdout for the next pipeline stage. Wait reaps whatever the stage
// started; it must be called exactly once after the stdout is drained.
type Pipeable interface {
	Runnable
	Pipe(ctx *Context, stdin io.Reader) (io.ReadCloser, error)
	Wait() error
}

// runPipeable gives commands and redirects their run semantics: pipe with
// no stdin, drain, reap, convert.
func runPipeable(ctx *Context, p Pipeable) (string, error) {
	out, err := p.Pipe(ctx, nil)
	if err != nil {
		return "", err
	}
	var data []byte
	var readErr error
	if out != nil {
		data, readErr = io.ReadAll(out)
		out.Close()
	}
	if err := p.Wait(); err != nil {
		return "", err
	}
	if readErr != nil {
		return "", readErr
	}
	return finishOutput(ctx, data), nil
}

// finishOutput converts captured bytes into a node's string result. Valid
// text loses exactly one trailing newline; binary data goes straight to the
// shell's stdout and yields no string form.
func finishOutput(ctx *Context, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if !utf8.Valid(data) {
		_, _ = ctx.Stdout.Write(data)
		return ""
	}
	return strings.TrimSuffix(string(data), "\n")
}
