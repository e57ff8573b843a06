package exec

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	osexec "os/exec"

	"al.essio.dev/pkg/shellescape"

	"github.com/siliconlad/aish/internal/builtins"
	"github.com/siliconlad/aish/internal/errors"
	"github.com/siliconlad/aish/internal/lexer"
)

// Kind classifies a command leaf.
type Kind int

const (
	// External spawns a program found on PATH.
	External Kind = iota
	// Builtin runs inside the shell process but still joins pipelines.
	Builtin
	// Llm sends its prompt to the text-generation service.
	Llm
)

// Cmd is a leaf node: an ordered, non-empty list of word tokens, resolved
// to argument strings at run time.
type Cmd struct {
	kind  Kind
	words []lexer.Token

	proc   *osexec.Cmd
	done   chan error
	waited bool
	werr   error
}

// NewCmd builds a command from its word tokens and classifies it. A single
// double-quoted word is the LLM-invocation form; a head in the builtin set
// is a builtin; anything else is external.
func NewCmd(words []lexer.Token) (*Cmd, error) {
	if len(words) == 0 {
		return nil, errors.NewInternalError()
	}
	kind := External
	if len(words) == 1 {
		if _, ok := words[0].(lexer.DoubleQuoted); ok {
			kind = Llm
		}
	}
	if kind == External && builtins.IsBuiltin(words[0].Resolve()) {
		kind = Builtin
	}
	return &Cmd{kind: kind, words: words}, nil
}

// Kind returns the command's classification.
func (c *Cmd) Kind() Kind {
	return c.kind
}

// argv resolves every word to its final string.
func (c *Cmd) argv() []string {
	args := make([]string, len(c.words))
	for i, w := range c.words {
		args[i] = w.Resolve()
	}
	return args
}

// Run executes the command standalone and captures its output.
func (c *Cmd) Run(ctx *Context) (string, error) {
	return runPipeable(ctx, c)
}

// Pipe starts the command with the given stdin and returns its readable
// stdout, according to its kind.
func (c *Cmd) Pipe(ctx *Context, stdin io.Reader) (io.ReadCloser, error) {
	switch c.kind {
	case Builtin:
		return c.pipeBuiltin(ctx, stdin)
	case Llm:
		return c.pipeLlm(ctx, stdin)
	default:
		return c.pipeExternal(ctx, stdin)
	}
}

// pipeExternal spawns the program with stdout captured. A nil stdin is
// inherited from the shell.
func (c *Cmd) pipeExternal(ctx *Context, stdin io.Reader) (io.ReadCloser, error) {
	argv := c.argv()
	cmd := osexec.Command(argv[0], argv[1:]...)
	if stdin != nil {
		cmd.Stdin = stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	cmd.Stderr = ctx.Stderr

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WrapCommandFailed(argv[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.WrapCommandFailed(argv[0], err)
	}
	c.proc = cmd
	return out, nil
}

// pipeBuiltin runs the builtin concurrently with its stdout end of a fresh
// pipe, so that alias | cat and export | grep stream like any external.
// The passed stdin is drained so an upstream writer never blocks on a
// builtin that reads nothing.
func (c *Cmd) pipeBuiltin(ctx *Context, stdin io.Reader) (io.ReadCloser, error) {
	argv := c.argv()
	if stdin != nil {
		go func() {
			_, _ = io.Copy(io.Discard, stdin)
		}()
	}

	pr, pw := io.Pipe()
	c.done = make(chan error, 1)
	go func() {
		out, err := builtins.Run(ctx, argv[0], argv[1:])
		if out != "" {
			_, _ = io.WriteString(pw, out+"\n")
		}
		_ = pw.Close()
		c.done <- err
	}()
	return pr, nil
}

// pipeLlm resolves the prompt and calls the generator: bare prompt when
// standalone, wrapped with the piped input otherwise. The response streams
// out through a pipe like any other stage's stdout.
func (c *Cmd) pipeLlm(ctx *Context, stdin io.Reader) (io.ReadCloser, error) {
	if ctx.Generator == nil {
		return nil, errors.NewInvalidOpenAIKey("no API key configured")
	}
	prompt := c.words[0].Resolve()

	var response string
	var err error
	if stdin == nil {
		response, err = ctx.Generator.Generate(context.Background(), prompt)
	} else {
		input, readErr := io.ReadAll(stdin)
		if readErr != nil {
			return nil, readErr
		}
		response, err = ctx.Generator.GenerateWithInput(context.Background(), prompt, string(input))
	}
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	c.done = make(chan error, 1)
	go func() {
		_, _ = io.WriteString(pw, response+"\n")
		_ = pw.Close()
		c.done <- nil
	}()
	return pr, nil
}

// Wait reaps the child process or the builtin goroutine. Safe to call more
// than once; later calls return the first result.
func (c *Cmd) Wait() error {
	if c.waited {
		return c.werr
	}
	c.waited = true

	switch {
	case c.proc != nil:
		err := c.proc.Wait()
		if err != nil {
			var exitErr *osexec.ExitError
			if stderrors.As(err, &exitErr) {
				c.werr = errors.NewCommandFailed(exitErr.String())
			} else {
				c.werr = errors.WrapCommandFailed(c.words[0].Resolve(), err)
			}
		}
	case c.done != nil:
		c.werr = <-c.done
	}
	return c.werr
}

// String renders the command for the debug log.
func (c *Cmd) String() string {
	if c.kind == Llm {
		return c.words[0].Raw()
	}
	return shellescape.QuoteCommand(c.argv())
}
