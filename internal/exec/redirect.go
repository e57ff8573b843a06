package exec

import (
	"fmt"
	"io"
	"os"

	"github.com/siliconlad/aish/internal/errors"
	"github.com/siliconlad/aish/internal/lexer"
)

// OutputRedirect writes its child's stdout into a file, truncating or
// appending. It yields no further stdout, so a stacked outer redirect sees
// an empty stream. The target path tokens resolve when the file is opened.
type OutputRedirect struct {
	child    Pipeable
	path     []lexer.Token
	appendTo bool
}

// NewOutputRedirect wraps child so its output truncates the file at path.
func NewOutputRedirect(child Pipeable, path []lexer.Token) (*OutputRedirect, error) {
	return newOutputRedirect(child, path, false)
}

// NewOutputRedirectAppend wraps child so its output appends to the file at
// path, creating it if missing.
func NewOutputRedirectAppend(child Pipeable, path []lexer.Token) (*OutputRedirect, error) {
	return newOutputRedirect(child, path, true)
}

func newOutputRedirect(child Pipeable, path []lexer.Token, appendTo bool) (*OutputRedirect, error) {
	if len(path) == 0 {
		return nil, errors.NewExpectedToken("path")
	}
	return &OutputRedirect{child: child, path: path, appendTo: appendTo}, nil
}

func (r *OutputRedirect) openFile() (*os.File, error) {
	path := resolvePath(r.path)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if r.appendTo {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, errors.WrapCommandFailed(fmt.Sprintf("cannot open %s", path), err)
	}
	return f, nil
}

// Run executes the redirect standalone.
func (r *OutputRedirect) Run(ctx *Context) (string, error) {
	return runPipeable(ctx, r)
}

// Pipe runs the child with the given stdin and copies its whole stdout
// into the file.
func (r *OutputRedirect) Pipe(ctx *Context, stdin io.Reader) (io.ReadCloser, error) {
	f, err := r.openFile()
	if err != nil {
		return nil, err
	}
	out, err := r.child.Pipe(ctx, stdin)
	if err != nil {
		f.Close()
		return nil, err
	}
	if out != nil {
		_, copyErr := io.Copy(f, out)
		out.Close()
		if copyErr != nil {
			f.Close()
			return nil, copyErr
		}
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return nil, nil
}

// Wait reaps the wrapped child.
func (r *OutputRedirect) Wait() error {
	return r.child.Wait()
}

// String renders the redirect for the debug log.
func (r *OutputRedirect) String() string {
	op := ">"
	if r.appendTo {
		op = ">>"
	}
	return fmt.Sprintf("%s %s %s", r.child.String(), op, resolvePath(r.path))
}

// InputRedirect feeds a file to its child's stdin and passes the child's
// stdout through unchanged.
type InputRedirect struct {
	child Pipeable
	path  []lexer.Token
	file  *os.File
}

// NewInputRedirect wraps child so it reads its stdin from the file at path.
func NewInputRedirect(child Pipeable, path []lexer.Token) (*InputRedirect, error) {
	if len(path) == 0 {
		return nil, errors.NewExpectedToken("path")
	}
	return &InputRedirect{child: child, path: path}, nil
}

// Run executes the redirect standalone.
func (r *InputRedirect) Run(ctx *Context) (string, error) {
	return runPipeable(ctx, r)
}

// Pipe opens the source file and runs the child with it as stdin. Any
// stdin handed to this node is superseded by the file.
func (r *InputRedirect) Pipe(ctx *Context, _ io.Reader) (io.ReadCloser, error) {
	path := resolvePath(r.path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapCommandFailed(fmt.Sprintf("no such file: %s", path), err)
	}
	out, err := r.child.Pipe(ctx, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return out, nil
}

// Wait reaps the wrapped child and releases the source file.
func (r *InputRedirect) Wait() error {
	err := r.child.Wait()
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	return err
}

// String renders the redirect for the debug log.
func (r *InputRedirect) String() string {
	return fmt.Sprintf("%s < %s", r.child.String(), resolvePath(r.path))
}

// resolvePath concatenates the resolved path tokens, so $DIR/out.txt and
// ~/log work as redirect targets.
func resolvePath(path []lexer.Token) string {
	var b []byte
	for _, t := range path {
		b = append(b, t.Resolve()...)
	}
	return string(b)
}
