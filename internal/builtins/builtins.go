package builtins

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/siliconlad/aish/internal/alias"
	aisherrors "github.com/siliconlad/aish/internal/errors"
)

// Context provides the built-ins access to shell state.
type Context interface {
	Aliases() *alias.Table
}

// ErrExit is returned by the exit builtin. The REPL driver treats it as a
// request to save history and terminate with status 0.
var ErrExit = errors.New("exit")

// Func is a built-in command: it receives resolved argument strings and
// returns its stdout as a string, without a trailing newline.
type Func func(ctx Context, args []string) (string, error)

// Registry holds the closed set of built-in commands.
var Registry = map[string]Func{
	"cd":     cd,
	"pwd":    pwd,
	"exit":   exit,
	"echo":   echo,
	"export": export,
	"unset":  unset,
	"alias":  aliasCmd,
}

// IsBuiltin reports whether name is a built-in command.
func IsBuiltin(name string) bool {
	_, ok := Registry[name]
	return ok
}

// Run dispatches a built-in by name.
func Run(ctx Context, name string, args []string) (string, error) {
	fn, ok := Registry[name]
	if !ok {
		return "", aisherrors.NewCommandFailed(fmt.Sprintf("%s: not a builtin", name))
	}
	return fn(ctx, args)
}

// cd changes the working directory. With no argument it goes to HOME.
func cd(_ Context, args []string) (string, error) {
	path := os.Getenv("HOME")
	if len(args) > 0 {
		path = args[0]
	}
	path = expandHome(path)
	if err := os.Chdir(path); err != nil {
		return "", aisherrors.NewCommandFailed(fmt.Sprintf("no such directory: %s", path))
	}
	return "", nil
}

// pwd prints the current working directory.
func pwd(_ Context, _ []string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", aisherrors.WrapCommandFailed("pwd", err)
	}
	return dir, nil
}

// exit terminates the shell with status 0.
func exit(_ Context, _ []string) (string, error) {
	return "", ErrExit
}

// echo prints its arguments joined by single spaces.
func echo(_ Context, args []string) (string, error) {
	return strings.Join(args, " "), nil
}

// export sets one NAME=VALUE environment variable, or with no arguments
// prints the whole environment as K="V" lines.
func export(_ Context, args []string) (string, error) {
	switch len(args) {
	case 0:
		env := os.Environ()
		sort.Strings(env)
		var b strings.Builder
		for i, kv := range env {
			k, v, _ := strings.Cut(kv, "=")
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s=%q", k, v)
		}
		return b.String(), nil
	case 1:
		name, value, ok := strings.Cut(args[0], "=")
		if !ok || name == "" {
			return "", aisherrors.NewCommandFailed(fmt.Sprintf("export: invalid assignment: %s", args[0]))
		}
		value = expandHome(value)
		if err := os.Setenv(name, value); err != nil {
			return "", aisherrors.WrapCommandFailed("export", err)
		}
		return "", nil
	default:
		return "", aisherrors.NewCommandFailed("export: too many arguments")
	}
}

// unset removes each named environment variable.
func unset(_ Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", aisherrors.NewCommandFailed("unset: missing variable name")
	}
	for _, name := range args {
		if err := os.Unsetenv(name); err != nil {
			return "", aisherrors.WrapCommandFailed("unset", err)
		}
	}
	return "", nil
}

// aliasCmd prints, queries or defines aliases.
func aliasCmd(ctx Context, args []string) (string, error) {
	table := ctx.Aliases()
	switch len(args) {
	case 0:
		var b strings.Builder
		for i, name := range table.Names() {
			value, _ := table.Get(name)
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s='%s'", name, value)
		}
		return b.String(), nil
	case 1:
		name, value, ok := strings.Cut(args[0], "=")
		if !ok {
			value, found := table.Get(name)
			if !found {
				return "", aisherrors.NewCommandFailed(fmt.Sprintf("alias: %s: not found", name))
			}
			return fmt.Sprintf("%s='%s'", name, value), nil
		}
		if name == "" {
			return "", aisherrors.NewCommandFailed(fmt.Sprintf("alias: invalid name: %s", args[0]))
		}
		table.Set(name, value)
		return "", nil
	default:
		return "", aisherrors.NewCommandFailed("alias: too many arguments")
	}
}

// expandHome rewrites a leading ~ or ~/ to the HOME directory.
func expandHome(path string) string {
	if path == "~" {
		return os.Getenv("HOME")
	}
	if strings.HasPrefix(path, "~/") {
		return os.Getenv("HOME") + path[1:]
	}
	return path
}
