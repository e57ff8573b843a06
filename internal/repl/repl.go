// Package repl drives the interactive shell: it reads lines, expands
// aliases, parses, runs the resulting tree, and feeds COMMAND suggestions
// back into the next prompt.
package repl

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/siliconlad/aish/internal/alias"
	"github.com/siliconlad/aish/internal/builtins"
	"github.com/siliconlad/aish/internal/config"
	"github.com/siliconlad/aish/internal/exec"
	"github.com/siliconlad/aish/internal/lexer"
	"github.com/siliconlad/aish/internal/llm"
	"github.com/siliconlad/aish/internal/parser"
)

// REPL owns the process-wide shell state: the alias table, the text
// generator, the debug log and the pending command suggestion.
type REPL struct {
	cfg     *config.Config
	aliases *alias.Table
	gen     exec.Generator

	logger  *log.Logger
	logFile *os.File

	stdout io.Writer
	stderr io.Writer

	suggestion string
}

// New creates the shell driver. An unopenable debug log is a fatal startup
// error.
func New(cfg *config.Config, gen exec.Generator) (*REPL, error) {
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogPath(), err)
	}
	return &REPL{
		cfg:     cfg,
		aliases: alias.NewTable(),
		gen:     gen,
		logger:  log.New(logFile, "", log.LstdFlags),
		logFile: logFile,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}, nil
}

// Close releases the driver's resources.
func (r *REPL) Close() error {
	if r.logFile != nil {
		return r.logFile.Close()
	}
	return nil
}

// Run executes the startup file and then the interactive loop. It returns
// nil on EOF, interrupt, or the exit builtin; the caller exits 0.
func (r *REPL) Run() error {
	if err := r.runStartupFile(); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.cfg.Prompt,
		HistoryFile:     r.cfg.HistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for {
		// A pending COMMAND suggestion becomes the next line's initial
		// buffer.
		if r.suggestion != "" {
			_, _ = rl.WriteStdin([]byte(r.suggestion))
			r.suggestion = ""
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r.Execute(line) {
			return nil
		}
	}
}

// Execute runs one input line through expansion, parsing and execution.
// It returns true when the exit builtin fired.
func (r *REPL) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	r.logger.Printf("input: %s", line)

	expanded := alias.Expand(line, r.aliases)
	tokens, err := lexer.Lex(lexer.Preprocess(expanded))
	if err != nil {
		r.report(err)
		return false
	}
	root, err := parser.Parse(tokens, parser.Options{LLMEnabled: r.gen != nil})
	if err != nil {
		r.report(err)
		return false
	}
	r.logger.Printf("parsed: %s", root.String())

	ctx := exec.NewContext(r.aliases, r.stdout, r.stderr, r.gen)
	out, err := root.Run(ctx)
	if stderrors.Is(err, builtins.ErrExit) {
		if out != "" {
			fmt.Fprintln(r.stdout, out)
		}
		return true
	}
	if err != nil {
		r.report(err)
	}

	if cmd, ok := llm.Suggestion(out); ok {
		r.suggestion = cmd
		return false
	}
	if out != "" {
		fmt.Fprintln(r.stdout, out)
	}
	return false
}

// RunScript executes a file of statements, one per line, in non-interactive
// mode.
func (r *REPL) RunScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return r.runLines(f, path)
}

// runStartupFile runs $HOME/.aishrc when present. A read failure is fatal;
// a missing file is not.
func (r *REPL) runStartupFile() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(homeDir, ".aishrc")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return r.runLines(f, path)
}

// runLines feeds each line of src through the normal pipeline. Statement
// errors are reported and skipped; only a read error aborts.
func (r *REPL) runLines(src io.Reader, name string) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		if r.Execute(scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

// report prints an error to stderr and mirrors it into the debug log.
func (r *REPL) report(err error) {
	fmt.Fprintln(r.stderr, err)
	r.logger.Printf("error: %v", err)
}
