package parser

import (
	"github.com/siliconlad/aish/internal/errors"
	"github.com/siliconlad/aish/internal/exec"
	"github.com/siliconlad/aish/internal/lexer"
)

// Options configures parsing.
type Options struct {
	// LLMEnabled marks that a text generator is configured. Without it an
	// LLM invocation is rejected at parse time with InvalidOpenAIKey.
	LLMEnabled bool
}

// Parse consumes a token stream and returns the top-level sequence of
// runnable statements. The input must end with a ";" meta, which the
// preprocessor guarantees.
func Parse(tokens []lexer.Token, opts Options) (*exec.Sequence, error) {
	p := &parser{opts: opts}
	sc := lexer.NewScanner(tokens)

	for {
		tok, ok := sc.Peek()
		if !ok {
			break
		}
		sc.Next()
		if m, isMeta := tok.(lexer.Meta); isMeta {
			if err := p.meta(string(m)); err != nil {
				return nil, err
			}
		} else {
			p.words = append(p.words, tok)
		}
	}

	// A statement left open means the input bypassed the preprocessor.
	if len(p.words) > 0 || p.rcmd != nil || len(p.stages) > 0 || p.inAnd {
		if err := p.meta(";"); err != nil {
			return nil, err
		}
	}
	return exec.NewSequence(p.statements), nil
}

type redirectKind int

const (
	redirNone redirectKind = iota
	redirIn
	redirOut
	redirAppend
)

// parser accumulates one statement at a time: words of the current leaf (or
// the path of a pending redirect), the redirect-wrapped command, pipeline
// stages, and the and-sequence under construction.
type parser struct {
	opts Options

	words  []lexer.Token
	rcmd   exec.Pipeable
	rkind  redirectKind
	stages []exec.Pipeable

	andCmds []exec.Runnable
	inAnd   bool

	statements []exec.Runnable
}

// meta folds one separator into the parser state.
func (p *parser) meta(m string) error {
	switch m {
	case "<":
		return p.startRedirect(redirIn)
	case ">":
		return p.startRedirect(redirOut)
	case ">>":
		return p.startRedirect(redirAppend)
	case "|":
		leaf, err := p.finishLeaf()
		if err != nil {
			return err
		}
		if leaf == nil {
			return errors.NewExpectedToken("command")
		}
		p.stages = append(p.stages, leaf)
		return nil
	case "&&":
		pipeline, err := p.sealPipeline()
		if err != nil {
			return err
		}
		if pipeline == nil {
			return errors.NewExpectedToken("command")
		}
		p.andCmds = append(p.andCmds, pipeline)
		p.inAnd = true
		return nil
	case ";":
		return p.finishStatement()
	default:
		return errors.NewUnexpectedToken(m)
	}
}

// startRedirect finalizes whatever the pending words belong to and arms the
// next redirect kind. A repeated redirect in the same direction discards
// the earlier path (last write wins); opposite directions stack.
func (p *parser) startRedirect(kind redirectKind) error {
	switch {
	case p.rkind == redirNone:
		cmd, err := p.buildCmd()
		if err != nil {
			return err
		}
		if cmd == nil {
			return errors.NewExpectedToken("command")
		}
		p.rcmd = cmd
	case sameDirection(p.rkind, kind):
		p.words = nil
	default:
		wrapped, err := p.wrapRedirect()
		if err != nil {
			return err
		}
		p.rcmd = wrapped
	}
	p.rkind = kind
	return nil
}

// finishLeaf turns the pending state into one pipeline stage: either a
// redirect-wrapped command or a bare command. Nil means nothing pending.
func (p *parser) finishLeaf() (exec.Pipeable, error) {
	if p.rkind != redirNone {
		leaf, err := p.wrapRedirect()
		if err != nil {
			return nil, err
		}
		p.rcmd = nil
		p.rkind = redirNone
		return leaf, nil
	}
	cmd, err := p.buildCmd()
	if err != nil || cmd == nil {
		return nil, err
	}
	return cmd, nil
}

// sealPipeline closes the current pipeline. Even a single stage becomes a
// Pipeline node, which owns the output-capture semantics.
func (p *parser) sealPipeline() (*exec.Pipeline, error) {
	leaf, err := p.finishLeaf()
	if err != nil {
		return nil, err
	}
	if leaf != nil {
		p.stages = append(p.stages, leaf)
	} else if len(p.stages) > 0 {
		return nil, errors.NewExpectedToken("command")
	}
	if len(p.stages) == 0 {
		return nil, nil
	}
	pipeline, err := exec.NewPipeline(p.stages)
	if err != nil {
		return nil, err
	}
	p.stages = nil
	return pipeline, nil
}

// finishStatement closes the pipeline and the and-sequence, appending the
// result to the top-level statement list.
func (p *parser) finishStatement() error {
	pipeline, err := p.sealPipeline()
	if err != nil {
		return err
	}
	if pipeline == nil {
		if p.inAnd {
			return errors.NewExpectedToken("command")
		}
		return nil
	}
	if p.inAnd {
		p.andCmds = append(p.andCmds, pipeline)
		p.statements = append(p.statements, exec.NewAndSequence(p.andCmds))
		p.andCmds = nil
		p.inAnd = false
	} else {
		p.statements = append(p.statements, pipeline)
	}
	return nil
}

// buildCmd classifies and builds the command from the collected words.
// Nil with no error means no words were pending.
func (p *parser) buildCmd() (*exec.Cmd, error) {
	if len(p.words) == 0 {
		return nil, nil
	}
	cmd, err := exec.NewCmd(p.words)
	if err != nil {
		return nil, err
	}
	p.words = nil
	if cmd.Kind() == exec.Llm && !p.opts.LLMEnabled {
		return nil, errors.NewInvalidOpenAIKey("OPENAI_API_KEY is not set")
	}
	return cmd, nil
}

// wrapRedirect wraps the pending command in the armed redirect, using the
// collected words as the target path.
func (p *parser) wrapRedirect() (exec.Pipeable, error) {
	if p.rcmd == nil {
		return nil, errors.NewInternalError()
	}
	path := p.words
	p.words = nil
	switch p.rkind {
	case redirIn:
		return exec.NewInputRedirect(p.rcmd, path)
	case redirOut:
		return exec.NewOutputRedirect(p.rcmd, path)
	case redirAppend:
		return exec.NewOutputRedirectAppend(p.rcmd, path)
	default:
		return nil, errors.NewInternalError()
	}
}

func sameDirection(a, b redirectKind) bool {
	aOut := a == redirOut || a == redirAppend
	bOut := b == redirOut || b == redirAppend
	return aOut == bOut
}
