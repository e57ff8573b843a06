package exec

import (
	"io"
	"strings"

	"github.com/siliconlad/aish/internal/errors"
)

// Pipeline chains pipeable stages: stage i's stdout feeds stage i+1's
// stdin, and the final stage's stdout is drained into the pipeline's
// result. Even a single command is wrapped in a pipeline, which is what
// gives every statement its output-capture semantics.
type Pipeline struct {
	stages []Pipeable
}

// NewPipeline creates a pipeline over at least one stage.
func NewPipeline(stages []Pipeable) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, errors.NewInternalError()
	}
	return &Pipeline{stages: stages}, nil
}

// Run starts every stage in order, wiring stage i's stdout to stage i+1's
// stdin before stage i+1 starts reading, then drains the last stage. Only
// the last stage's exit status decides the pipeline's error; earlier
// stages are reaped in the background, collapsing on SIGPIPE when a
// downstream reader exits first.
func (p *Pipeline) Run(ctx *Context) (string, error) {
	var in io.Reader
	last := len(p.stages) - 1

	for i, stage := range p.stages[:last] {
		out, err := stage.Pipe(ctx, in)
		if err != nil {
			p.reap(p.stages[:i])
			return "", err
		}
		in = out
	}

	final := p.stages[last]
	out, err := final.Pipe(ctx, in)
	if err != nil {
		p.reap(p.stages[:last])
		return "", err
	}

	var data []byte
	var readErr error
	if out != nil {
		data, readErr = io.ReadAll(out)
		out.Close()
	}
	p.reap(p.stages[:last])
	if err := final.Wait(); err != nil {
		return "", err
	}
	if readErr != nil {
		return "", readErr
	}
	return finishOutput(ctx, data), nil
}

// reap waits for already-started stages without blocking the pipeline's
// result on them.
func (p *Pipeline) reap(stages []Pipeable) {
	for _, stage := range stages {
		go func(s Pipeable) {
			_ = s.Wait()
		}(stage)
	}
}

// String renders the pipeline for the debug log.
func (p *Pipeline) String() string {
	parts := make([]string, len(p.stages))
	for i, stage := range p.stages {
		parts[i] = stage.String()
	}
	return strings.Join(parts, " | ")
}
