package pipeline

import (
	"context"
	"log/slog"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. A returned error stops the pipeline.
	Do(ctx context.Context) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// funcStep adapts a function to Step.
type funcStep struct {
	name string
	fn   func(ctx context.Context) error
}

func (s funcStep) Do(ctx context.Context) error { return s.fn(ctx) }
func (s funcStep) Name() string { return s.name }

// NewStep returns a Step that runs fn.
func NewStep(name string, fn func(ctx context.Context) error) Step {
	return funcStep{name: name, fn: fn}
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// interlude runs between two consecutive steps, never before the
	// first or after the last.
	interlude func(ctx context.Context) error
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithInterlude sets a function run between consecutive steps, such as a
// politeness pause. An error from it stops the pipeline.
func WithInterlude(fn func(ctx context.Context) error) Option {
	return func(p *Pipeline) {
		p.interlude = fn
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and returns the first error.
// Cancellation is checked before each step; a running step handles its own.
func (p *Pipeline) Execute(ctx context.Context) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		if i > 0 && p.interlude != nil {
			if err := p.interlude(ctx); err != nil {
				return err
			}
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
