package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/linetable/internal/model"
)

// Step is one stage of a line crawl. Each step receives the crawl filled in
// by the previous steps.
type Step interface {
	// Do executes the step. Any error aborts the crawl.
	Do(ctx context.Context, crawl *model.LineCrawl) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// now returns the current time; replaced in tests.
	now func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
		now:   time.Now,
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
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	for _, step := range steps {
		p.AddStep(step)
	}
}

// Execute runs all steps in sequence and stops at the first error.
// FinishedAt is set on crawl only when every step succeeded.
func (p *Pipeline) Execute(ctx context.Context, crawl *model.LineCrawl) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("crawl cancelled", "step", step.Name(), "reason", err)
			return err
		}

		p.logger.Info("executing step", "step", step.Name(), "line", crawl.LineID)

		if err := step.Do(ctx, crawl); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "line", crawl.LineID, "error", err)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name(), "line", crawl.LineID)
		crawl.PerformedSteps = append(crawl.PerformedSteps, step.Name())
	}

	crawl.FinishedAt = p.now()
	return nil
}
