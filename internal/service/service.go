package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"graphtools/internal/codec"
	"graphtools/internal/config"
	"graphtools/internal/domain"
	"graphtools/internal/fsutil"
	"graphtools/internal/progress"
	"graphtools/internal/repository"
	"graphtools/internal/validate"
)

// cancellation is polled once per this many records
const cancelEvery = 1 << 16

// Service runs the graph tools
type Service struct {
	cfg    *config.Config
	logger logrus.FieldLogger
	repo   repository.Repository
	bus    *EventBus
}

// New creates a service. repo may be nil to disable the run catalog and
// bus may be nil to drop events.
func New(cfg *config.Config, logger logrus.FieldLogger, repo repository.Repository, bus *EventBus) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if bus == nil {
		bus = NewEventBus()
	}
	return &Service{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		bus:    bus,
	}
}

// Config returns the effective configuration
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Events returns the bus the service publishes on
func (s *Service) Events() *EventBus {
	return s.bus
}

// Result describes the file a conversion produced
type Result struct {
	Tool   string
	Input  string
	Output string
	// Header is the header actually written
	Header domain.Header
	Run    *domain.Run
}

// Validator returns a validator configured from the check section
func (s *Service) Validator(p progress.Func) *validate.Validator {
	return validate.New(validate.Options{
		Mode:                   s.cfg.Check.Mode,
		AllowEdgeCountMismatch: s.cfg.Check.AllowEdgeCountMismatch,
		Limits:                 s.cfg.Limits,
		Quiet:                  s.cfg.Check.Quiet,
		Progress:               p,
	}, s.logger)
}

// runFunc does the work of one tool run and returns the header it wrote
// or checked
type runFunc func(run *domain.Run, opts codec.Options) (domain.Header, error)

// track executes fn as one recorded run: it publishes the lifecycle
// events, logs the outcome, digests the output and stores the run in the
// catalog
func (s *Service) track(ctx context.Context, tool, input, output string, fn runFunc) (*Result, error) {
	run := &domain.Run{
		ID:        uuid.NewString(),
		Tool:      tool,
		Input:     input,
		Output:    output,
		StartedAt: time.Now(),
	}
	logger := s.logger.WithFields(logrus.Fields{
		"tool":   tool,
		"input":  input,
		"run_id": run.ID,
	})

	s.bus.Publish(Event{Type: EventRunStarted, RunID: run.ID, Tool: tool, Payload: RunStarted{Input: input, Output: output}})

	header, err := fn(run, s.codecOptions(run, logger))
	if err == nil {
		err = ctx.Err()
	}
	run.N, run.M = header.N, header.UndirectedEdges()
	run.Finish(err)

	if err == nil && output != "" {
		digest, derr := fsutil.Digest(output)
		if derr != nil {
			logger.WithError(derr).Warn("failed to digest output")
		}
		run.Digest = digest
	}

	s.record(ctx, run, logger)
	s.bus.Publish(Event{Type: EventRunFinished, RunID: run.ID, Tool: tool, Payload: run})

	entry := logger.WithFields(logrus.Fields{
		"action":   "run",
		"outcome":  run.Outcome,
		"duration": run.Duration().String(),
	})
	if output != "" {
		entry = entry.WithField("output", output)
	}
	if err != nil {
		entry.WithError(err).Debug("run failed")
		return &Result{Tool: tool, Input: input, Output: output, Header: header, Run: run}, err
	}
	entry.Info("run finished")
	return &Result{Tool: tool, Input: input, Output: output, Header: header, Run: run}, nil
}

// record stores run in the catalog. A catalog failure never fails the
// tool itself.
func (s *Service) record(ctx context.Context, run *domain.Run, logger logrus.FieldLogger) {
	if s.repo == nil {
		return
	}
	// the run is recorded even when ctx was cancelled mid-run
	if err := s.repo.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logger.WithError(err).Warn("failed to record run")
	}
}

// codecOptions wires progress reports to the log and the event bus
func (s *Service) codecOptions(run *domain.Run, logger logrus.FieldLogger) codec.Options {
	logProgress := progress.Log(logger, run.Tool)
	return codec.Options{
		Progress: func(current, total uint64) {
			logProgress(current, total)
			s.bus.Publish(Event{
				Type:    EventProgress,
				RunID:   run.ID,
				Tool:    run.Tool,
				Payload: Progress{Current: current, Total: total},
			})
		},
		Every:      s.cfg.IO.ProgressEvery,
		BufferSize: s.cfg.IO.BufferSize,
	}
}

// outputPath returns output, or a sibling of input with extension ext
func outputPath(input, output, ext string) string {
	if output != "" {
		return output
	}
	return fsutil.OutputPath(input, ext)
}

// cancelled polls ctx every cancelEvery records
func cancelled(ctx context.Context, record uint64) error {
	if record%cancelEvery != 0 {
		return nil
	}
	return ctx.Err()
}

// Runs lists recorded runs newest first
func (s *Service) Runs(ctx context.Context, filter repository.RunFilter) ([]domain.Run, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListRuns(ctx, filter)
}

// Run returns one recorded run with its diagnostics, or nil if unknown
func (s *Service) Run(ctx context.Context, id string) (*domain.Run, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetRun(ctx, id)
}
