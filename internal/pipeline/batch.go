package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/intelscan/intelscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent investigation of multiple subjects.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-subject execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each subject.
	// We use a factory to ensure each investigation gets a fresh
	// pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent investigations.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.Report
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent investigations.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each subject to create a
// fresh pipeline instance. This ensures that pipeline state doesn't leak
// between investigations and allows for per-subject customization if
// needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.Report, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch investigates multiple subjects concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each subject gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for subjects whose investigation
// failed. The error return indicates whether the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, subjects []string) ([]*model.Report, error) {
	bp.logger.Info("starting batch processing",
		"total_subjects", len(subjects),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.Report, len(subjects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, subject := range subjects {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("investigating subject",
				"subject", subject,
				"index", i+1,
				"total", len(subjects),
			)

			report := model.NewReport(subject)

			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report carries the failure detail if a step failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("investigation failed",
					"subject", subject,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// other investigations. The error is recorded in the
				// report.
				return nil
			}

			bp.logger.Info("investigation completed",
				"subject", subject,
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_subjects", len(subjects),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback investigates multiple subjects and calls a
// callback for each completed report. This is useful for streaming
// results as they finish.
//
// The callback receives the report and the index of the subject in the
// original slice. The callback is called from the goroutine that
// completed the investigation, so it should be thread-safe if it
// accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	subjects []string,
	callback func(report *model.Report, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_subjects", len(subjects),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, subject := range subjects {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewReport(subject)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is recorded in report

			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
