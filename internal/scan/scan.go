package scan

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/lotscout/hibid-scanner/internal/auction"
	"github.com/lotscout/hibid-scanner/internal/models"
	"github.com/lotscout/hibid-scanner/internal/report"
)

// Scheduler turns a page of lot titles into enriched records.
type Scheduler interface {
	EnrichPage(ctx context.Context, titles []string) []models.Record
}

// RecordSink persists run bookkeeping and per-page records out of band.
// A nil sink disables persistence; sink failures never stop a scan.
type RecordSink interface {
	CreateRun(ctx context.Context, session *models.Session) error
	InsertRecords(ctx context.Context, runID string, pageNumber int, records []models.Record) error
	FinishRun(ctx context.Context, runID string, pages int, termination string) error
}

// ProgressTracker receives a notification after each completed page.
type ProgressTracker interface {
	PageDone(page int)
}

// Runner drives a full scan: it walks the auction pages, enriches each
// page through the scheduler, accumulates records in the assembler and
// writes the final report once the walk ends.
type Runner struct {
	walker    *auction.Walker
	scheduler Scheduler
	assembler *report.Assembler
	sink      RecordSink
	tracker   ProgressTracker
	outputDir string
	ext       string
	logger    *slog.Logger
}

// NewRunner wires the scan stages together. sink and tracker may be nil.
func NewRunner(walker *auction.Walker, scheduler Scheduler, assembler *report.Assembler, sink RecordSink, tracker ProgressTracker, outputDir, ext string, logger *slog.Logger) *Runner {
	return &Runner{
		walker:    walker,
		scheduler: scheduler,
		assembler: assembler,
		sink:      sink,
		tracker:   tracker,
		outputDir: outputDir,
		ext:       ext,
		logger:    logger.With("component", "runner"),
	}
}

// Run executes the scan and returns the report path. The final report is
// written even when the walk is cut short, as long as the auction metadata
// was parsed; without metadata there is no report name to write to.
func (r *Runner) Run(ctx context.Context, session *models.Session) (string, *auction.WalkResult, error) {
	result, walkErr := r.walker.Walk(ctx, session, r.handlePage(session))

	company, _ := session.Auction()
	if company == "" {
		return "", result, walkErr
	}

	path := r.reportPath(session)

	if r.sink != nil {
		if err := r.sink.FinishRun(ctx, session.RunID, result.Pages, string(result.Reason)); err != nil {
			r.logger.Warn("failed to record run completion", "run_id", session.RunID, "error", err)
		}
	}

	if err := r.assembler.Flush(path); err != nil {
		if walkErr != nil {
			r.logger.Error("final report write failed after aborted walk", "path", path, "error", err)
			return path, result, walkErr
		}
		return path, result, err
	}

	return path, result, walkErr
}

// handlePage builds the walker callback. Sink and tracker steps are
// best effort; the callback itself never fails, so a walk only ends on
// fetch errors, an empty page or cancellation.
func (r *Runner) handlePage(session *models.Session) auction.PageHandler {
	return func(ctx context.Context, page *models.Page) error {
		if page.Number == 1 && r.sink != nil {
			if err := r.sink.CreateRun(ctx, session); err != nil {
				r.logger.Warn("failed to record run start", "run_id", session.RunID, "error", err)
			}
		}

		records := r.scheduler.EnrichPage(ctx, page.Titles)
		r.assembler.Append(records...)

		if r.tracker != nil {
			r.tracker.PageDone(page.Number)
		}

		if r.sink != nil {
			if err := r.sink.InsertRecords(ctx, session.RunID, page.Number, records); err != nil {
				r.logger.Warn("failed to persist page records", "run_id", session.RunID, "page", page.Number, "error", err)
			}
		}

		r.assembler.Checkpoint(r.reportPath(session), page.Number)
		return nil
	}
}

func (r *Runner) reportPath(session *models.Session) string {
	return filepath.Join(r.outputDir, session.ReportName(r.ext))
}
