package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lotscout/hibid-scanner/internal/models"
	"github.com/lotscout/hibid-scanner/internal/ratelimit"
)

// Enricher is the per-title pricing stage the scheduler fans out to.
type Enricher interface {
	Enrich(ctx context.Context, title string) models.Record
}

// Scheduler runs one page's titles through the enricher on a bounded worker
// pool. Workers write into per-title slots, so output order always matches
// input order no matter how completions interleave.
type Scheduler struct {
	enricher Enricher
	pacer    ratelimit.Pacer
	workers  int
	logger   *slog.Logger
}

func NewScheduler(enricher Enricher, pacer ratelimit.Pacer, workers int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		enricher: enricher,
		pacer:    pacer,
		workers:  workers,
		logger:   logger.With("component", "scheduler"),
	}
}

// EnrichPage prices every title on a page: exactly one record per title, in
// page order, nothing dropped. After finishing an item each worker goes
// through the shared pacer before freeing its slot, so lot completions are
// spread out in time instead of bursting.
func (s *Scheduler) EnrichPage(ctx context.Context, titles []string) []models.Record {
	records := make([]models.Record, len(titles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, title := range titles {
		i, title := i, title
		g.Go(func() error {
			records[i] = s.enricher.Enrich(gctx, title)

			if err := s.pacer.Wait(gctx); err != nil {
				s.logger.Debug("pacing interrupted", "error", err)
			}
			return nil
		})
	}

	// Tasks never return errors; Wait is only the join point.
	_ = g.Wait()

	return records
}
