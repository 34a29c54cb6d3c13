package report

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/lotscout/hibid-scanner/internal/models"
)

// Writer persists one ranked snapshot of the accumulated records.
type Writer interface {
	Write(path string, records []models.Record) error
	Ext() string
}

// Assembler accumulates enriched records for the whole run and writes ranked
// snapshots. Appends come from the page driver alone; the lock exists for the
// status API's concurrent readers.
type Assembler struct {
	writer        Writer
	snapshotEvery int
	logger        *slog.Logger

	mu      sync.RWMutex
	records []models.Record
}

func NewAssembler(writer Writer, snapshotEvery int, logger *slog.Logger) *Assembler {
	return &Assembler{
		writer:        writer,
		snapshotEvery: snapshotEvery,
		logger:        logger.With("component", "assembler"),
	}
}

func (a *Assembler) Append(records ...models.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, records...)
}

func (a *Assembler) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// Snapshot returns a copy of the records ranked by estimate, highest first.
// Records without an estimate sort after every priced one; ties and the
// unpriced tail keep their accumulation order.
func (a *Assembler) Snapshot() []models.Record {
	a.mu.RLock()
	out := make([]models.Record, len(a.records))
	copy(out, a.records)
	a.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Estimate, out[j].Estimate
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return *ri > *rj
	})

	return out
}

// Checkpoint writes a snapshot when page lands on the cadence boundary. A
// failed write is logged and swallowed; the records stay in memory for the
// next attempt.
func (a *Assembler) Checkpoint(path string, page int) {
	if page%a.snapshotEvery != 0 {
		return
	}

	if err := a.writer.Write(path, a.Snapshot()); err != nil {
		a.logger.Warn("checkpoint write failed", "path", path, "page", page, "error", err)
		return
	}
	a.logger.Info("checkpoint written", "path", path, "page", page, "records", a.Len())
}

// Flush writes the final report. The error surfaces to the caller; the
// records are retained either way so a rerun of the write loses nothing.
func (a *Assembler) Flush(path string) error {
	if err := a.writer.Write(path, a.Snapshot()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.logger.Info("report written", "path", path, "records", a.Len())
	return nil
}
