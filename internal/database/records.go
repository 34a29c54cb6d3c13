package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lotscout/hibid-scanner/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id UUID PRIMARY KEY,
	base_url TEXT NOT NULL,
	company TEXT,
	end_date TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	pages INT NOT NULL DEFAULT 0,
	termination TEXT
);

CREATE TABLE IF NOT EXISTS lot_records (
	run_id UUID NOT NULL REFERENCES runs(id),
	page_number INT NOT NULL,
	position INT NOT NULL,
	title TEXT NOT NULL,
	ebay_price NUMERIC(12,2),
	yahoo_price NUMERIC(12,2),
	weighted_estimate NUMERIC(12,2),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, page_number, position)
);
`

// Execer is the slice of DB the store depends on, kept narrow so tests can
// record the SQL instead of standing up Postgres.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// RunStore persists run metadata and enriched lots. The sink is best-effort
// observability for the CLI: callers log failures and move on.
type RunStore struct {
	db     Execer
	logger *slog.Logger
}

func NewRunStore(db Execer, logger *slog.Logger) *RunStore {
	return &RunStore{
		db:     db,
		logger: logger.With("component", "run_store"),
	}
}

func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun records the session once the first page has yielded the auction
// metadata.
func (s *RunStore) CreateRun(ctx context.Context, session *models.Session) error {
	company, endDate := session.Auction()
	_, err := s.db.Exec(ctx,
		`INSERT INTO runs (id, base_url, company, end_date, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.RunID, session.BaseURL, company, endDate, session.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (s *RunStore) FinishRun(ctx context.Context, runID string, pages int, termination string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE runs SET finished_at = now(), pages = $2, termination = $3 WHERE id = $1`,
		runID, pages, termination)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// InsertRecords writes one page's records in a single round trip. Replays of
// the same page are no-ops thanks to the conflict clause.
func (s *RunStore) InsertRecords(ctx context.Context, runID string, pageNumber int, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, record := range records {
		batch.Queue(
			`INSERT INTO lot_records (run_id, page_number, position, title, ebay_price, yahoo_price, weighted_estimate)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (run_id, page_number, position) DO NOTHING`,
			runID, pageNumber, i, record.Title, record.Ebay, record.Yahoo, record.Estimate)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert lot records: %w", err)
		}
	}

	return nil
}
