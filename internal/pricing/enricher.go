package pricing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lotscout/hibid-scanner/internal/models"
)

// Enricher turns one lot title into a priced record by querying both
// marketplaces concurrently and blending the quotes.
type Enricher struct {
	ebay   Source
	yahoo  Source
	logger *slog.Logger
}

func NewEnricher(ebay, yahoo Source, logger *slog.Logger) *Enricher {
	return &Enricher{
		ebay:   ebay,
		yahoo:  yahoo,
		logger: logger.With("component", "enricher"),
	}
}

// Enrich always returns a record. When both marketplaces come back empty the
// title survives with no estimate.
func (e *Enricher) Enrich(ctx context.Context, title string) models.Record {
	var ebayQuote, yahooQuote models.Quote

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ebayQuote = e.ebay.Quote(ctx, title)
	}()
	go func() {
		defer wg.Done()
		yahooQuote = e.yahoo.Quote(ctx, title)
	}()
	wg.Wait()

	record := models.Record{
		Title:    title,
		Ebay:     ebayQuote.Value,
		Yahoo:    yahooQuote.Value,
		Estimate: Combine(ebayQuote.Value, yahooQuote.Value),
	}

	e.logger.Debug("lot enriched", "title", title,
		"ebay", logValue(record.Ebay), "yahoo", logValue(record.Yahoo))

	return record
}

func logValue(v *float64) any {
	if v == nil {
		return "absent"
	}
	return *v
}
