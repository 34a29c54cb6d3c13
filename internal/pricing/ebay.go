package pricing

import (
	"context"
	"log/slog"

	"github.com/lotscout/hibid-scanner/internal/fetch"
	"github.com/lotscout/hibid-scanner/internal/models"
)

const (
	ebaySearchURL     = "https://www.ebay.ca/sch/i.html?_nkw="
	ebayPriceSelector = ".s-item__price"
)

// EbaySource quotes resale prices from eBay search results.
type EbaySource struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewEbaySource(fetcher fetch.Fetcher, logger *slog.Logger) *EbaySource {
	return &EbaySource{
		fetcher: fetcher,
		logger:  logger.With("component", "ebay_source"),
	}
}

func (s *EbaySource) Name() models.Source {
	return models.SourceEbay
}

func (s *EbaySource) Quote(ctx context.Context, title string) models.Quote {
	quote := models.Quote{Source: models.SourceEbay}

	doc, err := s.fetcher.Document(ctx, ebaySearchURL+searchQuery(title))
	if err != nil {
		s.logger.Warn("ebay lookup failed", "title", title, "error", err)
		return quote
	}

	quote.Value = meanPrice(doc.Find(ebayPriceSelector))
	if quote.Value == nil {
		s.logger.Debug("no ebay prices parsed", "title", title)
	}

	return quote
}
