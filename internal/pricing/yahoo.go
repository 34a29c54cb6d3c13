package pricing

import (
	"context"
	"log/slog"

	"github.com/lotscout/hibid-scanner/internal/fetch"
	"github.com/lotscout/hibid-scanner/internal/models"
)

// Yahoo renders prices through styled-components, so the class name carries a
// generated hash suffix. Matching on the stable prefix survives restyles.
const (
	yahooSearchURL     = "https://shopping.yahoo.com/search?p="
	yahooPriceSelector = "[class*='FluidProductCell__PriceText-sc-fsx0f7-9']"
)

// YahooSource quotes asking prices from Yahoo Shopping search results.
type YahooSource struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewYahooSource(fetcher fetch.Fetcher, logger *slog.Logger) *YahooSource {
	return &YahooSource{
		fetcher: fetcher,
		logger:  logger.With("component", "yahoo_source"),
	}
}

func (s *YahooSource) Name() models.Source {
	return models.SourceYahoo
}

func (s *YahooSource) Quote(ctx context.Context, title string) models.Quote {
	quote := models.Quote{Source: models.SourceYahoo}

	doc, err := s.fetcher.Document(ctx, yahooSearchURL+searchQuery(title))
	if err != nil {
		s.logger.Warn("yahoo lookup failed", "title", title, "error", err)
		return quote
	}

	quote.Value = meanPrice(doc.Find(yahooPriceSelector))
	if quote.Value == nil {
		s.logger.Debug("no yahoo prices parsed", "title", title)
	}

	return quote
}
