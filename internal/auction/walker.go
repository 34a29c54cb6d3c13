package auction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lotscout/hibid-scanner/internal/fetch"
	"github.com/lotscout/hibid-scanner/internal/models"
)

const sortKey = "HOT_RANK"

// TerminateReason says why a walk stopped fetching further pages.
type TerminateReason string

const (
	ReasonNoMoreItems  TerminateReason = "no_more_items"
	ReasonFetchFailure TerminateReason = "fetch_failure"
)

type WalkResult struct {
	Pages  int
	Reason TerminateReason
}

// PageHandler processes one non-empty listing page. It runs synchronously:
// the walker never fetches page N+1 before the handler for page N returns.
type PageHandler func(ctx context.Context, page *models.Page) error

// Walker steps through a HiBid listing one page at a time.
type Walker struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewWalker(fetcher fetch.Fetcher, logger *slog.Logger) *Walker {
	return &Walker{
		fetcher: fetcher,
		logger:  logger.With("component", "walker"),
	}
}

// PageURL builds the listing URL for one page, pinned to the HOT_RANK sort so
// page boundaries stay stable between requests.
func PageURL(baseURL string, page int) string {
	return fmt.Sprintf("%s?apage=%d&s=%s", baseURL, page, sortKey)
}

// Walk fetches pages starting at 1 until the site runs out of lots or a page
// fails to load; neither is an error. The first page must yield the auction
// metadata, which Walk stores on the session; without it the walk aborts with
// a wrapped ErrMetadata. A handler error or a canceled context also aborts.
func (w *Walker) Walk(ctx context.Context, session *models.Session, handler PageHandler) (*WalkResult, error) {
	result := &WalkResult{}

	for pageNum := 1; ; pageNum++ {
		url := PageURL(session.BaseURL, pageNum)
		w.logger.Info("fetching listing page", "page", pageNum)

		doc, err := w.fetcher.Document(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			w.logger.Warn("page fetch failed, ending walk", "page", pageNum, "error", err)
			result.Reason = ReasonFetchFailure
			return result, nil
		}

		if pageNum == 1 {
			meta, err := ParseMetadata(doc)
			if err != nil {
				return result, fmt.Errorf("failed to read auction metadata: %w", err)
			}
			session.SetAuction(meta.Company, meta.EndDate)
			w.logger.Info("auction metadata", "company", meta.Company, "end_date", meta.EndDate)
		}

		titles := ParseLotTitles(doc)
		if len(titles) == 0 {
			w.logger.Info("no lots on page, walk complete", "page", pageNum)
			result.Reason = ReasonNoMoreItems
			return result, nil
		}

		w.logger.Info("lots found", "page", pageNum, "count", len(titles))

		if err := handler(ctx, &models.Page{Number: pageNum, Titles: titles}); err != nil {
			return result, fmt.Errorf("failed to process page %d: %w", pageNum, err)
		}
		result.Pages = pageNum
	}
}
