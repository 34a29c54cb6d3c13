package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotscout/hibid-scanner/internal/auction"
	"github.com/lotscout/hibid-scanner/internal/models"
	"github.com/lotscout/hibid-scanner/internal/pipeline"
	"github.com/lotscout/hibid-scanner/internal/pricing"
	"github.com/lotscout/hibid-scanner/internal/ratelimit"
	"github.com/lotscout/hibid-scanner/internal/report"
)

type stubFetcher struct {
	pages map[string]string
}

func (s *stubFetcher) Document(_ context.Context, url string) (*goquery.Document, error) {
	html, ok := s.pages[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

type fixedSource struct {
	name   models.Source
	prices map[string]float64
}

func (f fixedSource) Name() models.Source { return f.name }

func (f fixedSource) Quote(_ context.Context, title string) models.Quote {
	quote := models.Quote{Source: f.name}
	if v, ok := f.prices[title]; ok {
		value := v
		quote.Value = &value
	}
	return quote
}

type reportWrite struct {
	path    string
	records []models.Record
}

type captureWriter struct {
	err    error
	writes []reportWrite
}

func (w *captureWriter) Write(path string, records []models.Record) error {
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, reportWrite{path: path, records: records})
	return nil
}

func (w *captureWriter) Ext() string { return "xlsx" }

type finishCall struct {
	runID       string
	pages       int
	termination string
}

type fakeSink struct {
	err         error
	createCalls int
	insertPages []int
	finishes    []finishCall
}

func (s *fakeSink) CreateRun(_ context.Context, _ *models.Session) error {
	s.createCalls++
	return s.err
}

func (s *fakeSink) InsertRecords(_ context.Context, _ string, pageNumber int, _ []models.Record) error {
	s.insertPages = append(s.insertPages, pageNumber)
	return s.err
}

func (s *fakeSink) FinishRun(_ context.Context, runID string, pages int, termination string) error {
	s.finishes = append(s.finishes, finishCall{runID: runID, pages: pages, termination: termination})
	return s.err
}

type fakeTracker struct {
	pages []int
}

func (t *fakeTracker) PageDone(page int) {
	t.pages = append(t.pages, page)
}

func auctionPage(lots ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><h2 class="company-name"><a href="/company/88">Prairie Auction House</a></h2>`)
	b.WriteString(`<p>Date(s) 3/2/2025 - 3/9/2025</p>`)
	for _, lot := range lots {
		fmt.Fprintf(&b, `<div class="lot-title">%s</div>`, lot)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(t *testing.T, fetcher *stubFetcher, writer *captureWriter, sink RecordSink, tracker ProgressTracker, snapshotEvery int) *Runner {
	t.Helper()
	logger := discardLogger()

	ebay := fixedSource{name: models.SourceEbay, prices: map[string]float64{"Gold Coin": 200, "Box of Books": 20}}
	yahoo := fixedSource{name: models.SourceYahoo, prices: map[string]float64{"Gold Coin": 100, "Box of Books": 10}}

	enricher := pricing.NewEnricher(ebay, yahoo, logger)
	scheduler := pipeline.NewScheduler(enricher, ratelimit.NewFixedPacer(0), 4, logger)
	assembler := report.NewAssembler(writer, snapshotEvery, logger)
	walker := auction.NewWalker(fetcher, logger)

	return NewRunner(walker, scheduler, assembler, sink, tracker, t.TempDir(), writer.Ext(), logger)
}

func TestRunFullScan(t *testing.T) {
	base := "https://hibid.com/catalog/99/prairie"
	fetcher := &stubFetcher{pages: map[string]string{
		base + "?apage=1&s=HOT_RANK": auctionPage("Gold Coin", "Box of Books"),
		base + "?apage=2&s=HOT_RANK": auctionPage("Mystery Crate"),
		base + "?apage=3&s=HOT_RANK": auctionPage(),
	}}

	writer := &captureWriter{}
	sink := &fakeSink{}
	tracker := &fakeTracker{}
	runner := newTestRunner(t, fetcher, writer, sink, tracker, 2)

	session := models.NewSession(base)
	path, result, err := runner.Run(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, auction.ReasonNoMoreItems, result.Reason)
	assert.Equal(t, "Prairie Auction House_3_9_2025.xlsx", filepath.Base(path))

	// One checkpoint after the second page plus the final flush.
	require.Len(t, writer.writes, 2)
	assert.Equal(t, path, writer.writes[0].path)
	assert.Len(t, writer.writes[0].records, 3)

	final := writer.writes[1].records
	require.Len(t, final, 3)
	assert.Equal(t, "Gold Coin", final[0].Title)
	assert.Equal(t, "Box of Books", final[1].Title)
	assert.Equal(t, "Mystery Crate", final[2].Title)
	require.NotNil(t, final[0].Estimate)
	assert.InDelta(t, 160.0, *final[0].Estimate, 0.001)
	require.NotNil(t, final[1].Estimate)
	assert.InDelta(t, 16.0, *final[1].Estimate, 0.001)
	assert.Nil(t, final[2].Estimate)

	assert.Equal(t, 1, sink.createCalls)
	assert.Equal(t, []int{1, 2}, sink.insertPages)
	require.Len(t, sink.finishes, 1)
	assert.Equal(t, session.RunID, sink.finishes[0].runID)
	assert.Equal(t, 2, sink.finishes[0].pages)
	assert.Equal(t, "no_more_items", sink.finishes[0].termination)

	assert.Equal(t, []int{1, 2}, tracker.pages)
}

func TestRunWithoutOptionalStages(t *testing.T) {
	base := "https://hibid.com/catalog/12/solo"
	fetcher := &stubFetcher{pages: map[string]string{
		base + "?apage=1&s=HOT_RANK": auctionPage("Gold Coin"),
		base + "?apage=2&s=HOT_RANK": auctionPage(),
	}}

	writer := &captureWriter{}
	runner := newTestRunner(t, fetcher, writer, nil, nil, 3)

	path, result, err := runner.Run(context.Background(), models.NewSession(base))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
	require.Len(t, writer.writes, 1)
	assert.Equal(t, path, writer.writes[0].path)
}

func TestRunSinkFailuresAreTolerated(t *testing.T) {
	base := "https://hibid.com/catalog/12/flaky"
	fetcher := &stubFetcher{pages: map[string]string{
		base + "?apage=1&s=HOT_RANK": auctionPage("Gold Coin"),
		base + "?apage=2&s=HOT_RANK": auctionPage(),
	}}

	writer := &captureWriter{}
	sink := &fakeSink{err: fmt.Errorf("db down")}
	runner := newTestRunner(t, fetcher, writer, sink, nil, 3)

	_, result, err := runner.Run(context.Background(), models.NewSession(base))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
	require.Len(t, writer.writes, 1)
	assert.Len(t, writer.writes[0].records, 1)
}

func TestRunMetadataFailure(t *testing.T) {
	base := "https://hibid.com/catalog/12/broken"
	fetcher := &stubFetcher{pages: map[string]string{
		base + "?apage=1&s=HOT_RANK": `<html><body><p>no dates here</p></body></html>`,
	}}

	writer := &captureWriter{}
	runner := newTestRunner(t, fetcher, writer, nil, nil, 3)

	path, _, err := runner.Run(context.Background(), models.NewSession(base))

	require.ErrorIs(t, err, auction.ErrMetadata)
	assert.Empty(t, path)
	assert.Empty(t, writer.writes)
}

func TestRunFlushFailure(t *testing.T) {
	base := "https://hibid.com/catalog/12/full-disk"
	fetcher := &stubFetcher{pages: map[string]string{
		base + "?apage=1&s=HOT_RANK": auctionPage("Gold Coin"),
		base + "?apage=2&s=HOT_RANK": auctionPage(),
	}}

	writer := &captureWriter{err: fmt.Errorf("disk full")}
	runner := newTestRunner(t, fetcher, writer, nil, nil, 3)

	_, _, err := runner.Run(context.Background(), models.NewSession(base))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write report")
}
