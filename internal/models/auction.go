package models

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceEbay  Source = "ebay"
	SourceYahoo Source = "yahoo"
)

// Quote is one marketplace's price signal for a lot title. Value is nil when
// the source produced no usable number (transport failure, parse failure or
// zero results).
type Quote struct {
	Source Source   `json:"source"`
	Value  *float64 `json:"value,omitempty"`
}

func (q Quote) Present() bool {
	return q.Value != nil
}

type Record struct {
	Title    string   `json:"title"`
	Ebay     *float64 `json:"ebay_price,omitempty"`
	Yahoo    *float64 `json:"yahoo_price,omitempty"`
	Estimate *float64 `json:"weighted_estimate,omitempty"`
}

func (r Record) HasEstimate() bool {
	return r.Estimate != nil
}

type Page struct {
	Number int
	Titles []string
}

// Session is one scan run. The auction metadata arrives only once the first
// page has been parsed; the walker writes it while the status API may already
// be reading, hence the lock.
type Session struct {
	RunID     string
	BaseURL   string
	StartedAt time.Time

	mu      sync.RWMutex
	company string
	endDate string
}

func NewSession(baseURL string) *Session {
	return &Session{
		RunID:     uuid.New().String(),
		BaseURL:   baseURL,
		StartedAt: time.Now(),
	}
}

// SetAuction stores the metadata parsed off the first listing page.
func (s *Session) SetAuction(company, endDate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company = company
	s.endDate = endDate
}

// Auction returns the company name and auction end date, both empty until
// the first page has been parsed.
func (s *Session) Auction() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company, s.endDate
}

// ReportName builds "{company}_{endDate}.{ext}" with the date's slashes
// replaced so the name is filesystem safe.
func (s *Session) ReportName(ext string) string {
	company, endDate := s.Auction()
	return company + "_" + strings.ReplaceAll(endDate, "/", "_") + "." + ext
}
