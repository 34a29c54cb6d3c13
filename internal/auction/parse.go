package auction

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMetadata means the first listing page did not carry the company name or
// the auction date range. The report filename is built from both, so a walk
// cannot continue without them.
var ErrMetadata = errors.New("auction metadata not found")

var dateRangePattern = regexp.MustCompile(`Date\(s\)\s*(\d{1,2}/\d{1,2}/\d{4})\s*-\s*(\d{1,2}/\d{1,2}/\d{4})`)

// Metadata is the first-page auction header.
type Metadata struct {
	Company string
	EndDate string
}

// ParseMetadata extracts the auctioneer name and the auction end date from a
// listing page. The date range sits in free paragraph text shaped like
// "Date(s) 1/2/2024 - 1/9/2024"; the second date is the auction end.
func ParseMetadata(doc *goquery.Document) (*Metadata, error) {
	company := strings.TrimSpace(doc.Find("h2.company-name a").First().Text())
	if company == "" {
		return nil, fmt.Errorf("%w: company name missing", ErrMetadata)
	}

	var endDate string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if match := dateRangePattern.FindStringSubmatch(s.Text()); match != nil {
			endDate = match[2]
			return false
		}
		return true
	})
	if endDate == "" {
		return nil, fmt.Errorf("%w: date range missing", ErrMetadata)
	}

	return &Metadata{Company: company, EndDate: endDate}, nil
}

// ParseLotTitles returns the lot titles on a listing page in document order,
// trimmed, with empty entries dropped.
func ParseLotTitles(doc *goquery.Document) []string {
	var titles []string
	doc.Find(".lot-title").Each(func(_ int, s *goquery.Selection) {
		if title := strings.TrimSpace(s.Text()); title != "" {
			titles = append(titles, title)
		}
	})
	return titles
}
