package pricing

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lotscout/hibid-scanner/internal/models"
)

// Source estimates the resale price of one lot title on a marketplace. It
// never returns an error: every failure collapses into an absent quote so a
// flaky marketplace cannot sink an item.
type Source interface {
	Name() models.Source
	Quote(ctx context.Context, title string) models.Quote
}

var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// meanPrice pulls the first number out of each matched element and averages
// whatever parsed, rounded to cents. Elements without a parseable number are
// skipped; nil means nothing parsed at all.
func meanPrice(sel *goquery.Selection) *float64 {
	var sum float64
	var count int

	sel.Each(func(_ int, s *goquery.Selection) {
		match := numberPattern.FindString(s.Text())
		if match == "" {
			return
		}
		value, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return
		}
		sum += value
		count++
	})

	if count == 0 {
		return nil
	}

	mean := round2(sum / float64(count))
	return &mean
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// searchQuery encodes a lot title the way both marketplace search URLs
// expect it.
func searchQuery(title string) string {
	return strings.ReplaceAll(title, " ", "+")
}
