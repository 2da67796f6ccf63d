package services

import (
	"strings"
	"unicode"

	"listing-triage/models"
	"listing-triage/utils"
)

// Cleaner validates and normalizes input listings before the driver runs.
// It drops rows without a listing identifier and deduplicates on it; the
// price field is passed through untouched (it may be a "Free" sentinel
// rather than a number, and the prompt wants the raw text anyway).
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns the listings that are usable for evaluation.
func (c *Cleaner) Clean(raw []*models.Listing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.ListingURL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty listing_url: %s", r.Title)
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate listing_url skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		result = append(result, &models.Listing{
			ListingURL: url,
			PhotoURL:   strings.TrimSpace(r.PhotoURL),
			Title:      normaliseText(r.Title),
			Category:   normaliseText(r.Category),
			Price:      strings.TrimSpace(r.Price),
			Location:   normaliseText(r.Location),
			HumanLabel: strings.ToLower(strings.TrimSpace(r.HumanLabel)),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
