package pipeline

import (
	"strconv"
	"strings"
	"time"
)

// NotAvailable is the sentinel for rubric fields the model never supplied
// or supplied in a form the parser could not recognize.
const NotAvailable = "N/A"

// stolenThreshold is the overall-likelihood score (on the 1-10 scale) at or
// above which a listing is classified as stolen.
const stolenThreshold = 7

const timestampLayout = "2006-01-02T15:04:05Z"

// Rubric holds the fields extracted from the model's free-text reply.
type Rubric struct {
	Reasoning         string
	PriceSuspicion    string
	ItemBulk          string
	ItemNew           string
	ListingTone       string
	MentionsRetailer  string
	OverallLikelihood string
	Stolen            string
	Timestamp         string
}

// rubricLabels maps the recognized line prefixes to their rubric fields,
// in the order the reply format lists them. Matching tries prefixes in this
// order and stops at the first hit.
var rubricLabels = []struct {
	prefix string
	field  func(*Rubric) *string
}{
	{"reasoning", func(r *Rubric) *string { return &r.Reasoning }},
	{"price raises suspicion", func(r *Rubric) *string { return &r.PriceSuspicion }},
	{"item is bulk", func(r *Rubric) *string { return &r.ItemBulk }},
	{"item is new", func(r *Rubric) *string { return &r.ItemNew }},
	{"listing tone", func(r *Rubric) *string { return &r.ListingTone }},
	{"mentions retailer", func(r *Rubric) *string { return &r.MentionsRetailer }},
	{"overall likelihood shoplifted", func(r *Rubric) *string { return &r.OverallLikelihood }},
	{"stolen", func(r *Rubric) *string { return &r.Stolen }},
	{"timestamp", func(r *Rubric) *string { return &r.Timestamp }},
}

// ParseResponse extracts the rubric fields from the model's reply by
// case-insensitive line-prefix matching; the value is the text after the
// first colon, trimmed. Lines may appear in any order. Fields never matched
// keep the NotAvailable sentinel, and when two lines carry the same label
// the last one wins.
func ParseResponse(text string) Rubric {
	r := Rubric{
		Reasoning:         NotAvailable,
		PriceSuspicion:    NotAvailable,
		ItemBulk:          NotAvailable,
		ItemNew:           NotAvailable,
		ListingTone:       NotAvailable,
		MentionsRetailer:  NotAvailable,
		OverallLikelihood: NotAvailable,
		Stolen:            NotAvailable,
		Timestamp:         NotAvailable,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		low := strings.ToLower(line)
		for _, label := range rubricLabels {
			if !strings.HasPrefix(low, label.prefix) {
				continue
			}
			if _, value, found := strings.Cut(line, ":"); found {
				*label.field(&r) = strings.TrimSpace(value)
			}
			break
		}
	}

	return r
}

// DeriveVerdict finalizes the stolen verdict and timestamp in place. When
// the overall likelihood parses as an integer, the threshold verdict
// overrides whatever stolen line the model supplied; otherwise the parsed
// value (or sentinel) stands. A sentinel timestamp is replaced with the
// current UTC time; a model-supplied one passes through unvalidated.
func DeriveVerdict(r *Rubric, now time.Time) {
	if n, err := strconv.Atoi(r.OverallLikelihood); err == nil {
		if n >= stolenThreshold {
			r.Stolen = "yes"
		} else {
			r.Stolen = "no"
		}
	}
	if r.Timestamp == NotAvailable {
		r.Timestamp = now.UTC().Format(timestampLayout)
	}
}
