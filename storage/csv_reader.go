package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"listing-triage/models"
)

// requiredColumns are the input columns the pipeline cannot run without.
var requiredColumns = []string{"listing_url", "photo_url", "title", "category", "price", "location"}

// ReadListings loads the input dataset. The column order is free; columns
// are located by header name. An optional `label` column carries the human
// annotator's verdict and is used for the agreement report.
func ReadListings(path string) ([]*models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open input %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read input header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: input %q is missing columns: %s", path, strings.Join(missing, ", "))
	}

	labelIdx, hasLabel := idx["label"]

	field := func(record []string, col string) string {
		i := idx[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var listings []*models.Listing
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read input row: %w", err)
		}

		l := &models.Listing{
			ListingURL: field(record, "listing_url"),
			PhotoURL:   field(record, "photo_url"),
			Title:      field(record, "title"),
			Category:   field(record, "category"),
			Price:      field(record, "price"),
			Location:   field(record, "location"),
		}
		if hasLabel && labelIdx < len(record) {
			l.HumanLabel = strings.TrimSpace(record[labelIdx])
		}
		listings = append(listings, l)
	}

	return listings, nil
}

// ReadEvaluations loads previously written evaluation rows from the output
// CSV, for the post-run report. A missing file yields an empty slice.
func ReadEvaluations(path string) ([]*models.Evaluation, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: open results %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read results header: %w", err)
	}
	if !headerMatches(header) {
		return nil, fmt.Errorf("csv: results file %q has an unexpected header", path)
	}

	var evals []*models.Evaluation
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read results row: %w", err)
		}
		if len(record) != len(resultHeader) {
			continue
		}
		evals = append(evals, recordToEvaluation(record))
	}

	return evals, nil
}
