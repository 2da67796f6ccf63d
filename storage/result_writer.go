package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"listing-triage/models"
	"listing-triage/utils"
)

// resultHeader is the exact output schema: every input column followed by
// the model-generated columns. An existing file whose header differs is
// reinitialized, which discards its resume state.
var resultHeader = []string{
	"listing_url", "photo_url", "title", "category", "price", "location",
	"model_name", "reasoning",
	"price_suspicion", "item_bulk", "item_new", "listing_tone", "mentions_retailer",
	"overall_likelihood", "stolen", "timestamp",
	"prompt_tokens", "completion_tokens", "total_tokens",
}

// ResultWriter is the resumable evaluation sink. On open it scans any
// existing output file and remembers which listing identifiers are already
// present; each evaluation is then appended and flushed as a single row so
// partial progress survives a crash.
type ResultWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	seen   *utils.IDSet
	logger *utils.Logger
}

// NewResultWriter opens (or initializes) the output CSV at the given path.
// Intermediate directories are created automatically.
func NewResultWriter(path string, logger *utils.Logger) (*ResultWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("results: create output dir: %w", err)
	}

	rw := &ResultWriter{seen: utils.NewIDSet(), logger: logger}

	resumable, err := rw.loadExisting(path)
	if err != nil {
		return nil, err
	}

	if resumable {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("results: open %q for append: %w", path, err)
		}
		rw.file = f
		rw.writer = csv.NewWriter(f)
		logger.Info("[results] Resuming %s — %d listings already evaluated", path, rw.seen.Size())
		return rw, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("results: create %q: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("results: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("results: flush header: %w", err)
	}

	rw.file = f
	rw.writer = w
	return rw, nil
}

// loadExisting reads the current output file, if any, and fills the
// processed-ID set. It reports whether the file can be appended to: a
// missing file or a header that does not exactly match resultHeader means
// the sink must be (re)initialized.
func (rw *ResultWriter) loadExisting(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("results: open existing %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		rw.logger.Warn("[results] Existing output %s is unreadable (%v) — reinitializing", path, err)
		return false, nil
	}
	if !headerMatches(header) {
		rw.logger.Warn("[results] Header of %s does not match the expected schema — reinitializing; prior rows can no longer be resumed against", path)
		return false, nil
	}

	for {
		record, err := r.Read()
		if err != nil {
			// A truncated final row from an interrupted run ends the scan;
			// everything read so far still counts as processed.
			break
		}
		if len(record) > 0 && record[0] != "" {
			rw.seen.Add(record[0])
		}
	}

	return true, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(resultHeader) {
		return false
	}
	for i, col := range resultHeader {
		if header[i] != col {
			return false
		}
	}
	return true
}

// Seen reports whether an evaluation for this listing identifier is already
// present in the sink. The set is computed once at open and updated by
// Append; it is never re-read from disk during a run.
func (rw *ResultWriter) Seen(listingURL string) bool {
	return rw.seen.Contains(listingURL)
}

// Processed returns how many distinct listings the sink holds.
func (rw *ResultWriter) Processed() int {
	return rw.seen.Size()
}

// Append writes one evaluation row and flushes it immediately.
func (rw *ResultWriter) Append(ev *models.Evaluation) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if err := rw.writer.Write(evaluationToRecord(ev)); err != nil {
		return fmt.Errorf("results: write row: %w", err)
	}
	rw.writer.Flush()
	if err := rw.writer.Error(); err != nil {
		return fmt.Errorf("results: flush row: %w", err)
	}

	rw.seen.Add(ev.ListingURL)
	return nil
}

// Close flushes and closes the underlying file.
func (rw *ResultWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.writer.Flush()
	return rw.file.Close()
}

func evaluationToRecord(ev *models.Evaluation) []string {
	return []string{
		ev.ListingURL, ev.PhotoURL, ev.Title, ev.Category, ev.Price, ev.Location,
		ev.ModelName, ev.Reasoning,
		ev.PriceSuspicion, ev.ItemBulk, ev.ItemNew, ev.ListingTone, ev.MentionsRetailer,
		ev.OverallLikelihood, ev.Stolen, ev.Timestamp,
		strconv.Itoa(ev.PromptTokens), strconv.Itoa(ev.CompletionTokens), strconv.Itoa(ev.TotalTokens),
	}
}

func recordToEvaluation(record []string) *models.Evaluation {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return &models.Evaluation{
		Listing: models.Listing{
			ListingURL: record[0],
			PhotoURL:   record[1],
			Title:      record[2],
			Category:   record[3],
			Price:      record[4],
			Location:   record[5],
		},
		ModelName:         record[6],
		Reasoning:         record[7],
		PriceSuspicion:    record[8],
		ItemBulk:          record[9],
		ItemNew:           record[10],
		ListingTone:       record[11],
		MentionsRetailer:  record[12],
		OverallLikelihood: record[13],
		Stolen:            record[14],
		Timestamp:         record[15],
		PromptTokens:      atoi(record[16]),
		CompletionTokens:  atoi(record[17]),
		TotalTokens:       atoi(record[18]),
	}
}
