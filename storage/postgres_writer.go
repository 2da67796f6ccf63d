package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"listing-triage/models"
)

// PostgresWriter mirrors the evaluation CSV into PostgreSQL so downstream
// analysis can query it. The listing_url unique constraint makes the sync
// idempotent: re-inserting rows the table already holds is a no-op.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS evaluations (
			id                 SERIAL PRIMARY KEY,
			listing_url        TEXT UNIQUE NOT NULL,
			photo_url          TEXT NOT NULL DEFAULT '',
			title              TEXT NOT NULL DEFAULT '',
			category           TEXT NOT NULL DEFAULT '',
			price              TEXT NOT NULL DEFAULT '',
			location           TEXT NOT NULL DEFAULT '',
			model_name         TEXT NOT NULL DEFAULT '',
			reasoning          TEXT NOT NULL DEFAULT '',
			price_suspicion    TEXT NOT NULL DEFAULT '',
			item_bulk          TEXT NOT NULL DEFAULT '',
			item_new           TEXT NOT NULL DEFAULT '',
			listing_tone       TEXT NOT NULL DEFAULT '',
			mentions_retailer  TEXT NOT NULL DEFAULT '',
			overall_likelihood TEXT NOT NULL DEFAULT '',
			stolen             TEXT NOT NULL DEFAULT '',
			ts                 TEXT NOT NULL DEFAULT '',
			prompt_tokens      INT  NOT NULL DEFAULT 0,
			completion_tokens  INT  NOT NULL DEFAULT 0,
			total_tokens       INT  NOT NULL DEFAULT 0,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_evaluations_stolen   ON evaluations(stolen);
		CREATE INDEX IF NOT EXISTS idx_evaluations_location ON evaluations(location);
		CREATE INDEX IF NOT EXISTS idx_evaluations_model    ON evaluations(model_name);
	`)
	return err
}

// Write batch-inserts evaluations, skipping listings the table already has.
func (pw *PostgresWriter) Write(evals []*models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(evals); i += batchSize {
		end := i + batchSize
		if end > len(evals) {
			end = len(evals)
		}
		if err := pw.insertBatch(evals[i:end]); err != nil {
			return err
		}
	}
	return nil
}

const evalColumns = 19

func (pw *PostgresWriter) insertBatch(batch []*models.Evaluation) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*evalColumns)

	for idx, ev := range batch {
		base := idx * evalColumns
		placeholders := make([]string, evalColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			ev.ListingURL, ev.PhotoURL, ev.Title, ev.Category, ev.Price, ev.Location,
			ev.ModelName, ev.Reasoning,
			ev.PriceSuspicion, ev.ItemBulk, ev.ItemNew, ev.ListingTone, ev.MentionsRetailer,
			ev.OverallLikelihood, ev.Stolen, ev.Timestamp,
			ev.PromptTokens, ev.CompletionTokens, ev.TotalTokens)
	}

	query := fmt.Sprintf(`
		INSERT INTO evaluations (
			listing_url, photo_url, title, category, price, location,
			model_name, reasoning,
			price_suspicion, item_bulk, item_new, listing_tone, mentions_retailer,
			overall_likelihood, stolen, ts,
			prompt_tokens, completion_tokens, total_tokens
		)
		VALUES %s
		ON CONFLICT (listing_url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// FetchAll retrieves all stored evaluations — used by the triage report.
func (pw *PostgresWriter) FetchAll() ([]*models.Evaluation, error) {
	rows, err := pw.db.Query(`
		SELECT listing_url, photo_url, title, category, price, location,
		       model_name, reasoning,
		       price_suspicion, item_bulk, item_new, listing_tone, mentions_retailer,
		       overall_likelihood, stolen, ts,
		       prompt_tokens, completion_tokens, total_tokens
		FROM evaluations
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var evals []*models.Evaluation
	for rows.Next() {
		ev := &models.Evaluation{}
		if err := rows.Scan(
			&ev.ListingURL, &ev.PhotoURL, &ev.Title, &ev.Category, &ev.Price, &ev.Location,
			&ev.ModelName, &ev.Reasoning,
			&ev.PriceSuspicion, &ev.ItemBulk, &ev.ItemNew, &ev.ListingTone, &ev.MentionsRetailer,
			&ev.OverallLikelihood, &ev.Stolen, &ev.Timestamp,
			&ev.PromptTokens, &ev.CompletionTokens, &ev.TotalTokens,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		evals = append(evals, ev)
	}
	return evals, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
