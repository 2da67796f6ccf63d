package storage

import "listing-triage/models"

// EvaluationFetcher is the interface the triage report reads accumulated
// evaluations from, whichever backend holds them.
type EvaluationFetcher interface {
	FetchAll() ([]*models.Evaluation, error)
}
