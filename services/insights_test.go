package services

import (
	"testing"

	"listing-triage/models"
	"listing-triage/utils"
)

func sampleEvaluations() []*models.Evaluation {
	mk := func(n, likelihood, stolen, location string, tokens int) *models.Evaluation {
		return &models.Evaluation{
			Listing: models.Listing{
				ListingURL: "https://marketplace/item/" + n,
				Title:      "Item " + n,
				Location:   location,
			},
			OverallLikelihood: likelihood,
			Stolen:            stolen,
			ModelName:         "gemma-3-27b-it",
			PromptTokens:      tokens,
			CompletionTokens:  tokens / 2,
			TotalTokens:       tokens + tokens/2,
		}
	}
	return []*models.Evaluation{
		mk("1", "9", "yes", "Albany, GA", 100),
		mk("2", "2", "no", "Albany, GA", 100),
		mk("3", "7", "yes", "Macon, GA", 100),
		mk("4", "N/A", "N/A", "Macon, GA", 100),
	}
}

func sampleLabeledListings() []*models.Listing {
	return []*models.Listing{
		{ListingURL: "https://marketplace/item/1", HumanLabel: "yes"},
		{ListingURL: "https://marketplace/item/2", HumanLabel: "yes"},
		{ListingURL: "https://marketplace/item/3", HumanLabel: ""},
	}
}

func TestTriageVerdictCounts(t *testing.T) {
	svc := NewTriageService(utils.NewLogger())
	r := svc.Generate(sampleEvaluations(), nil)

	if r.TotalEvaluations != 4 {
		t.Errorf("TotalEvaluations = %d; want 4", r.TotalEvaluations)
	}
	if r.StolenYes != 2 || r.StolenNo != 1 || r.StolenUnscored != 1 {
		t.Errorf("verdicts = %d/%d/%d; want 2/1/1", r.StolenYes, r.StolenNo, r.StolenUnscored)
	}
}

func TestTriageLikelihoodStats(t *testing.T) {
	svc := NewTriageService(utils.NewLogger())
	r := svc.Generate(sampleEvaluations(), nil)

	if want := 6.0; r.AverageLikelihood != want { // (9+2+7)/3
		t.Errorf("AverageLikelihood = %.2f; want %.2f", r.AverageLikelihood, want)
	}
	if r.MostSuspicious == nil || r.MostSuspicious.Title != "Item 1" {
		t.Errorf("MostSuspicious should be the likelihood-9 listing")
	}
}

func TestTriageTokenTotals(t *testing.T) {
	svc := NewTriageService(utils.NewLogger())
	r := svc.Generate(sampleEvaluations(), nil)

	if r.PromptTokens != 400 || r.CompletionTokens != 200 || r.TotalTokens != 600 {
		t.Errorf("tokens = %d/%d/%d; want 400/200/600",
			r.PromptTokens, r.CompletionTokens, r.TotalTokens)
	}
}

func TestTriageAgreement(t *testing.T) {
	svc := NewTriageService(utils.NewLogger())
	r := svc.Generate(sampleEvaluations(), sampleLabeledListings())

	// Item 1: both yes. Item 2: model no, human yes. Item 3: no human label.
	// Item 4: no derived verdict.
	if r.Compared != 2 {
		t.Errorf("Compared = %d; want 2", r.Compared)
	}
	if r.Agreements != 1 {
		t.Errorf("Agreements = %d; want 1", r.Agreements)
	}
	if r.FalseNegative != 1 || r.FalsePositive != 0 {
		t.Errorf("FN/FP = %d/%d; want 1/0", r.FalseNegative, r.FalsePositive)
	}
}

func TestTriageByLocation(t *testing.T) {
	svc := NewTriageService(utils.NewLogger())
	r := svc.Generate(sampleEvaluations(), nil)

	if r.EvaluationsByLocation["Albany, GA"] != 2 || r.EvaluationsByLocation["Macon, GA"] != 2 {
		t.Errorf("EvaluationsByLocation = %v", r.EvaluationsByLocation)
	}
}

func TestTriageEmptyInput(t *testing.T) {
	svc := NewTriageService(utils.NewLogger())
	r := svc.Generate(nil, nil)

	if r.TotalEvaluations != 0 || r.MostSuspicious != nil {
		t.Errorf("empty input should yield a zero report: %+v", r)
	}
}
