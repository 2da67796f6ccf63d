package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"listing-triage/models"
	"listing-triage/utils"
)

// TriageService computes and prints analytics over accumulated evaluations:
// verdict distribution, token spend, geography, and — when the input CSV
// carried a human `label` column — human-vs-AI agreement.
type TriageService struct {
	logger *utils.Logger
}

func NewTriageService(logger *utils.Logger) *TriageService {
	return &TriageService{logger: logger}
}

// Generate builds a TriageReport over the evaluations. Human labels are
// joined in from the input listings by listing_url, since the output schema
// does not carry them.
func (s *TriageService) Generate(evals []*models.Evaluation, listings []*models.Listing) *models.TriageReport {
	report := &models.TriageReport{
		EvaluationsByLocation: make(map[string]int),
	}

	if len(evals) == 0 {
		return report
	}

	labels := make(map[string]string, len(listings))
	for _, l := range listings {
		if l.HumanLabel != "" {
			labels[l.ListingURL] = l.HumanLabel
		}
	}

	report.TotalEvaluations = len(evals)

	var likelihoodSum, likelihoodCount int
	var maxLikelihood int

	for _, ev := range evals {
		switch ev.Stolen {
		case "yes":
			report.StolenYes++
		case "no":
			report.StolenNo++
		default:
			report.StolenUnscored++
		}

		if n, err := strconv.Atoi(ev.OverallLikelihood); err == nil {
			likelihoodSum += n
			likelihoodCount++
			if report.MostSuspicious == nil || n > maxLikelihood {
				maxLikelihood = n
				report.MostSuspicious = ev
			}
		}

		report.PromptTokens += ev.PromptTokens
		report.CompletionTokens += ev.CompletionTokens
		report.TotalTokens += ev.TotalTokens

		if ev.Location != "" {
			report.EvaluationsByLocation[ev.Location]++
		}

		human, ok := labels[ev.ListingURL]
		if !ok || (ev.Stolen != "yes" && ev.Stolen != "no") {
			continue
		}
		report.Compared++
		switch {
		case human == ev.Stolen:
			report.Agreements++
		case ev.Stolen == "yes":
			report.FalsePositive++
		default:
			report.FalseNegative++
		}
	}

	if likelihoodCount > 0 {
		report.AverageLikelihood = round2(float64(likelihoodSum) / float64(likelihoodCount))
	}

	return report
}

// Print renders the report to stdout for the operator.
func (s *TriageService) Print(r *models.TriageReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🔎 LISTING TRIAGE REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Verdicts\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Evaluated listings : \033[1m%d\033[0m\n", r.TotalEvaluations)
	fmt.Printf("  Flagged stolen     : \033[1;31m%d\033[0m\n", r.StolenYes)
	fmt.Printf("  Not suspicious     : \033[1;32m%d\033[0m\n", r.StolenNo)
	if r.StolenUnscored > 0 {
		fmt.Printf("  Unscored           : %d\n", r.StolenUnscored)
	}
	if r.AverageLikelihood > 0 {
		fmt.Printf("  Average likelihood : \033[1m%.2f\033[0m / 10\n", r.AverageLikelihood)
	}
	fmt.Println()

	if r.MostSuspicious != nil {
		fmt.Printf("\033[1;33m  Most Suspicious Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostSuspicious.Title, 50))
		fmt.Printf("  Location   : %s\n", r.MostSuspicious.Location)
		fmt.Printf("  Likelihood : \033[1;31m%s/10\033[0m (model: %s)\n",
			r.MostSuspicious.OverallLikelihood, r.MostSuspicious.ModelName)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Token Usage\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Prompt     : %d\n", r.PromptTokens)
	fmt.Printf("  Completion : %d\n", r.CompletionTokens)
	fmt.Printf("  Total      : \033[1m%d\033[0m\n", r.TotalTokens)
	fmt.Println()

	fmt.Printf("\033[1;33m  Human vs AI Agreement\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.Compared == 0 {
		fmt.Printf("  No human-labeled listings to compare against\n")
	} else {
		pct := 100 * float64(r.Agreements) / float64(r.Compared)
		fmt.Printf("  Compared listings : %d\n", r.Compared)
		fmt.Printf("  Agreement         : \033[1m%.1f%%\033[0m (%d/%d)\n", pct, r.Agreements, r.Compared)
		fmt.Printf("  Model yes, human no : %d\n", r.FalsePositive)
		fmt.Printf("  Model no, human yes : %d\n", r.FalseNegative)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Evaluations by Location\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.EvaluationsByLocation) == 0 {
		fmt.Printf("  No location data\n")
	} else {
		type locCount struct {
			loc   string
			count int
		}
		var locs []locCount
		for loc, cnt := range r.EvaluationsByLocation {
			locs = append(locs, locCount{loc, cnt})
		}
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].count != locs[j].count {
				return locs[i].count > locs[j].count
			}
			return locs[i].loc < locs[j].loc
		})
		for _, lc := range locs {
			bar := strings.Repeat("█", lc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(lc.loc, 28), bar, lc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
