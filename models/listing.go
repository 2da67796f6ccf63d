package models

// Listing is one row of the input dataset: a marketplace posting to be
// evaluated for stolen-goods suspicion. Identified uniquely by ListingURL.
type Listing struct {
	ListingURL string
	PhotoURL   string
	Title      string
	Category   string
	Price      string
	Location   string

	// HumanLabel is the annotator's verdict ("yes"/"no") when the input
	// carries a `label` column; empty otherwise.
	HumanLabel string
}

// Evaluation is one row of the output dataset: the original listing fields
// plus the model's rubric scores and usage counters. Rubric fields stay as
// strings because the model may emit values that do not parse as integers;
// such fields hold the "N/A" sentinel instead.
type Evaluation struct {
	Listing

	ModelName         string
	Reasoning         string
	PriceSuspicion    string
	ItemBulk          string
	ItemNew           string
	ListingTone       string
	MentionsRetailer  string
	OverallLikelihood string
	Stolen            string
	Timestamp         string
	PromptTokens      int
	CompletionTokens  int
	TotalTokens       int
}

// TriageReport holds the computed analytics over the accumulated evaluations.
type TriageReport struct {
	TotalEvaluations  int
	StolenYes         int
	StolenNo          int
	StolenUnscored    int
	AverageLikelihood float64
	MostSuspicious    *Evaluation

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	EvaluationsByLocation map[string]int

	// Human-vs-AI agreement, counted only over rows that carry both a
	// human label and a derived verdict.
	Compared      int
	Agreements    int
	FalsePositive int // model yes, human no
	FalseNegative int // model no, human yes
}
