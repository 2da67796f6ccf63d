package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"listing-triage/config"
	"listing-triage/gemini"
	"listing-triage/models"
	"listing-triage/utils"
)

// ModelCaller is the vision-model boundary: given a credential, a model
// name, image bytes and a prompt, return the model's free-text reply.
type ModelCaller interface {
	Generate(ctx context.Context, apiKey, modelName string, image []byte, prompt string) (*gemini.Result, error)
}

// ResultSink is the resumable output the driver appends evaluations to.
type ResultSink interface {
	Seen(listingURL string) bool
	Append(ev *models.Evaluation) error
}

// Driver orchestrates the per-row evaluation loop: locate the row's image,
// build the prompt, invoke the model through the key ring and bounded
// executor, parse the reply, derive the verdict, append the result, pace.
type Driver struct {
	cfg    *config.Config
	logger *utils.Logger
	caller ModelCaller
	sink   ResultSink

	keys  *utils.KeyRing
	pacer *utils.Pacer
	exec  *utils.Executor
	retry *utils.RetryConfig
}

// NewDriver wires up a Driver from validated configuration. An empty
// credential pool fails here, before any row is touched.
func NewDriver(cfg *config.Config, logger *utils.Logger, caller ModelCaller, sink ResultSink) (*Driver, error) {
	keys, err := utils.NewKeyRing(cfg.APIKeys)
	if err != nil {
		return nil, err
	}

	return &Driver{
		cfg:    cfg,
		logger: logger,
		caller: caller,
		sink:   sink,
		keys:   keys,
		pacer:  utils.NewPacer(cfg.Delay()),
		exec:   utils.NewExecutor(cfg.CallTimeout()),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}, nil
}

// Run processes the input listings in order and returns how many rows were
// evaluated and written this run. Rows already present in the sink are
// filtered out up front; rows without a matching image or whose model call
// fails permanently are skipped without an output row.
func (d *Driver) Run(ctx context.Context, listings []*models.Listing) (int, error) {
	pending := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if d.sink.Seen(l.ListingURL) {
			continue
		}
		pending = append(pending, l)
	}

	d.logger.Info("[driver] %d listings loaded — %d already processed, %d pending",
		len(listings), len(listings)-len(pending), len(pending))

	refs := make([]string, len(pending))
	for i, l := range pending {
		refs[i] = l.PhotoURL
	}
	withImages := CountImages(d.cfg.ImageDir, refs)
	d.logger.Info("[driver] %d/%d pending listings have a matching image under %s",
		withImages, len(pending), d.cfg.ImageDir)

	processed := 0
	for _, l := range pending {
		if d.cfg.MaxToProcess > 0 && processed >= d.cfg.MaxToProcess {
			d.logger.Info("[driver] Row budget of %d reached — stopping", d.cfg.MaxToProcess)
			break
		}

		select {
		case <-ctx.Done():
			return processed, fmt.Errorf("driver: run cancelled: %w", ctx.Err())
		default:
		}

		imgPath, ok := LocateImage(d.cfg.ImageDir, l.PhotoURL)
		if !ok {
			// Data-quality skip: no request was made, so no pacing either.
			d.logger.Warn("[%d] No image file for %s — skipping %s",
				processed+1, filepath.Base(l.PhotoURL), l.ListingURL)
			continue
		}

		image, err := os.ReadFile(imgPath)
		if err != nil {
			d.logger.Warn("[%d] Unreadable image %s: %v — skipping %s",
				processed+1, imgPath, err, l.ListingURL)
			continue
		}

		modelName := d.cfg.VisionModels[processed%len(d.cfg.VisionModels)]
		prompt := BuildPrompt(l.Title, l.Category, l.Price)

		d.logger.Info("[%d] → Using %s for %q [API key index: %d]",
			processed+1, modelName, l.Title, d.keys.Peek())

		res, err := d.invoke(ctx, modelName, image, prompt)
		if err != nil {
			d.logger.Error("[%d] All attempts failed for %s: %v — skipping",
				processed+1, l.ListingURL, err)
			// The request budget was spent even though the row failed.
			d.pacer.Wait()
			continue
		}

		rubric := ParseResponse(res.Text)
		DeriveVerdict(&rubric, time.Now())

		ev := &models.Evaluation{
			Listing:           *l,
			ModelName:         modelName,
			Reasoning:         rubric.Reasoning,
			PriceSuspicion:    rubric.PriceSuspicion,
			ItemBulk:          rubric.ItemBulk,
			ItemNew:           rubric.ItemNew,
			ListingTone:       rubric.ListingTone,
			MentionsRetailer:  rubric.MentionsRetailer,
			OverallLikelihood: rubric.OverallLikelihood,
			Stolen:            rubric.Stolen,
			Timestamp:         rubric.Timestamp,
			PromptTokens:      res.PromptTokens,
			CompletionTokens:  res.CompletionTokens,
			TotalTokens:       res.TotalTokens,
		}

		if err := d.sink.Append(ev); err != nil {
			return processed, fmt.Errorf("driver: append result for %s: %w", l.ListingURL, err)
		}

		d.logger.Info("    ✔ Completed — likelihood: %s, stolen: %s (tokens: %d/%d/%d)",
			ev.OverallLikelihood, ev.Stolen,
			ev.PromptTokens, ev.CompletionTokens, ev.TotalTokens)

		processed++
		d.pacer.Wait()
	}

	d.logger.Info("[driver] Done — processed %d listings this run", processed)
	return processed, nil
}

// invoke runs one model call through the key ring, bounded executor and
// retry policy. Each attempt rotates to the next credential whether or not
// the previous attempt succeeded.
func (d *Driver) invoke(ctx context.Context, modelName string, image []byte, prompt string) (*gemini.Result, error) {
	var res *gemini.Result

	err := d.retry.Do("model call", func() error {
		key, _ := d.keys.Next()

		// attempt is local to this closure: a detached timed-out call can
		// only ever write its own copy, never the one a later attempt reads.
		var attempt *gemini.Result
		runErr := d.exec.Run(func() error {
			r, callErr := d.caller.Generate(ctx, key, modelName, image, prompt)
			if callErr != nil {
				return callErr
			}
			attempt = r
			return nil
		})
		if runErr != nil {
			return runErr
		}

		res = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
