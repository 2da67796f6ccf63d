package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Result holds the model's free-text reply and the token usage the API
// reported for the request.
type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Invoker sends one vision request per call. The SDK client is created per
// request and seeded with whichever credential the rotation picked, so each
// outbound call can use a different API key.
type Invoker struct{}

// NewInvoker creates an Invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Generate sends the JPEG image and prompt to the named model using the
// given API key and returns the raw text reply plus token usage.
func (i *Invoker) Generate(ctx context.Context, apiKey, modelName string, image []byte, prompt string) (*Result, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", image),
		genai.Text(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: empty response from %s", modelName)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	res := &Result{Text: strings.TrimSpace(sb.String())}
	if usage := resp.UsageMetadata; usage != nil {
		res.PromptTokens = int(usage.PromptTokenCount)
		res.CompletionTokens = int(usage.CandidatesTokenCount)
		res.TotalTokens = int(usage.TotalTokenCount)
	}
	return res, nil
}
