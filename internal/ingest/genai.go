package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"finsight/internal/analytics"
)

// GenAIClient is the slice of the genai SDK the categorizer needs.
type GenAIClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCategorizer assigns categories with a hosted Gemini model,
// constrained to the configured category names. Transactions that already
// carry a category are never sent to the model.
type GeminiCategorizer struct {
	client     GenAIClient
	model      string
	categories []string
}

// NewGeminiCategorizer creates a Gemini-backed categorizer. Credentials
// come from the standard GOOGLE_GENAI environment variables.
func NewGeminiCategorizer(ctx context.Context, model string, categories []string) (*GeminiCategorizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return NewGeminiCategorizerWithClient(client.Models, model, categories), nil
}

// NewGeminiCategorizerWithClient wires an explicit client, used by tests.
func NewGeminiCategorizerWithClient(client GenAIClient, model string, categories []string) *GeminiCategorizer {
	if len(categories) == 0 {
		for _, rule := range defaultKeywordRules() {
			categories = append(categories, rule.Category)
		}
	}
	return &GeminiCategorizer{client: client, model: model, categories: categories}
}

// Categorize sends the uncategorized descriptions to the model in one batch
// and folds the assignments back in. Descriptions the model skips or labels
// outside the allowed set fall back to Uncategorized.
func (c *GeminiCategorizer) Categorize(ctx context.Context, txns []analytics.Transaction) ([]analytics.Transaction, error) {
	out := make([]analytics.Transaction, len(txns))
	copy(out, txns)

	var pending []string
	seen := make(map[string]struct{})
	for _, t := range out {
		if t.Category != "" {
			continue
		}
		if _, ok := seen[t.Description]; ok {
			continue
		}
		seen[t.Description] = struct{}{}
		pending = append(pending, t.Description)
	}
	if len(pending) == 0 {
		return out, nil
	}

	assignments, err := c.assign(ctx, pending)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Category != "" {
			continue
		}
		category, ok := assignments[out[i].Description]
		if !ok || !c.allowed(category) {
			category = UncategorizedCategory
		}
		out[i].Category = category
	}
	return out, nil
}

func (c *GeminiCategorizer) assign(ctx context.Context, descriptions []string) (map[string]string, error) {
	payload, err := json.Marshal(descriptions)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptions: %w", err)
	}

	var b strings.Builder
	b.WriteString("You categorize bank transaction descriptions for a small business.\n\n")
	b.WriteString("Use ONLY the following categories:\n")
	for _, cat := range c.categories {
		b.WriteString("  - " + cat + "\n")
	}
	b.WriteString("  - " + UncategorizedCategory + "\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. The category must be EXACTLY one of the names above.\n")
	b.WriteString("2. If you are unsure, use \"" + UncategorizedCategory + "\".\n")
	b.WriteString("3. Output STRICT JSON only: an object mapping each input description to its category.\n")
	b.WriteString("4. Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: b.String()},
				{Text: string(payload)},
			},
		},
	}

	resp, err := c.client.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	raw = stripJSONFences(raw)

	var assignments map[string]string
	if err := json.Unmarshal([]byte(raw), &assignments); err != nil {
		return nil, fmt.Errorf("unmarshal category response: %w", err)
	}
	return assignments, nil
}

func (c *GeminiCategorizer) allowed(category string) bool {
	for _, cat := range c.categories {
		if cat == category {
			return true
		}
	}
	return false
}

// stripJSONFences removes Markdown fences when the model ignores the
// raw-JSON instruction.
func stripJSONFences(s string) string {
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
