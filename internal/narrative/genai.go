package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"finsight/internal/analytics"
)

// DefaultModelName is the Gemini model used for narrative generation.
const DefaultModelName = "gemini-2.5-flash"

// GenAIClient is the slice of the genai SDK the storyteller needs; defined
// here so tests can substitute a canned responder.
type GenAIClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiStoryteller generates narratives with a hosted Gemini model. It
// implements both Storyteller and Advisor; text quality is a collaborator
// concern, the engine only requires well-formed keyed output.
type GeminiStoryteller struct {
	client GenAIClient
	model  string
}

// NewGeminiStoryteller creates a Gemini-backed storyteller. Credentials and
// Vertex-versus-Developer routing come from the standard GOOGLE_GENAI
// environment variables.
func NewGeminiStoryteller(ctx context.Context, model string) (*GeminiStoryteller, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiStoryteller{client: client.Models, model: model}, nil
}

// NewGeminiStorytellerWithClient wires an explicit client, used by tests.
func NewGeminiStorytellerWithClient(client GenAIClient, model string) *GeminiStoryteller {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiStoryteller{client: client, model: model}
}

// Tell asks the model for one narrative per metric plus an overall story,
// as strict JSON keyed by the metric identifiers.
func (g *GeminiStoryteller) Tell(ctx context.Context, analyses []analytics.RootCauseAnalysis, insights, actions []string) (Set, string, error) {
	payload, err := json.Marshal(map[string]any{
		"analyses":         analyses,
		"overall_insights": insights,
		"priority_actions": actions,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal analysis payload: %w", err)
	}

	keys := make([]string, 0, len(analyses))
	for _, a := range analyses {
		keys = append(keys, a.Metric.Key())
	}

	prompt := "You are a financial data storyteller for a small-business dashboard.\n\n" +
		"Task:\n" +
		"- Read the attached root-cause analysis JSON.\n" +
		"- Write a plain-English narrative for each metric, grounded only in the numbers provided.\n" +
		"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n" +
		"The output object must have these fields:\n" +
		"- \"narratives\": object keyed by exactly " + strings.Join(keys, ", ") + ";\n" +
		"  each value an object with \"narrative\" (string), \"key_insights\" (array of strings),\n" +
		"  \"actionable_recommendations\" (array of strings), \"business_impact\" (string)\n" +
		"- \"overall_business_story\": string\n\n" +
		"Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n"

	raw, err := g.generate(ctx, prompt, payload)
	if err != nil {
		return nil, "", err
	}

	var out struct {
		Narratives           Set    `json:"narratives"`
		OverallBusinessStory string `json:"overall_business_story"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, "", fmt.Errorf("unmarshal narrative response: %w", err)
	}
	for _, key := range keys {
		if _, ok := out.Narratives[key]; !ok {
			return nil, "", fmt.Errorf("narrative response missing metric %q", key)
		}
	}
	return out.Narratives, out.OverallBusinessStory, nil
}

// Advise asks the model for one prioritized recommendation per metric.
func (g *GeminiStoryteller) Advise(ctx context.Context, analyses []analytics.RootCauseAnalysis, narratives Set) (Advice, error) {
	payload, err := json.Marshal(map[string]any{
		"analyses":   analyses,
		"narratives": narratives,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal advisor payload: %w", err)
	}

	keys := make([]string, 0, len(analyses))
	for _, a := range analyses {
		keys = append(keys, a.Metric.Key())
	}

	prompt := "You are a financial advisor for a small business.\n\n" +
		"Task:\n" +
		"- Read the attached analyses and narratives.\n" +
		"- Produce exactly one concrete, prioritized recommendation per metric.\n" +
		"- Output STRICT JSON only: an object keyed by exactly " + strings.Join(keys, ", ") + ",\n" +
		"  each value a single recommendation string.\n" +
		"Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n"

	raw, err := g.generate(ctx, prompt, payload)
	if err != nil {
		return nil, err
	}

	var advice Advice
	if err := json.Unmarshal([]byte(raw), &advice); err != nil {
		return nil, fmt.Errorf("unmarshal advisor response: %w", err)
	}
	return advice, nil
}

func (g *GeminiStoryteller) generate(ctx context.Context, prompt string, payload []byte) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{Text: string(payload)},
			},
		},
	}

	resp, err := g.client.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return cleanModelJSON(raw), nil
}

// cleanModelJSON strips Markdown fences when the model ignores the raw-JSON
// instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
