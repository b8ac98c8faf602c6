package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/smartspend/smartspend/internal/catalog"
)

// GeminiClassifier asks Gemini for category assignments. It implements
// Classifier; the Resolver handles validation and every failure mode, so
// this type only needs to get an answer back.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	cat    *catalog.Catalog
}

// NewGeminiClassifier creates a classifier backed by the given model.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, cat *catalog.Catalog) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model, cat: cat}, nil
}

// Classify asks the model for a single category identifier.
func (g *GeminiClassifier) Classify(ctx context.Context, description string) (string, error) {
	prompt := "Classify this financial transaction into one of these categories:\n" +
		strings.Join(g.cat.IDs(), ", ") + "\n\n" +
		"Transaction description: " + description + "\n\n" +
		"Respond with ONLY the category identifier, nothing else.\n" +
		"If none fits, respond with \"" + catalog.Sentinel + "\"."

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}

// ClassifyBatch asks the model to categorize a whole preview batch in one
// call and returns the category names in item order.
func (g *GeminiClassifier) ClassifyBatch(ctx context.Context, items []BatchItem) ([]string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}

	var names []string
	for _, c := range g.cat.Categories() {
		names = append(names, c.Name)
	}

	prompt := "You are a transaction categorizer. For each transaction below, " +
		"pick the best matching category name from this list:\n" +
		strings.Join(names, ", ") + "\n\n" +
		"Transactions (JSON array):\n" + string(payload) + "\n\n" +
		"Return ONLY a raw JSON array of category name strings, one per " +
		"transaction, in the same order.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Output must begin with \"[\" and end with \"]\"."

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out []string
	if err := json.Unmarshal([]byte(cleanModelJSON(text)), &out); err != nil {
		return nil, fmt.Errorf("decoding batch response: %w", err)
	}
	if len(out) != len(items) {
		return nil, fmt.Errorf("model returned %d categories for %d items", len(out), len(items))
	}
	return out, nil
}

func (g *GeminiClassifier) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// cleanModelJSON strips Markdown code fences the model sometimes adds despite
// instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
