package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/smartspend/smartspend/internal/store"
)

// GeminiInsights asks Gemini for three short insights about a month's
// numbers. It implements InsightGenerator; the Reporter supplies the canned
// fallback on any failure.
type GeminiInsights struct {
	client *genai.Client
	model  string
}

// NewGeminiInsights builds a generator on an existing client.
func NewGeminiInsights(client *genai.Client, model string) *GeminiInsights {
	return &GeminiInsights{client: client, model: model}
}

// Insights implements InsightGenerator.
func (g *GeminiInsights) Insights(ctx context.Context, stats *store.MonthlyStats, month time.Time) ([]string, error) {
	var categories []string
	for c, v := range stats.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %.2f", c, v))
	}

	prompt := "Analyze this monthly financial summary and provide exactly 3 concise, " +
		"actionable insights in plain language.\n\n" +
		"Month: " + month.Format("January 2006") + "\n" +
		fmt.Sprintf("Total income: %.2f\nTotal expenses: %.2f\n", stats.TotalIncome, stats.TotalExpenses) +
		"Expenses by category: " + strings.Join(categories, ", ") + "\n\n" +
		"Return ONLY a raw JSON array of 3 strings.\n" +
		"Do NOT wrap the response in code fences."

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var out []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return nil, fmt.Errorf("decoding insights: %w", err)
	}
	return out, nil
}
