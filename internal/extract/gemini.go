package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// DefaultModelName is the default Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

// GeminiExtractor is the concrete Extractor backed by the Gemini API.
type GeminiExtractor struct {
	model      string
	categories CategorySource
}

// NewGeminiExtractor creates an extractor using the given model name, or
// DefaultModelName when empty. The category source may be nil; the prompt
// then falls back to the "Other" bucket only.
func NewGeminiExtractor(model string, categories CategorySource) *GeminiExtractor {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiExtractor{model: model, categories: categories}
}

// ExtractTransactions implements Extractor. It sends the email text to
// Gemini, expects a STRICT JSON array of transaction objects back, and
// normalizes the result into pending domain transactions.
func (e *GeminiExtractor) ExtractTransactions(ctx context.Context, emailText string) ([]domain.Transaction, error) {
	prompt, err := e.buildPrompt(ctx, emailText)
	if err != nil {
		return nil, fmt.Errorf("ExtractTransactions: building prompt: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ExtractTransactions: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("ExtractTransactions: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ExtractTransactions: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed []interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("ExtractTransactions: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	return transformCandidates(parsed)
}

// buildPrompt assembles the extraction instructions, quoting the ledger's
// category taxonomy when one is available.
func (e *GeminiExtractor) buildPrompt(ctx context.Context, emailText string) (string, error) {
	var b strings.Builder

	b.WriteString("You are an expert financial data analyst.\n")
	b.WriteString("Analyze the bank transaction alert email below and extract every transaction it describes.\n\n")
	b.WriteString("Each object must have these fields:\n")
	b.WriteString("- \"transactionDate\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"amount\": number (always positive)\n")
	b.WriteString("- \"type\": string, one of \"Credit\", \"Debit\", \"Investment\"\n")
	b.WriteString("- \"description\": string (merchant or a relevant summary)\n")
	b.WriteString("- \"category\": string (one of the predefined categories below)\n")
	b.WriteString("- \"cardLast4\": string of 4 digits, or null when the email names no card\n\n")

	if e.categories != nil {
		cats, err := e.categories.ListCategories(ctx)
		if err != nil {
			return "", fmt.Errorf("buildPrompt: list categories: %w", err)
		}
		b.WriteString("Use ONLY the following categories:\n")
		for _, c := range cats {
			b.WriteString("  - " + c + "\n")
		}
		b.WriteString("If none fits, use \"Other\".\n\n")
	} else {
		b.WriteString("Use \"Other\" as the category.\n\n")
	}

	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n\n")
	b.WriteString("Email:\n\"\"\"\n")
	b.WriteString(emailText)
	b.WriteString("\n\"\"\"\n")

	return b.String(), nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the formatting instructions.
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

	s = strings.TrimSpace(s)

	// Keep only from the first '[' to the last ']' if junk remains.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

var _ Extractor = (*GeminiExtractor)(nil)
