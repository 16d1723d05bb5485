package nl2sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

const (
	NarrationTemperature = 0.3
	SampleSize           = 3
)

var ErrEmptyExplanation = errors.New("no explanation generated")

// Summary is what the narrator sees of an executed query.
type Summary struct {
	Question string
	SQL      string
	RowCount int
	Columns  []string
	Sample   []query.Record
}

// NewSummary keeps the first SampleSize records of the result.
func NewSummary(question, sqlText string, result query.Result) Summary {
	records := result.Records()
	if len(records) > SampleSize {
		records = records[:SampleSize]
	}
	return Summary{
		Question: question,
		SQL:      sqlText,
		RowCount: result.RowCount(),
		Columns:  result.Columns,
		Sample:   records,
	}
}

// Narrator explains a result set in conversational prose.
type Narrator struct {
	Client Completer
}

func NewNarrator(client Completer) *Narrator {
	return &Narrator{Client: client}
}

func (n *Narrator) Explain(ctx context.Context, settings Settings, summary Summary) (string, error) {
	if n == nil || n.Client == nil {
		return "", fmt.Errorf("completion client is not configured")
	}
	prompt, err := explainPrompt(summary)
	if err != nil {
		return "", err
	}
	content, err := n.Client.Complete(ctx, CompletionRequest{
		Model:       settings.Model,
		Temperature: NarrationTemperature,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	explanation := strings.TrimSpace(content)
	if explanation == "" {
		return "", ErrEmptyExplanation
	}
	return explanation, nil
}

// FallbackExplanation is used when the narrator cannot produce text.
func FallbackExplanation(question string, rowCount int) string {
	return fmt.Sprintf("Found %d result(s) for '%s'.", rowCount, question)
}

// NoResultsExplanation is used instead of the narrator for empty result sets.
func NoResultsExplanation(question string) string {
	return fmt.Sprintf("I couldn't find any results for \"%s\". This might mean there's no data matching your criteria in the database.", question)
}

func explainPrompt(summary Summary) (string, error) {
	sample := summary.Sample
	if sample == nil {
		sample = []query.Record{}
	}
	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result sample: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a helpful AI assistant that explains database query results in natural language.\n\n")
	fmt.Fprintf(&b, "Original user question: \"%s\"\n", summary.Question)
	fmt.Fprintf(&b, "SQL query executed: %s\n", summary.SQL)
	fmt.Fprintf(&b, "Number of results: %d\n", summary.RowCount)
	fmt.Fprintf(&b, "Column names: %s\n", strings.Join(summary.Columns, ", "))
	fmt.Fprintf(&b, "Sample data: %s\n\n", sampleJSON)
	b.WriteString("Please provide a clear, conversational explanation of these results as if you're talking to a human.\n")
	b.WriteString("- Start with a direct answer to their question\n")
	b.WriteString("- Include relevant details from the data\n")
	b.WriteString("- Format dates and numbers in a human-readable way\n")
	b.WriteString("- Be conversational and helpful\n")
	b.WriteString("- Keep it concise but informative\n\n")
	b.WriteString("Do not mention the SQL query or technical details unless specifically relevant.")
	return b.String(), nil
}
