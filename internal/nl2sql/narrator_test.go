package nl2sql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

func TestNewSummaryKeepsFirstThreeRecords(t *testing.T) {
	result := query.Result{
		Columns: []string{"id"},
		Rows:    [][]any{{1}, {2}, {3}, {4}, {5}},
	}
	summary := NewSummary("q", "SELECT id FROM users", result)
	if summary.RowCount != 5 || len(summary.Sample) != SampleSize {
		t.Fatalf("summary = %+v", summary)
	}
	if id, _ := summary.Sample[2].Get("id"); id != 3 {
		t.Fatalf("last sampled id = %v", id)
	}
}

func TestExplainBuildsPromptFromSummary(t *testing.T) {
	client := &fakeCompleter{content: "  There are two cheap products.  "}
	settings := DefaultSettings()
	settings.Model = "custom/model"
	result := query.Result{
		Columns: []string{"name", "price"},
		Rows:    [][]any{{"Mouse", 29.99}, {"Keyboard", 79.99}},
	}

	explanation, err := NewNarrator(client).Explain(context.Background(), settings, NewSummary("cheap products?", "SELECT name, price FROM products WHERE price < 100", result))
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if explanation != "There are two cheap products." {
		t.Fatalf("explanation = %q", explanation)
	}
	req := client.requests[0]
	if req.Model != "custom/model" || req.Temperature != NarrationTemperature {
		t.Fatalf("request = %+v", req)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser {
		t.Fatalf("messages = %+v", req.Messages)
	}
	prompt := req.Messages[0].Content
	for _, want := range []string{
		`Original user question: "cheap products?"`,
		"SQL query executed: SELECT name, price FROM products WHERE price < 100",
		"Number of results: 2",
		"Column names: name, price",
		`"name": "Mouse"`,
		"Do not mention the SQL query",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestExplainFailsOnEmptyCompletion(t *testing.T) {
	_, err := NewNarrator(&fakeCompleter{content: " \n "}).Explain(context.Background(), DefaultSettings(), Summary{Question: "q"})
	if !errors.Is(err, ErrEmptyExplanation) {
		t.Fatalf("Explain() error = %v", err)
	}
}

func TestFallbackAndNoResultsExplanations(t *testing.T) {
	if got := FallbackExplanation("show users", 5); got != "Found 5 result(s) for 'show users'." {
		t.Fatalf("FallbackExplanation() = %q", got)
	}
	want := `I couldn't find any results for "users in Paris". This might mean there's no data matching your criteria in the database.`
	if got := NoResultsExplanation("users in Paris"); got != want {
		t.Fatalf("NoResultsExplanation() = %q", got)
	}
	quoted := `I couldn't find any results for "What's "best"?". This might mean there's no data matching your criteria in the database.`
	if got := NoResultsExplanation(`What's "best"?`); got != quoted {
		t.Fatalf("NoResultsExplanation() = %q, want question inserted verbatim", got)
	}
}

func TestExplainPromptKeepsQuestionVerbatim(t *testing.T) {
	prompt, err := explainPrompt(Summary{Question: `What's "best"?`, SQL: "SELECT 1"})
	if err != nil {
		t.Fatalf("explainPrompt() error = %v", err)
	}
	if !strings.Contains(prompt, `Original user question: "What's "best"?"`) {
		t.Fatalf("prompt = %s", prompt)
	}
}
