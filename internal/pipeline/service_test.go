package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alikhantareen/natural-language-query-finder/internal/history"
	"github.com/alikhantareen/natural-language-query-finder/internal/nl2sql"
	"github.com/alikhantareen/natural-language-query-finder/internal/query"
	"github.com/alikhantareen/natural-language-query-finder/internal/query/memory"
)

func TestAskAnswersQuestionEndToEnd(t *testing.T) {
	generator := &fakeGenerator{sql: "SELECT name, price FROM products WHERE price < 100;"}
	narrator := &fakeNarrator{explanation: "Two products cost under $100: the Mouse and the Keyboard."}
	recorder := &fakeRecorder{}
	service := newTestService(t, Dependencies{
		Generator: generator,
		Engine:    memory.NewEngine(),
		Narrator:  narrator,
		Recorder:  recorder,
	})

	answer, err := service.Ask(context.Background(), "Find products under $100")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.ID != "query-1" || answer.SQL != generator.sql {
		t.Fatalf("answer = %+v", answer)
	}
	if answer.Result.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", answer.Result.RowCount())
	}
	if !answer.Narrated || answer.Explanation != narrator.explanation {
		t.Fatalf("explanation = %q (narrated %v)", answer.Explanation, answer.Narrated)
	}
	if len(narrator.summaries) != 1 || narrator.summaries[0].RowCount != 2 || len(narrator.summaries[0].Sample) != 2 {
		t.Fatalf("narrator summaries = %+v", narrator.summaries)
	}

	entries := recorder.all()
	if len(entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Status != history.StatusSucceeded || entry.RowCount != 2 || entry.SQL != generator.sql || entry.Model != nl2sql.DefaultModel {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.DurationMs != 250 {
		t.Fatalf("DurationMs = %d, want 250", entry.DurationMs)
	}
}

func TestAskRejectsBlankQuestionBeforeGenerating(t *testing.T) {
	generator := &fakeGenerator{sql: "SELECT 1"}
	service := newTestService(t, Dependencies{Generator: generator, Engine: &fakeEngine{}, Narrator: &fakeNarrator{}})

	for _, question := range []string{"", "   \n\t"} {
		_, err := service.Ask(context.Background(), question)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("Ask(%q) error = %v, want ValidationError", question, err)
		}
	}
	if generator.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", generator.calls)
	}
}

func TestAskReportsGenerationFailure(t *testing.T) {
	engine := &fakeEngine{}
	recorder := &fakeRecorder{}
	service := newTestService(t, Dependencies{
		Generator: &fakeGenerator{err: errors.New("only SELECT statements are allowed")},
		Engine:    engine,
		Narrator:  &fakeNarrator{},
		Recorder:  recorder,
	})

	_, err := service.Ask(context.Background(), "delete everything")
	var generation *GenerationError
	if !errors.As(err, &generation) {
		t.Fatalf("Ask() error = %v, want GenerationError", err)
	}
	if engine.calls != 0 {
		t.Fatalf("engine calls = %d, want 0", engine.calls)
	}
	entries := recorder.all()
	if len(entries) != 1 || entries[0].Status != history.StatusFailed || entries[0].Stage != StageGenerate {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestAskReportsExecutionFailureWithSQL(t *testing.T) {
	narrator := &fakeNarrator{}
	service := newTestService(t, Dependencies{
		Generator: &fakeGenerator{sql: "SELECT * FROM missing_table"},
		Engine:    &fakeEngine{err: errors.New(`relation "missing_table" does not exist`)},
		Narrator:  narrator,
	})

	answer, err := service.Ask(context.Background(), "show the missing table")
	var execution *ExecutionError
	if !errors.As(err, &execution) {
		t.Fatalf("Ask() error = %v, want ExecutionError", err)
	}
	if execution.SQL != "SELECT * FROM missing_table" || answer.SQL != execution.SQL {
		t.Fatalf("execution SQL = %q, answer SQL = %q", execution.SQL, answer.SQL)
	}
	if len(narrator.summaries) != 0 {
		t.Fatal("narrator should not run after an execution failure")
	}
}

func TestAskFallsBackWhenNarrationFails(t *testing.T) {
	service := newTestService(t, Dependencies{
		Generator: &fakeGenerator{sql: "SELECT * FROM users"},
		Engine:    memory.NewEngine(),
		Narrator:  &fakeNarrator{err: errors.New("rate limited")},
	})

	answer, err := service.Ask(context.Background(), "show all users")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Narrated {
		t.Fatal("Narrated should be false for the fallback")
	}
	if answer.Explanation != "Found 5 result(s) for 'show all users'." {
		t.Fatalf("Explanation = %q", answer.Explanation)
	}
}

func TestAskSkipsNarratorForEmptyResults(t *testing.T) {
	narrator := &fakeNarrator{explanation: "unused"}
	service := newTestService(t, Dependencies{
		Generator: &fakeGenerator{sql: "SELECT * FROM users WHERE city = 'Paris'"},
		Engine:    memory.NewEngine(),
		Narrator:  narrator,
	})

	answer, err := service.Ask(context.Background(), "users in Paris")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(narrator.summaries) != 0 {
		t.Fatal("narrator should not run for empty results")
	}
	if answer.Explanation != nl2sql.NoResultsExplanation("users in Paris") {
		t.Fatalf("Explanation = %q", answer.Explanation)
	}
}

func TestAskIgnoresHistoryWriteFailure(t *testing.T) {
	service := newTestService(t, Dependencies{
		Generator: &fakeGenerator{sql: "SELECT * FROM products"},
		Engine:    memory.NewEngine(),
		Narrator:  &fakeNarrator{explanation: "Six products."},
		Recorder:  &fakeRecorder{err: errors.New("bucket unavailable")},
	})
	if _, err := service.Ask(context.Background(), "list products"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}

func TestUpdateSettingsReplacesSnapshot(t *testing.T) {
	generator := &fakeGenerator{sql: "SELECT * FROM users"}
	service := newTestService(t, Dependencies{Generator: generator, Engine: memory.NewEngine(), Narrator: &fakeNarrator{explanation: "ok"}})

	if _, err := service.UpdateSettings(nl2sql.Settings{Model: "", Temperature: 0.2, SystemPrompt: "p"}); err == nil {
		t.Fatal("expected validation error for empty model")
	}
	if got := service.Settings(); got != nl2sql.DefaultSettings() {
		t.Fatalf("settings changed after rejected update: %+v", got)
	}

	next := nl2sql.Settings{Model: "openai/gpt-4o-mini", Temperature: 0.5, SystemPrompt: "custom prompt"}
	if _, err := service.UpdateSettings(next); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if _, err := service.Ask(context.Background(), "show users"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if generator.lastSettings != next {
		t.Fatalf("generator settings = %+v, want %+v", generator.lastSettings, next)
	}
	if service.DefaultSettings() != nl2sql.DefaultSettings() {
		t.Fatalf("DefaultSettings() = %+v", service.DefaultSettings())
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	base := Dependencies{
		Generator: &fakeGenerator{},
		Engine:    &fakeEngine{},
		Narrator:  &fakeNarrator{},
		Settings:  nl2sql.DefaultSettings(),
	}
	missingGenerator := base
	missingGenerator.Generator = nil
	missingEngine := base
	missingEngine.Engine = nil
	missingNarrator := base
	missingNarrator.Narrator = nil
	badSettings := base
	badSettings.Settings = nl2sql.Settings{}

	for _, deps := range []Dependencies{missingGenerator, missingEngine, missingNarrator, badSettings} {
		if _, err := NewService(deps); err == nil {
			t.Fatalf("NewService(%+v) expected error", deps)
		}
	}
}

func newTestService(t *testing.T, deps Dependencies) *Service {
	t.Helper()
	deps.Settings = nl2sql.DefaultSettings()
	var ids int
	deps.NewID = func() string {
		ids++
		return "query-" + string(rune('0'+ids))
	}
	clock := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	deps.Now = func() time.Time {
		current := clock
		clock = clock.Add(250 * time.Millisecond)
		return current
	}
	service, err := NewService(deps)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return service
}

type fakeGenerator struct {
	sql          string
	err          error
	calls        int
	lastSettings nl2sql.Settings
}

func (f *fakeGenerator) Generate(_ context.Context, settings nl2sql.Settings, _ string) (string, error) {
	f.calls++
	f.lastSettings = settings
	return f.sql, f.err
}

type fakeEngine struct {
	result query.Result
	err    error
	calls  int
}

func (f *fakeEngine) Execute(_ context.Context, _ query.Request) (query.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeNarrator struct {
	explanation string
	err         error
	summaries   []nl2sql.Summary
}

func (f *fakeNarrator) Explain(_ context.Context, _ nl2sql.Settings, summary nl2sql.Summary) (string, error) {
	f.summaries = append(f.summaries, summary)
	return f.explanation, f.err
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, entry history.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return f.err
}

func (f *fakeRecorder) all() []history.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]history.Entry(nil), f.entries...)
}
