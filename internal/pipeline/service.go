package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alikhantareen/natural-language-query-finder/internal/history"
	"github.com/alikhantareen/natural-language-query-finder/internal/nl2sql"
	"github.com/alikhantareen/natural-language-query-finder/internal/observability"
	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

const (
	StageGenerate = "generate"
	StageExecute  = "execute"
	StageNarrate  = "narrate"
	StageRecord   = "record"
)

const defaultHistoryTimeout = 5 * time.Second

type SQLGenerator interface {
	Generate(ctx context.Context, settings nl2sql.Settings, question string) (string, error)
}

type ResultNarrator interface {
	Explain(ctx context.Context, settings nl2sql.Settings, summary nl2sql.Summary) (string, error)
}

type Dependencies struct {
	Logger    *slog.Logger
	Generator SQLGenerator
	Engine    query.Engine
	Narrator  ResultNarrator
	// Recorder is optional. Write failures are logged and never fail a request.
	Recorder       history.Recorder
	HistoryTimeout time.Duration
	Settings       nl2sql.Settings
	RowLimit       int
	Now            func() time.Time
	NewID          func() string
}

type Answer struct {
	ID          string
	Question    string
	SQL         string
	Result      query.Result
	Explanation string
	// Narrated is false when the explanation came from a template.
	Narrated bool
}

// Service runs one question through generate, execute and narrate. Stages
// are sequential per request; the settings snapshot is the only state shared
// between requests.
type Service struct {
	logger         *slog.Logger
	generator      SQLGenerator
	engine         query.Engine
	narrator       ResultNarrator
	recorder       history.Recorder
	historyTimeout time.Duration
	rowLimit       int
	now            func() time.Time
	newID          func() string

	defaults nl2sql.Settings
	settings atomic.Pointer[nl2sql.Settings]
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("sql generator is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	if deps.Narrator == nil {
		return nil, fmt.Errorf("result narrator is required")
	}
	if err := deps.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	historyTimeout := deps.HistoryTimeout
	if historyTimeout <= 0 {
		historyTimeout = defaultHistoryTimeout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	s := &Service{
		logger:         logger,
		generator:      deps.Generator,
		engine:         deps.Engine,
		narrator:       deps.Narrator,
		recorder:       deps.Recorder,
		historyTimeout: historyTimeout,
		rowLimit:       deps.RowLimit,
		now:            now,
		newID:          newID,
		defaults:       deps.Settings,
	}
	initial := deps.Settings
	s.settings.Store(&initial)
	return s, nil
}

func (s *Service) Settings() nl2sql.Settings {
	return *s.settings.Load()
}

// DefaultSettings returns the settings the service started with.
func (s *Service) DefaultSettings() nl2sql.Settings {
	return s.defaults
}

// UpdateSettings replaces the current settings as a whole. Requests already
// in flight keep the snapshot they started with.
func (s *Service) UpdateSettings(next nl2sql.Settings) (nl2sql.Settings, error) {
	if err := next.Validate(); err != nil {
		return nl2sql.Settings{}, &ValidationError{Reason: err.Error()}
	}
	s.settings.Store(&next)
	s.logger.Info("generation settings updated",
		slog.String("model", next.Model),
		slog.Float64("temperature", next.Temperature),
		slog.Bool("default_prompt", next.SystemPrompt == nl2sql.DefaultSystemPrompt),
	)
	return next, nil
}

func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	answer := Answer{ID: s.newID(), Question: question}
	if strings.TrimSpace(question) == "" {
		return answer, &ValidationError{Reason: "query is required"}
	}

	started := s.now()
	settings := s.Settings()
	logger := s.logger.With(
		slog.String("query_id", answer.ID),
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
	)
	entry := history.Entry{
		ID:        answer.ID,
		TraceID:   observability.TraceIDFromContext(ctx),
		Question:  question,
		Model:     settings.Model,
		CreatedAt: started.UTC(),
	}

	stageStart := time.Now()
	sqlText, err := s.generator.Generate(ctx, settings, question)
	if err != nil {
		observability.ObserveStage(StageGenerate, observability.OutcomeError, time.Since(stageStart))
		logger.Warn("sql generation failed", slog.String("error", observability.Mask(err.Error())))
		s.recordFailure(ctx, logger, entry, StageGenerate, err, started)
		return answer, &GenerationError{Err: err}
	}
	observability.ObserveStage(StageGenerate, observability.OutcomeOK, time.Since(stageStart))
	answer.SQL = sqlText
	entry.SQL = sqlText
	logger.Debug("sql generated", slog.String("sql", sqlText))

	stageStart = time.Now()
	result, err := s.engine.Execute(ctx, query.Request{SQL: sqlText, RowLimit: s.rowLimit})
	if err != nil {
		observability.ObserveStage(StageExecute, observability.OutcomeError, time.Since(stageStart))
		logger.Warn("sql execution failed", slog.String("sql", sqlText), slog.String("error", observability.Mask(err.Error())))
		s.recordFailure(ctx, logger, entry, StageExecute, err, started)
		return answer, &ExecutionError{SQL: sqlText, Err: err}
	}
	observability.ObserveStage(StageExecute, observability.OutcomeOK, time.Since(stageStart))
	observability.ObserveResultRows(result.RowCount())
	answer.Result = result

	answer.Explanation, answer.Narrated = s.explain(ctx, logger, settings, question, sqlText, result)

	entry.Status = history.StatusSucceeded
	entry.RowCount = result.RowCount()
	entry.Explanation = answer.Explanation
	entry.DurationMs = s.now().Sub(started).Milliseconds()
	s.record(ctx, logger, entry)

	logger.Info("question answered",
		slog.Int("rows", result.RowCount()),
		slog.Bool("narrated", answer.Narrated),
		slog.Int64("duration_ms", entry.DurationMs),
	)
	return answer, nil
}

func (s *Service) explain(ctx context.Context, logger *slog.Logger, settings nl2sql.Settings, question, sqlText string, result query.Result) (string, bool) {
	if result.RowCount() == 0 {
		return nl2sql.NoResultsExplanation(question), false
	}
	stageStart := time.Now()
	explanation, err := s.narrator.Explain(ctx, settings, nl2sql.NewSummary(question, sqlText, result))
	if err != nil {
		observability.ObserveStage(StageNarrate, observability.OutcomeError, time.Since(stageStart))
		observability.IncrementNarrationFallback()
		logger.Warn("result narration failed, using fallback", slog.String("error", observability.Mask(err.Error())))
		return nl2sql.FallbackExplanation(question, result.RowCount()), false
	}
	observability.ObserveStage(StageNarrate, observability.OutcomeOK, time.Since(stageStart))
	return explanation, true
}

func (s *Service) recordFailure(ctx context.Context, logger *slog.Logger, entry history.Entry, stage string, cause error, started time.Time) {
	entry.Status = history.StatusFailed
	entry.Stage = stage
	entry.Error = observability.Mask(cause.Error())
	entry.DurationMs = s.now().Sub(started).Milliseconds()
	s.record(ctx, logger, entry)
}

func (s *Service) record(ctx context.Context, logger *slog.Logger, entry history.Entry) {
	if s.recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.historyTimeout)
	defer cancel()

	stageStart := time.Now()
	if err := s.recorder.Record(recordCtx, entry); err != nil {
		observability.ObserveStage(StageRecord, observability.OutcomeError, time.Since(stageStart))
		observability.IncrementHistoryWriteFailure()
		logger.Warn("history write failed", slog.Any("error", err))
		return
	}
	observability.ObserveStage(StageRecord, observability.OutcomeOK, time.Since(stageStart))
}
