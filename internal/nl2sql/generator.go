package nl2sql

import (
	"context"
	"fmt"

	"github.com/alikhantareen/natural-language-query-finder/internal/sqlguard"
)

// Generator turns a question into one SELECT statement.
type Generator struct {
	Client Completer
}

func NewGenerator(client Completer) *Generator {
	return &Generator{Client: client}
}

func (g *Generator) Generate(ctx context.Context, settings Settings, question string) (string, error) {
	if g == nil || g.Client == nil {
		return "", fmt.Errorf("completion client is not configured")
	}
	content, err := g.Client.Complete(ctx, CompletionRequest{
		Model:       settings.Model,
		Temperature: settings.Temperature,
		Messages: []Message{
			{Role: RoleSystem, Content: settings.SystemPrompt},
			{Role: RoleUser, Content: question},
		},
	})
	if err != nil {
		return "", err
	}
	sqlText := sqlguard.Normalize(content)
	if err := sqlguard.Validate(sqlText); err != nil {
		return "", err
	}
	return sqlText, nil
}
