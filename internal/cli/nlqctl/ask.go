package nlqctl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

type askResponse struct {
	Success              bool           `json:"success"`
	NaturalLanguageQuery string         `json:"naturalLanguageQuery"`
	GeneratedSQL         string         `json:"generatedSQL"`
	Results              []query.Record `json:"results"`
	Count                int            `json:"count"`
	Explanation          string         `json:"explanation"`
}

func newAskCommand(flags *globalFlags, newClient func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question in plain English",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return fmt.Errorf("%w: a question is required", errUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			body, err := newClient().do(cmd.Context(), http.MethodPost, "/api/query", map[string]string{"query": question})
			if err != nil {
				return err
			}
			if flags.json {
				writeBody(cmd.OutOrStdout(), body)
				return nil
			}
			var response askResponse
			if err := json.Unmarshal(body, &response); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return renderAnswer(cmd.OutOrStdout(), response)
		},
	}
}

func renderAnswer(w io.Writer, response askResponse) error {
	_, _ = fmt.Fprintln(w, pterm.Bold.Sprint("SQL"))
	_, _ = fmt.Fprintln(w, response.GeneratedSQL)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, pterm.Bold.Sprint("Explanation"))
	_, _ = fmt.Fprintln(w, response.Explanation)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d row(s)\n", response.Count)
	if len(response.Results) == 0 {
		return nil
	}

	columns := response.Results[0].Columns
	data := pterm.TableData{columns}
	for _, record := range response.Results {
		row := make([]string, len(columns))
		for i, column := range columns {
			value, _ := record.Get(column)
			row[i] = formatCell(value)
		}
		data = append(data, row)
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	_, _ = fmt.Fprintln(w, table)
	return nil
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
