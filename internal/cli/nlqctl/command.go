package nlqctl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alikhantareen/natural-language-query-finder/internal/setup"
)

// Options carries process-level defaults and the seams tests replace.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
	Lookup     func(string) (string, bool)
	// OpenDB opens a writable handle for seeding. Required by the seed command.
	OpenDB   func(ctx context.Context) (*sql.DB, error)
	Prompter setup.Prompter
	// Spinner shows progress animations; keep it off for non-terminal output.
	Spinner bool
}

// Run executes one nlqctl invocation and returns the process exit code.
func Run(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	root := NewRootCommand(opts)
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

type globalFlags struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	json    bool
}

func NewRootCommand(opts Options) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "nlqctl",
		Short:         "Ask questions and manage the natural language query service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", firstNonEmpty(opts.BaseURL, "http://localhost:3000"), "API base URL")
	root.PersistentFlags().StringVar(&flags.apiKey, "api-key", opts.APIKey, "API key for authenticated requests")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", durationOr(opts.Timeout, 60*time.Second), "HTTP timeout (e.g. 30s)")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "print raw JSON responses")

	newClient := func() *client {
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: flags.timeout}
		}
		return &client{baseURL: flags.baseURL, apiKey: flags.apiKey, http: httpClient}
	}

	root.AddCommand(
		newAskCommand(flags, newClient),
		newConfigCommand(newClient),
		newGetCommand("health", "Show service health", "/api/health", newClient),
		newGetCommand("ready", "Check service readiness", "/api/ready", newClient),
		newHistoryCommand(newClient),
		newSeedCommand(opts),
		newSetupCommand(opts),
	)
	return root
}

func newGetCommand(use, short, path string, newClient func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := newClient().do(cmd.Context(), http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			writeBody(cmd.OutOrStdout(), body)
			return nil
		},
	}
}

func newHistoryCommand(newClient func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show an archived query by id",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := newClient().do(cmd.Context(), http.MethodGet, "/api/history/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			writeBody(cmd.OutOrStdout(), body)
			return nil
		},
	}
}

func newConfigCommand(newClient func() *client) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Read or replace the generation settings",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := newClient().do(cmd.Context(), http.MethodGet, "/api/config", nil)
			if err != nil {
				return err
			}
			writeBody(cmd.OutOrStdout(), body)
			return nil
		},
	}

	var (
		model        string
		temperature  float64
		systemPrompt string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the settings; omitted fields reset to startup defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			request := map[string]any{}
			if cmd.Flags().Changed("model") {
				request["model"] = model
			}
			if cmd.Flags().Changed("temperature") {
				request["temperature"] = temperature
			}
			if cmd.Flags().Changed("system-prompt") {
				request["systemPrompt"] = systemPrompt
			}
			body, err := newClient().do(cmd.Context(), http.MethodPut, "/api/config", request)
			if err != nil {
				return err
			}
			writeBody(cmd.OutOrStdout(), body)
			return nil
		},
	}
	setCmd.Flags().StringVar(&model, "model", "", "model identifier")
	setCmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	setCmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "system prompt for SQL generation")

	configCmd.AddCommand(getCmd, setCmd)
	return configCmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, n, len(args))
		}
		return nil
	}
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
