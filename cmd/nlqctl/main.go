package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alikhantareen/natural-language-query-finder/internal/cli/nlqctl"
	"github.com/alikhantareen/natural-language-query-finder/internal/config"
	"github.com/alikhantareen/natural-language-query-finder/internal/query/sqldb"
)

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "env file error: %v\n", err)
	}
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("NLQ_CLI_TIMEOUT")), 60*time.Second)
	options := nlqctl.Options{
		BaseURL: envOr("NLQ_API_URL", "http://localhost:3000"),
		APIKey:  strings.TrimSpace(os.Getenv("NLQ_API_KEY")),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Lookup:  os.LookupEnv,
		OpenDB:  openWritableDB,
		Spinner: true,
	}

	code := nlqctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func openWritableDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.LoadFromEnv("nlqctl")
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for seeding")
	}
	return sqldb.Open(ctx, sqldb.DBConfig{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.URL,
		MaxOpenConns: 2,
	})
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid NLQ_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
