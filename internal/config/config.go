package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Executor string

const (
	ExecutorAuto   Executor = "auto"
	ExecutorSQL    Executor = "sql"
	ExecutorMemory Executor = "memory"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	AI            AIConfig
	History       HistoryConfig
	ObjectStore   ObjectStoreConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Executor        Executor
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ReadOnly        bool
	RowLimit        int
	// Serverless is set when the deployment has no reachable database (VERCEL).
	Serverless bool
}

type AIConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float64
	SystemPrompt string
	Timeout      time.Duration
	Referer      string
	Title        string
}

type HistoryConfig struct {
	Enabled bool
	Timeout time.Duration
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ObservabilityConfig struct {
	LogLevel      slog.Level
	LogJSON       bool
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("NLQ_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid NLQ_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	var executor string
	steps := []func() error{
		func() error { return applyString(lookup, "NLQ_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "NLQ_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "NLQ_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "NLQ_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "NLQ_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },

		func() error { return applyString(lookup, "NLQ_EXECUTOR", &executor) },
		func() error { return applyString(lookup, "NLQ_DATABASE_DRIVER", &cfg.Database.Driver) },
		// The variable names written by the setup wizard are honored first so
		// the NLQ_ prefixed names can override them.
		func() error { return applyString(lookup, "DATABASE_URL", &cfg.Database.URL) },
		func() error { return applyString(lookup, "NLQ_DATABASE_URL", &cfg.Database.URL) },
		func() error { return applyInt(lookup, "NLQ_DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns) },
		func() error { return applyInt(lookup, "NLQ_DATABASE_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns) },
		func() error {
			return applyDuration(lookup, "NLQ_DATABASE_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime)
		},
		func() error {
			return applyDuration(lookup, "NLQ_DATABASE_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime)
		},
		func() error { return applyBool(lookup, "NLQ_DATABASE_READ_ONLY", &cfg.Database.ReadOnly) },
		func() error { return applyInt(lookup, "NLQ_DATABASE_ROW_LIMIT", &cfg.Database.RowLimit) },

		func() error { return applyString(lookup, "NLQ_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "OPENAI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "NLQ_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "LLM_MODEL", &cfg.AI.Model) },
		func() error { return applyString(lookup, "NLQ_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "LLM_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyFloat(lookup, "NLQ_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyString(lookup, "NLQ_AI_SYSTEM_PROMPT", &cfg.AI.SystemPrompt) },
		func() error { return applyDuration(lookup, "NLQ_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyString(lookup, "NLQ_AI_REFERER", &cfg.AI.Referer) },
		func() error { return applyString(lookup, "NLQ_AI_TITLE", &cfg.AI.Title) },

		func() error { return applyBool(lookup, "NLQ_HISTORY_ENABLED", &cfg.History.Enabled) },
		func() error { return applyDuration(lookup, "NLQ_HISTORY_TIMEOUT", &cfg.History.Timeout) },
		func() error { return applyString(lookup, "NLQ_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "NLQ_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "NLQ_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error { return applyString(lookup, "NLQ_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID) },
		func() error {
			return applyString(lookup, "NLQ_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "NLQ_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "NLQ_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error {
			return applyBool(lookup, "NLQ_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)
		},

		func() error { return applyBool(lookup, "NLQ_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "NLQ_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyString(lookup, "NLQ_LOG_FILE", &cfg.Observability.LogFile) },
		func() error { return applyInt(lookup, "NLQ_LOG_MAX_SIZE_MB", &cfg.Observability.LogMaxSizeMB) },
		func() error { return applyInt(lookup, "NLQ_LOG_MAX_BACKUPS", &cfg.Observability.LogMaxBackups) },

		func() error { return applyBool(lookup, "NLQ_AUTH_REQUIRED", &cfg.Auth.Required) },
		func() error { return applyString(lookup, "NLQ_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Config{}, err
		}
	}

	if raw, ok := lookup("VERCEL"); ok && strings.TrimSpace(raw) != "" {
		cfg.Database.Serverless = true
	}
	if executor != "" {
		cfg.Database.Executor = Executor(strings.ToLower(executor))
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	switch cfg.Database.Executor {
	case ExecutorAuto, ExecutorSQL, ExecutorMemory:
	default:
		return Config{}, fmt.Errorf("invalid NLQ_EXECUTOR: %q", cfg.Database.Executor)
	}
	switch cfg.Database.Driver {
	case "pgx", "duckdb":
	default:
		return Config{}, fmt.Errorf("invalid NLQ_DATABASE_DRIVER: %q", cfg.Database.Driver)
	}
	if cfg.Database.Executor == ExecutorSQL && cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("database url is required when NLQ_EXECUTOR=sql")
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return Config{}, fmt.Errorf("ai temperature must be within [0, 2], got %v", cfg.AI.Temperature)
	}
	return cfg, nil
}

// ResolveExecutor returns the concrete strategy for ExecutorAuto.
func (c Config) ResolveExecutor() Executor {
	if c.Database.Executor != ExecutorAuto {
		return c.Database.Executor
	}
	if c.Database.Serverless || c.Database.URL == "" {
		return ExecutorMemory
	}
	return ExecutorSQL
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "nlq-api"},
		HTTP: HTTPConfig{
			Address:      ":3000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Executor:        ExecutorAuto,
			Driver:          "pgx",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			ReadOnly:        true,
		},
		AI: AIConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "deepseek/deepseek-chat",
			Temperature: 0.1,
			Timeout:     30 * time.Second,
			Referer:     "http://localhost:3000",
			Title:       "Natural Language to SQL App",
		},
		History: HistoryConfig{
			Enabled: false,
			Timeout: 3 * time.Second,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "nlq-history",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			AutoCreateBucket: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:      slog.LevelDebug,
			LogJSON:       true,
			LogMaxSizeMB:  50,
			LogMaxBackups: 3,
		},
		Auth: AuthConfig{
			Required: false,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":13000"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
