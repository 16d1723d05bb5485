package seed

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Users != 300 || cfg.Products != 100 || cfg.Orders != 500 {
		t.Fatalf("unexpected counts: %+v", cfg)
	}
	if cfg.Fixtures {
		t.Fatal("Fixtures should default to false")
	}
	if cfg.BatchSize != 100 || cfg.Timeout != 2*time.Minute {
		t.Fatalf("unexpected batch/timeout: %+v", cfg)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	values := map[string]string{
		"NLQ_SEED_FIXTURES":    "true",
		"NLQ_SEED_USERS":       "10",
		"NLQ_SEED_PRODUCTS":    "5",
		"NLQ_SEED_ORDERS":      "0",
		"NLQ_SEED_RANDOM_SEED": "7",
		"NLQ_SEED_BATCH_SIZE":  "3",
		"NLQ_SEED_TIMEOUT":     "5s",
	}
	cfg, err := LoadConfigFromEnv(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if !cfg.Fixtures || cfg.Users != 10 || cfg.Products != 5 || cfg.Orders != 0 || cfg.Seed != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BatchSize != 3 || cfg.Timeout != 5*time.Second {
		t.Fatalf("unexpected batch/timeout: %+v", cfg)
	}
}

func TestLoadConfigFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"NLQ_SEED_USERS": "many"},
		{"NLQ_SEED_USERS": "0"},
		{"NLQ_SEED_ORDERS": "-1"},
		{"NLQ_SEED_BATCH_SIZE": "0"},
		{"NLQ_SEED_FIXTURES": "sometimes"},
		{"NLQ_SEED_TIMEOUT": "later"},
	}
	for _, env := range tests {
		_, err := LoadConfigFromEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		})
		if err == nil {
			t.Fatalf("expected error for %#v", env)
		}
	}
}
