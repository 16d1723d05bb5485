package seed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	Fixtures  bool
	Users     int
	Products  int
	Orders    int
	Seed      int64
	BatchSize int
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Fixtures:  false,
		Users:     300,
		Products:  100,
		Orders:    500,
		Seed:      42,
		BatchSize: 100,
		Timeout:   2 * time.Minute,
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyBool(lookup, "NLQ_SEED_FIXTURES", &cfg.Fixtures); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "NLQ_SEED_USERS", &cfg.Users); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "NLQ_SEED_PRODUCTS", &cfg.Products); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "NLQ_SEED_ORDERS", &cfg.Orders); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "NLQ_SEED_RANDOM_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "NLQ_SEED_BATCH_SIZE", &cfg.BatchSize); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "NLQ_SEED_TIMEOUT", &cfg.Timeout); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("seed batch size must be > 0")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("seed timeout must be > 0")
	}
	if c.Fixtures {
		return nil
	}
	if c.Users <= 0 {
		return fmt.Errorf("seed users must be > 0")
	}
	if c.Products <= 0 {
		return fmt.Errorf("seed products must be > 0")
	}
	if c.Orders < 0 {
		return fmt.Errorf("seed orders must be >= 0")
	}
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
