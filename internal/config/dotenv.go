package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles lists the env files read at startup, highest priority first.
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv loads the given env files into the process environment.
// Missing files are skipped and variables that are already set are never
// overwritten, so earlier files take priority over later ones.
func LoadDotEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat env file %q: %w", file, err)
		}
		if err := godotenv.Load(file); err != nil {
			return loaded, fmt.Errorf("load env file %q: %w", file, err)
		}
		loaded = append(loaded, file)
	}
	return loaded, nil
}

// ReadEnvFile parses an env file without touching the process environment.
func ReadEnvFile(file string) (map[string]string, error) {
	values, err := godotenv.Read(file)
	if err != nil {
		return nil, fmt.Errorf("read env file %q: %w", file, err)
	}
	return values, nil
}
