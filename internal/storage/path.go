package storage

import (
	"fmt"
	"path"
	"regexp"
)

const historyPrefix = "history"

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// HistoryObjectKey is the object key of one archived query record.
func HistoryObjectKey(id string) (string, error) {
	if err := validatePathComponent(id, "history id"); err != nil {
		return "", err
	}
	return path.Join(historyPrefix, id+".parquet"), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
