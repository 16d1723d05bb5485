// Package sqlguard holds the acceptance check applied to model-generated SQL.
//
// The check is a lexical scan, not a parser: it requires a leading SELECT,
// a single statement, and no data-changing or schema-changing keyword
// outside string literals, quoted identifiers and comments. Treat its output
// as untrusted anyway and execute it under a read-only role or transaction.
package sqlguard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty              = errors.New("no SQL query generated")
	ErrNotSelect          = errors.New("only SELECT statements are allowed")
	ErrMultipleStatements = errors.New("only a single SQL statement is allowed")
)

// ForbiddenKeywordError reports a DDL/DML keyword found in generated SQL.
type ForbiddenKeywordError struct {
	Keyword string
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("statement contains forbidden keyword %s", strings.ToUpper(e.Keyword))
}

var forbiddenKeywords = map[string]struct{}{
	"insert":   {},
	"update":   {},
	"delete":   {},
	"merge":    {},
	"upsert":   {},
	"truncate": {},
	"create":   {},
	"drop":     {},
	"alter":    {},
	"rename":   {},
	"grant":    {},
	"revoke":   {},
	"copy":     {},
	"call":     {},
	"execute":  {},
	"vacuum":   {},
	"attach":   {},
	"detach":   {},
	"install":  {},
	"load":     {},
	"pragma":   {},
	"set":      {},
	"reset":    {},
	"lock":     {},
	"into":     {},
}

// Normalize trims whitespace and unwraps a markdown code fence.
func Normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```SQL")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}

// Validate returns nil when sqlText is an acceptable read-only query.
func Validate(sqlText string) error {
	normalized := strings.TrimSpace(sqlText)
	if normalized == "" {
		return ErrEmpty
	}
	if !strings.HasPrefix(strings.ToLower(normalized), "select") {
		return ErrNotSelect
	}

	words, statements := scan(normalized)
	if statements > 1 {
		return ErrMultipleStatements
	}
	for _, word := range words {
		if _, ok := forbiddenKeywords[word]; ok {
			return &ForbiddenKeywordError{Keyword: word}
		}
	}
	return nil
}

// scan lower-cases the bare words of sqlText, skipping literals, quoted
// identifiers and comments, and counts non-empty statements.
func scan(sqlText string) ([]string, int) {
	var (
		words      []string
		word       strings.Builder
		statements = 0
		pending    = false
	)
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strings.ToLower(word.String()))
			word.Reset()
		}
	}

	runes := []rune(sqlText)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			flush()
			pending = true
			i = skipQuoted(runes, i, c)
		case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
			flush()
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(runes) && runes[i+1] == '*':
			flush()
			i += 2
			for i+1 < len(runes) && (runes[i] != '*' || runes[i+1] != '/') {
				i++
			}
			i++
		case c == ';':
			flush()
			if pending {
				statements++
				pending = false
			}
		case isWordRune(c):
			word.WriteRune(c)
			pending = true
		default:
			flush()
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				pending = true
			}
		}
	}
	flush()
	if pending {
		statements++
	}
	return words, statements
}

func skipQuoted(runes []rune, start int, quote rune) int {
	for i := start + 1; i < len(runes); i++ {
		if runes[i] != quote {
			continue
		}
		if i+1 < len(runes) && runes[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(runes)
}

func isWordRune(c rune) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c > 127
}
