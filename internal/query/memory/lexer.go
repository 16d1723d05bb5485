package memory

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuotedIdent
	tokString
	tokNumber
	tokSymbol
)

type token struct {
	kind tokenKind
	// text is lower-cased for bare identifiers and symbols, verbatim for
	// quoted identifiers, unescaped for string literals.
	text string
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) keyword(text string) bool {
	return t.is(tokIdent, text)
}

func lex(input string) ([]token, error) {
	runes := []rune(input)
	tokens := make([]token, 0, len(runes)/3)
	for i := 0; i < len(runes); {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case c == '\'' || c == '"':
			text, next, err := readQuoted(runes, i)
			if err != nil {
				return nil, err
			}
			kind := tokString
			if c == '"' {
				kind = tokQuotedIdent
			}
			tokens = append(tokens, token{kind: kind, text: text})
			i = next
		case unicode.IsDigit(c) || (c == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[start:i])})
		case c == '_' || unicode.IsLetter(c):
			start := i
			for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: strings.ToLower(string(runes[start:i]))})
		default:
			if i+1 < len(runes) {
				pair := string(runes[i : i+2])
				switch pair {
				case "<=", ">=", "<>", "!=":
					tokens = append(tokens, token{kind: tokSymbol, text: pair})
					i += 2
					continue
				}
			}
			if !strings.ContainsRune("*,.=<>();", c) {
				return nil, fmt.Errorf("unexpected character %q", c)
			}
			tokens = append(tokens, token{kind: tokSymbol, text: string(c)})
			i++
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

func readQuoted(runes []rune, start int) (string, int, error) {
	quote := runes[start]
	var b strings.Builder
	for i := start + 1; i < len(runes); i++ {
		if runes[i] != quote {
			b.WriteRune(runes[i])
			continue
		}
		if i+1 < len(runes) && runes[i+1] == quote {
			b.WriteRune(quote)
			i++
			continue
		}
		return b.String(), i + 1, nil
	}
	return "", 0, fmt.Errorf("unterminated quoted text")
}
