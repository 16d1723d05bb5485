package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

const (
	DiagnosticMessage = "Query executed successfully"
	DiagnosticNote    = "This is a demo database with limited query support"
)

// Engine serves a fixed demo dataset without a database. It understands
// single-table SELECTs with conjunctive =, < and > filters, ORDER BY, LIMIT,
// COUNT(*) and the orders/users join. Any other statement yields exactly
// one diagnostic row instead of an error.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if err := ctx.Err(); err != nil {
		return query.Result{}, err
	}
	start := time.Now()
	result, err := evaluate(request.SQL)
	if err != nil {
		result = diagnostic()
	}
	if request.RowLimit > 0 && len(result.Rows) > request.RowLimit {
		result.Rows = result.Rows[:request.RowLimit]
	}
	result.Duration = time.Since(start)
	return result, nil
}

func diagnostic() query.Result {
	return query.Result{
		Columns: []string{"message", "note", "availableTables"},
		Rows: [][]any{{
			DiagnosticMessage,
			DiagnosticNote,
			append([]string(nil), availableTables...),
		}},
	}
}

// IsDiagnostic reports whether a result is the single placeholder row
// returned for unrecognized statements.
func IsDiagnostic(result query.Result) bool {
	if len(result.Rows) != 1 || len(result.Columns) != 3 || result.Columns[0] != "message" {
		return false
	}
	message, _ := result.Rows[0][0].(string)
	return message == DiagnosticMessage
}

func evaluate(sql string) (query.Result, error) {
	stmt, err := parse(sql)
	if err != nil {
		return query.Result{}, err
	}
	rel, err := buildRelation(stmt)
	if err != nil {
		return query.Result{}, err
	}

	filters := make([]boundPredicate, 0, len(stmt.where))
	for _, pred := range stmt.where {
		idx, err := rel.resolve(pred.column)
		if err != nil {
			return query.Result{}, err
		}
		filters = append(filters, boundPredicate{index: idx, predicate: pred})
	}

	rows := make([][]any, 0, len(rel.rows))
	for _, row := range rel.rows {
		keep := true
		for _, filter := range filters {
			ok, err := filter.matches(row)
			if err != nil {
				return query.Result{}, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, row)
		}
	}

	if stmt.orderBy != nil {
		idx, err := rel.resolve(stmt.orderBy.column)
		if err != nil {
			return query.Result{}, err
		}
		var sortErr error
		sort.SliceStable(rows, func(i, j int) bool {
			cmp, err := compareValues(rows[i][idx], rows[j][idx])
			if err != nil {
				sortErr = err
				return false
			}
			if stmt.orderBy.descending {
				return cmp > 0
			}
			return cmp < 0
		})
		if sortErr != nil {
			return query.Result{}, sortErr
		}
	}

	if countOnly(stmt.projection) {
		return countResult(stmt.projection, len(rows), stmt.limit), nil
	}
	if stmt.limit >= 0 && len(rows) > stmt.limit {
		rows = rows[:stmt.limit]
	}
	return project(rel, stmt.projection, rows)
}

func countOnly(items []projectionItem) bool {
	for _, item := range items {
		if !item.count {
			return false
		}
	}
	return true
}

func countResult(items []projectionItem, n, limit int) query.Result {
	columns := make([]string, len(items))
	row := make([]any, len(items))
	for i, item := range items {
		columns[i] = item.alias
		row[i] = n
	}
	result := query.Result{Columns: columns, Rows: [][]any{row}}
	if limit == 0 {
		result.Rows = [][]any{}
	}
	return result
}

func project(rel relation, items []projectionItem, rows [][]any) (query.Result, error) {
	var columns []string
	var indexes []int
	for _, item := range items {
		switch {
		case item.count:
			return query.Result{}, fmt.Errorf("%w: COUNT(*) mixed with columns", errUnsupported)
		case item.all:
			names, idx, err := rel.star(item.column.qualifier)
			if err != nil {
				return query.Result{}, err
			}
			columns = append(columns, names...)
			indexes = append(indexes, idx...)
		default:
			idx, err := rel.resolve(item.column)
			if err != nil {
				return query.Result{}, err
			}
			name := rel.columns[idx]
			if item.alias != "" {
				name = item.alias
			}
			columns = append(columns, name)
			indexes = append(indexes, idx)
		}
	}

	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		projected := make([]any, len(indexes))
		for i, idx := range indexes {
			projected[i] = row[idx]
		}
		out = append(out, projected)
	}
	return query.Result{Columns: columns, Rows: out}, nil
}

type boundPredicate struct {
	index int
	predicate
}

func (b boundPredicate) matches(row []any) (bool, error) {
	value := row[b.index]
	cmp, equalOnly, err := compareLiteral(value, b.value)
	if err != nil {
		return false, err
	}
	switch b.kind {
	case predicateEquals:
		return cmp == 0, nil
	case predicateLessThan:
		if equalOnly {
			return false, fmt.Errorf("%w: ordering comparison on boolean", errUnsupported)
		}
		return cmp < 0, nil
	case predicateGreaterThan:
		if equalOnly {
			return false, fmt.Errorf("%w: ordering comparison on boolean", errUnsupported)
		}
		return cmp > 0, nil
	default:
		return false, fmt.Errorf("%w: predicate kind %d", errUnsupported, b.kind)
	}
}

// compareLiteral orders a stored value against a literal. Text compares
// case-insensitively.
func compareLiteral(value any, lit literal) (cmp int, equalOnly bool, err error) {
	switch typed := value.(type) {
	case string:
		if lit.kind != literalString {
			return 0, false, fmt.Errorf("%w: text column compared with %q", errUnsupported, lit.text)
		}
		return strings.Compare(strings.ToLower(typed), strings.ToLower(lit.text)), false, nil
	case bool:
		if lit.kind != literalBool {
			return 0, false, fmt.Errorf("%w: boolean column compared with %q", errUnsupported, lit.text)
		}
		if typed == lit.flag {
			return 0, true, nil
		}
		return 1, true, nil
	case time.Time:
		if lit.kind != literalString {
			return 0, false, fmt.Errorf("%w: timestamp compared with %q", errUnsupported, lit.text)
		}
		when, err := parseTimestamp(lit.text)
		if err != nil {
			return 0, false, err
		}
		return typed.Compare(when), false, nil
	}

	number, ok := toFloat(value)
	if !ok {
		return 0, false, fmt.Errorf("%w: value of type %T", errUnsupported, value)
	}
	switch lit.kind {
	case literalNumber:
		return compareFloat(number, lit.number), false, nil
	case literalString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(lit.text), 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: numeric column compared with %q", errUnsupported, lit.text)
		}
		return compareFloat(number, parsed), false, nil
	default:
		return 0, false, fmt.Errorf("%w: numeric column compared with %q", errUnsupported, lit.text)
	}
}

func compareValues(a, b any) (int, error) {
	switch left := a.(type) {
	case string:
		right, ok := b.(string)
		if !ok {
			break
		}
		return strings.Compare(strings.ToLower(left), strings.ToLower(right)), nil
	case time.Time:
		right, ok := b.(time.Time)
		if !ok {
			break
		}
		return left.Compare(right), nil
	case bool:
		right, ok := b.(bool)
		if !ok {
			break
		}
		switch {
		case left == right:
			return 0, nil
		case !left:
			return -1, nil
		default:
			return 1, nil
		}
	default:
		l, lok := toFloat(a)
		r, rok := toFloat(b)
		if lok && rok {
			return compareFloat(l, r), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot order %T against %T", errUnsupported, a, b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

var timestampLayouts = []string{time.DateOnly, time.DateTime, time.RFC3339}

func parseTimestamp(text string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(text)); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", errUnsupported, text)
}
