package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	duckdb "github.com/marcboeker/go-duckdb/v2"

	"github.com/alikhantareen/natural-language-query-finder/internal/query"
)

// Engine passes SQL verbatim to a database/sql backend.
type Engine struct {
	DB *sql.DB
	// ReadOnlyTx wraps every statement in a read-only transaction. Enable it
	// for drivers that support it (pgx); DuckDB enforces read-only mode at
	// open time instead.
	ReadOnlyTx bool
	// RowLimit caps result sets when the request does not set its own limit.
	RowLimit int
}

func NewEngine(db *sql.DB, readOnlyTx bool, rowLimit int) *Engine {
	return &Engine{DB: db, ReadOnlyTx: readOnlyTx, RowLimit: rowLimit}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if e.DB == nil {
		return query.Result{}, fmt.Errorf("database is required")
	}
	sqlText := stripTrailingSemicolons(request.SQL)
	if sqlText == "" {
		return query.Result{}, fmt.Errorf("sql is required")
	}
	limit := request.RowLimit
	if limit <= 0 {
		limit = e.RowLimit
	}
	if limit > 0 {
		sqlText = fmt.Sprintf("SELECT * FROM (%s\n) AS q LIMIT %d", sqlText, limit)
	}

	start := time.Now()
	if !e.ReadOnlyTx {
		rows, err := e.DB.QueryContext(ctx, sqlText)
		if err != nil {
			return query.Result{}, fmt.Errorf("execute query: %w", err)
		}
		result, err := collect(rows)
		if err != nil {
			return query.Result{}, err
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	tx, err := e.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return query.Result{}, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	result, err := collect(rows)
	if err != nil {
		return query.Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return query.Result{}, fmt.Errorf("commit read-only tx: %w", err)
	}
	result.Duration = time.Since(start)
	return result, nil
}

// Ping reports whether the backing database is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if e.DB == nil {
		return fmt.Errorf("database is required")
	}
	return e.DB.PingContext(ctx)
}

func collect(rows *sql.Rows) (query.Result, error) {
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}
	return query.Result{Columns: columns, Rows: resultRows}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		case duckdb.Decimal:
			normalized[i] = typed.Float64()
		case *big.Int:
			normalized[i] = typed.String()
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
