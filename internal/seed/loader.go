package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Loader replaces the demo tables' contents inside one transaction.
type Loader struct {
	db        *sql.DB
	log       *slog.Logger
	batchSize int
}

func NewLoader(db *sql.DB, logger *slog.Logger, batchSize int) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{db: db, log: logger, batchSize: batchSize}, nil
}

// Load deletes existing rows children first, then inserts the dataset
// parents first. Nothing is changed when any statement fails.
func (l *Loader) Load(ctx context.Context, data Dataset) error {
	if len(data.Tables) == 0 {
		return fmt.Errorf("dataset is empty")
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := len(data.Tables) - 1; i >= 0; i-- {
		name := data.Tables[i].Name
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+quoteIdent(name)); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}

	for _, table := range data.Tables {
		if err := l.insertTable(ctx, tx, table); err != nil {
			return err
		}
		l.log.Info("seeded table", slog.String("table", table.Name), slog.Int("rows", len(table.Rows)))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func (l *Loader) insertTable(ctx context.Context, tx *sql.Tx, table Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", table.Name)
	}
	for start := 0; start < len(table.Rows); start += l.batchSize {
		end := min(start+l.batchSize, len(table.Rows))
		batch := table.Rows[start:end]
		statement, args, err := insertStatement(table.Name, table.Columns, batch)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, statement, args...); err != nil {
			return fmt.Errorf("insert %s rows %d-%d: %w", table.Name, start+1, end, err)
		}
	}
	return nil
}

func insertStatement(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quoteIdent(column)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for r, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("table %s row %d has %d values, want %d", table, r+1, len(row), len(columns))
		}
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range row {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(len(args) + c + 1))
		}
		b.WriteByte(')')
		args = append(args, row...)
	}
	return b.String(), args, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
