package history

import (
	"bytes"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
)

type parquetEntry struct {
	ID              string `parquet:"id"`
	TraceID         string `parquet:"trace_id"`
	Question        string `parquet:"question"`
	SQL             string `parquet:"sql"`
	Status          string `parquet:"status"`
	Stage           string `parquet:"stage"`
	RowCount        int64  `parquet:"row_count"`
	Explanation     string `parquet:"explanation"`
	Error           string `parquet:"error"`
	Model           string `parquet:"model"`
	DurationMs      int64  `parquet:"duration_ms"`
	CreatedAtUnixMs int64  `parquet:"created_at_unix_ms"`
}

// Encode writes entry as a single-row parquet file.
func Encode(entry Entry) ([]byte, error) {
	if entry.ID == "" {
		return nil, fmt.Errorf("entry id is required")
	}
	row := parquetEntry{
		ID:              entry.ID,
		TraceID:         entry.TraceID,
		Question:        entry.Question,
		SQL:             entry.SQL,
		Status:          string(entry.Status),
		Stage:           entry.Stage,
		RowCount:        int64(entry.RowCount),
		Explanation:     entry.Explanation,
		Error:           entry.Error,
		Model:           entry.Model,
		DurationMs:      entry.DurationMs,
		CreatedAtUnixMs: entry.CreatedAt.UnixMilli(),
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetEntry](buf)
	if _, err := writer.Write([]parquetEntry{row}); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(data []byte) (Entry, error) {
	rows, err := parquet.Read[parquetEntry](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Entry{}, fmt.Errorf("read parquet rows: %w", err)
	}
	if len(rows) != 1 {
		return Entry{}, fmt.Errorf("expected one history row, got %d", len(rows))
	}
	row := rows[0]
	return Entry{
		ID:          row.ID,
		TraceID:     row.TraceID,
		Question:    row.Question,
		SQL:         row.SQL,
		Status:      Status(row.Status),
		Stage:       row.Stage,
		RowCount:    int(row.RowCount),
		Explanation: row.Explanation,
		Error:       row.Error,
		Model:       row.Model,
		DurationMs:  row.DurationMs,
		CreatedAt:   time.UnixMilli(row.CreatedAtUnixMs).UTC(),
	}, nil
}
