package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Request struct {
	SQL      string
	RowLimit int
}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// Engine runs one SQL statement and returns its rows. Implementations must
// return the same result shape regardless of the backing store.
type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

func (r Result) RowCount() int {
	return len(r.Rows)
}

// Records pairs every row with the column names.
func (r Result) Records() []Record {
	records := make([]Record, 0, len(r.Rows))
	for _, row := range r.Rows {
		records = append(records, Record{Columns: r.Columns, Values: row})
	}
	return records
}

// Record is one result row. It encodes to a JSON object whose keys keep the
// column order of the result set.
type Record struct {
	Columns []string
	Values  []any
}

// Get returns the value of the last column with the given name.
func (r Record) Get(column string) (any, bool) {
	for i := len(r.Columns) - 1; i >= 0; i-- {
		if r.Columns[i] == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// MarshalJSON writes each column name once. A repeated name, as in a join
// selecting id from both tables, keeps its first position and its last value.
func (r Record) MarshalJSON() ([]byte, error) {
	last := make(map[string]int, len(r.Columns))
	for i, column := range r.Columns {
		last[column] = i
	}
	written := make(map[string]bool, len(r.Columns))
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, column := range r.Columns {
		if written[column] {
			continue
		}
		if len(written) > 0 {
			buf.WriteByte(',')
		}
		written[column] = true
		key, err := json.Marshal(column)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", column, err)
		}
		var value any
		if i := last[column]; i < len(r.Values) {
			value = r.Values[i]
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for column %q: %w", column, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads one JSON object, keeping key order as the column order.
func (r *Record) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}
	columns := make([]string, 0)
	values := make([]any, 0)
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("record key must be a string")
		}
		var value any
		if err := decoder.Decode(&value); err != nil {
			return fmt.Errorf("decode value for column %q: %w", key, err)
		}
		columns = append(columns, key)
		values = append(values, value)
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	r.Columns = columns
	r.Values = values
	return nil
}
