package seed

import (
	"fmt"

	"github.com/alikhantareen/natural-language-query-finder/internal/query/memory"
)

// Table is one collection to load, with rows positionally matching Columns.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Dataset lists tables in insert order. Parents precede children.
type Dataset struct {
	Tables []Table
}

func (d Dataset) Count(name string) int {
	for _, t := range d.Tables {
		if t.Name == name {
			return len(t.Rows)
		}
	}
	return 0
}

// Fixtures returns the same fixed collections the in-memory engine serves.
func Fixtures() (Dataset, error) {
	names := memory.Tables()
	out := Dataset{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		columns, rows, ok := memory.Snapshot(name)
		if !ok {
			return Dataset{}, fmt.Errorf("fixture table %q is missing", name)
		}
		out.Tables = append(out.Tables, Table{Name: name, Columns: columns, Rows: rows})
	}
	return out, nil
}
