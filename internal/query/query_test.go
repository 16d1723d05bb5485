package query

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecordMarshalKeepsColumnOrder(t *testing.T) {
	record := Record{
		Columns: []string{"name", "age", "createdAt", "city"},
		Values:  []any{"John Doe", 30, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), nil},
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"name":"John Doe","age":30,"createdAt":"2024-01-15T00:00:00Z","city":null}`
	if string(encoded) != want {
		t.Fatalf("Marshal() = %s, want %s", encoded, want)
	}
}

func TestRecordMarshalCollapsesRepeatedColumns(t *testing.T) {
	record := Record{
		Columns: []string{"id", "status", "id", "name"},
		Values:  []any{7, "pending", 2, "Jane Smith"},
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"id":2,"status":"pending","name":"Jane Smith"}`
	if string(encoded) != want {
		t.Fatalf("Marshal() = %s, want %s", encoded, want)
	}
	if got, _ := record.Get("id"); got != 2 {
		t.Fatalf("Get(id) = %v, want 2", got)
	}
}

func TestResultRecords(t *testing.T) {
	result := Result{
		Columns: []string{"id", "name"},
		Rows:    [][]any{{1, "Laptop"}, {2, "Mouse"}},
	}
	records := result.Records()
	if len(records) != 2 || result.RowCount() != 2 {
		t.Fatalf("records = %d, RowCount = %d", len(records), result.RowCount())
	}
	value, ok := records[1].Get("name")
	if !ok || value != "Mouse" {
		t.Fatalf("Get(name) = %v, %v", value, ok)
	}
	if _, ok := records[0].Get("price"); ok {
		t.Fatal("Get(price) should report a missing column")
	}
}

func TestRecordUnmarshalKeepsKeyOrder(t *testing.T) {
	var record Record
	if err := json.Unmarshal([]byte(`{"total":1079.98,"userName":"John Doe","id":1}`), &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := []string{"total", "userName", "id"}
	for i, column := range want {
		if record.Columns[i] != column {
			t.Fatalf("Columns = %v, want %v", record.Columns, want)
		}
	}
	if record.Values[1] != "John Doe" {
		t.Fatalf("Values[1] = %#v", record.Values[1])
	}
	if record.Values[2] != json.Number("1") {
		t.Fatalf("Values[2] = %#v", record.Values[2])
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &record); err == nil {
		t.Fatal("expected error for non-object record")
	}
}
