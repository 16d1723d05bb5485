package memory

import "time"

// table is an immutable fixed collection. Rows are copied on every read.
type table struct {
	name    string
	columns []string
	rows    [][]any
}

const (
	tableUsers      = "users"
	tableProducts   = "products"
	tableOrders     = "orders"
	tableOrderItems = "order_items"
)

var availableTables = []string{tableUsers, tableProducts, tableOrders, tableOrderItems}

func day(value string) time.Time {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

var fixedTables = map[string]table{
	tableUsers: {
		name:    tableUsers,
		columns: []string{"id", "email", "name", "age", "city", "createdAt", "updatedAt"},
		rows: [][]any{
			{1, "john@example.com", "John Doe", 30, "New York", day("2024-01-15"), day("2024-01-15")},
			{2, "jane@example.com", "Jane Smith", 25, "Los Angeles", day("2024-01-20"), day("2024-01-20")},
			{3, "bob@example.com", "Bob Johnson", 35, "Chicago", day("2024-02-01"), day("2024-02-01")},
			{4, "alice@example.com", "Alice Brown", 28, "Houston", day("2024-02-10"), day("2024-02-10")},
			{5, "charlie@example.com", "Charlie Wilson", 42, "Phoenix", day("2024-02-15"), day("2024-02-15")},
		},
	},
	tableProducts: {
		name:    tableProducts,
		columns: []string{"id", "name", "price", "category", "description", "inStock", "createdAt", "updatedAt"},
		rows: [][]any{
			{1, "Laptop", 999.99, "Electronics", "High-performance laptop", true, day("2024-01-01"), day("2024-01-01")},
			{2, "Mouse", 29.99, "Electronics", "Wireless mouse", true, day("2024-01-02"), day("2024-01-02")},
			{3, "Keyboard", 79.99, "Electronics", "Mechanical keyboard", true, day("2024-01-03"), day("2024-01-03")},
			{4, "Monitor", 299.99, "Electronics", "24-inch monitor", true, day("2024-01-04"), day("2024-01-04")},
			{5, "Chair", 199.99, "Furniture", "Ergonomic office chair", true, day("2024-01-05"), day("2024-01-05")},
			{6, "Desk", 349.99, "Furniture", "Standing desk", false, day("2024-01-06"), day("2024-01-06")},
		},
	},
	tableOrders: {
		name:    tableOrders,
		columns: []string{"id", "userId", "status", "total", "orderDate", "createdAt", "updatedAt"},
		rows: [][]any{
			{1, 1, "completed", 1079.98, day("2024-03-01"), day("2024-03-01"), day("2024-03-01")},
			{2, 2, "pending", 29.99, day("2024-03-02"), day("2024-03-02"), day("2024-03-02")},
			{3, 1, "completed", 199.99, day("2024-03-03"), day("2024-03-03"), day("2024-03-03")},
			{4, 3, "completed", 729.97, day("2024-03-04"), day("2024-03-04"), day("2024-03-04")},
			{5, 4, "pending", 1299.98, day("2024-03-05"), day("2024-03-05"), day("2024-03-05")},
		},
	},
	tableOrderItems: {
		name:    tableOrderItems,
		columns: []string{"id", "orderId", "productId", "quantity", "price"},
		rows: [][]any{
			{1, 1, 1, 1, 999.99},
			{2, 1, 2, 1, 29.99},
			{3, 1, 3, 1, 79.99},
			{4, 2, 2, 1, 29.99},
			{5, 3, 5, 1, 199.99},
			{6, 4, 3, 1, 79.99},
			{7, 4, 4, 2, 299.99},
			{8, 5, 1, 1, 999.99},
			{9, 5, 4, 1, 299.99},
		},
	},
}

// Snapshot returns a copy of a fixed collection, for seeding a real
// database with the same data the in-memory engine serves.
func Snapshot(name string) (columns []string, rows [][]any, ok bool) {
	t, ok := fixedTables[name]
	if !ok {
		return nil, nil, false
	}
	return append([]string(nil), t.columns...), copyRows(t.rows), true
}

// Tables lists the fixed collections in dependency order.
func Tables() []string {
	return append([]string(nil), availableTables...)
}

func copyRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}
