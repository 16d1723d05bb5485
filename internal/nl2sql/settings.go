package nl2sql

import (
	"fmt"
	"strings"
)

const (
	DefaultModel       = "deepseek/deepseek-chat"
	DefaultTemperature = 0.1
	MaxTemperature     = 2.0
)

// DefaultSystemPrompt describes the demo schema and the rules the model must
// follow when turning a question into SQL.
const DefaultSystemPrompt = `You are a PostgreSQL expert. Convert natural language queries to PostgreSQL SQL statements.

Database Schema:
- users table: id (int), email (string), name (string), age (int), city (string), "createdAt" (timestamp), "updatedAt" (timestamp)
- products table: id (int), name (string), price (decimal), category (string), description (string), "inStock" (boolean), "createdAt" (timestamp), "updatedAt" (timestamp)
- orders table: id (int), "userId" (int), status (string), total (decimal), "orderDate" (timestamp), "createdAt" (timestamp), "updatedAt" (timestamp)
- order_items table: id (int), "orderId" (int), "productId" (int), quantity (int), price (decimal)

IMPORTANT: Column names with camelCase must be quoted with double quotes in SQL queries!

Rules:
1. Only return valid PostgreSQL SELECT statements
2. Use proper table names and column names as defined in the schema
3. Quote camelCase column names with double quotes (e.g., "createdAt", "userId", "orderDate")
4. Use appropriate JOINs when querying multiple tables
5. Include proper WHERE clauses for filtering
6. Use LIMIT clause when appropriate
7. Return only the SQL query, no explanations or formatting
8. Do not use any DDL statements (CREATE, DROP, ALTER, etc.)
9. Do not use any DML statements other than SELECT

Examples:
- "Show all users" → SELECT * FROM users;
- "Find products under $100" → SELECT * FROM products WHERE price < 100;
- "Show orders for John Doe" → SELECT o.* FROM orders o JOIN users u ON o."userId" = u.id WHERE u.name = 'John Doe';
- "When did Jane Smith join?" → SELECT name, "createdAt" FROM users WHERE name = 'Jane Smith';`

// Settings are the process-wide generation parameters. They are replaced as
// a whole and read as one snapshot per request.
type Settings struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	SystemPrompt string  `json:"systemPrompt"`
}

func DefaultSettings() Settings {
	return Settings{
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		SystemPrompt: DefaultSystemPrompt,
	}
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if s.Temperature < 0 || s.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be between 0 and %.0f", MaxTemperature)
	}
	if strings.TrimSpace(s.SystemPrompt) == "" {
		return fmt.Errorf("system prompt is required")
	}
	return nil
}
