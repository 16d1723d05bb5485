package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

var (
	userColumns      = []string{"id", "email", "name", "age", "city", "createdAt", "updatedAt"}
	productColumns   = []string{"id", "name", "price", "category", "description", "inStock", "createdAt", "updatedAt"}
	orderColumns     = []string{"id", "userId", "status", "total", "orderDate", "createdAt", "updatedAt"}
	orderItemColumns = []string{"id", "orderId", "productId", "quantity", "price"}

	earliestDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Generator builds a random demo dataset. The same seed and clock always
// yield the same rows.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (g *Generator) Generate(users, products, orders int) (Dataset, error) {
	if users <= 0 || products <= 0 {
		return Dataset{}, fmt.Errorf("users and products must be > 0")
	}
	if orders < 0 {
		return Dataset{}, fmt.Errorf("orders must be >= 0")
	}
	now := g.now().Truncate(time.Second)

	userRows := make([][]any, 0, users)
	for i := 0; i < users; i++ {
		first := pickOne(g.rnd, firstNames)
		last := pickOne(g.rnd, lastNames)
		createdAt := g.dateBetween(earliestDate, now)
		userRows = append(userRows, []any{
			i + 1,
			fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			first + " " + last,
			18 + g.rnd.Intn(50),
			pickOne(g.rnd, cities),
			createdAt,
			createdAt,
		})
	}

	prices := make([]float64, 0, products)
	productRows := make([][]any, 0, products)
	for i := 0; i < products; i++ {
		cat := categories[g.rnd.Intn(len(categories))]
		name := pickOne(g.rnd, cat.products)
		price := round2(9.99 + g.rnd.Float64()*(999.99-9.99))
		createdAt := g.dateBetween(earliestDate, now)
		prices = append(prices, price)
		productRows = append(productRows, []any{
			i + 1,
			fmt.Sprintf("%s %d", name, i+1),
			price,
			cat.name,
			fmt.Sprintf("High-quality %s with excellent features", strings.ToLower(name)),
			g.rnd.Float64() > 0.1,
			createdAt,
			createdAt,
		})
	}

	orderRows := make([][]any, 0, orders)
	itemRows := make([][]any, 0, orders*3)
	for i := 0; i < orders; i++ {
		orderID := i + 1
		userID := g.rnd.Intn(users) + 1
		status := pickOne(g.rnd, orderStatuses)
		orderDate := g.dateBetween(earliestDate, now)

		total := 0.0
		items := g.rnd.Intn(5) + 1
		for j := 0; j < items; j++ {
			productIdx := g.rnd.Intn(products)
			quantity := g.rnd.Intn(3) + 1
			price := prices[productIdx]
			total += price * float64(quantity)
			itemRows = append(itemRows, []any{len(itemRows) + 1, orderID, productIdx + 1, quantity, price})
		}
		orderRows = append(orderRows, []any{orderID, userID, status, round2(total), orderDate, orderDate, orderDate})
	}

	return Dataset{Tables: []Table{
		{Name: "users", Columns: userColumns, Rows: userRows},
		{Name: "products", Columns: productColumns, Rows: productRows},
		{Name: "orders", Columns: orderColumns, Rows: orderRows},
		{Name: "order_items", Columns: orderItemColumns, Rows: itemRows},
	}}, nil
}

func (g *Generator) dateBetween(start, end time.Time) time.Time {
	seconds := int64(end.Sub(start) / time.Second)
	if seconds <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rnd.Int63n(seconds)) * time.Second)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
