package memory

import (
	"fmt"
	"strings"
)

// relation is the row source of one statement: a fixed table or the
// orders/users join.
type relation struct {
	columns    []string
	rows       [][]any
	qualifiers map[string]bool
	// userAlias is set for the join. Columns qualified by it map onto the
	// user fields carried by each order row.
	userAlias string
}

var joinedUserColumns = map[string]string{
	"id":    "userId",
	"name":  "userName",
	"email": "userEmail",
}

func buildRelation(stmt statement) (relation, error) {
	if stmt.join == nil {
		t, ok := fixedTables[stmt.from.name]
		if !ok {
			return relation{}, fmt.Errorf("%w: unknown table %q", errUnsupported, stmt.from.name)
		}
		return relation{
			columns:    append([]string(nil), t.columns...),
			rows:       copyRows(t.rows),
			qualifiers: map[string]bool{t.name: true, stmt.from.alias: true},
		}, nil
	}
	return buildOrdersUsersJoin(stmt.from, *stmt.join)
}

func buildOrdersUsersJoin(from tableRef, join joinClause) (relation, error) {
	var ordersRef, usersRef tableRef
	switch {
	case from.name == tableOrders && join.right.name == tableUsers:
		ordersRef, usersRef = from, join.right
	case from.name == tableUsers && join.right.name == tableOrders:
		ordersRef, usersRef = join.right, from
	default:
		return relation{}, fmt.Errorf("%w: join of %q and %q", errUnsupported, from.name, join.right.name)
	}
	if !joinsOnUserID(join, ordersRef, usersRef) {
		return relation{}, fmt.Errorf("%w: join condition", errUnsupported)
	}

	orders := fixedTables[tableOrders]
	users := fixedTables[tableUsers]
	usersByID := make(map[any][]any, len(users.rows))
	for _, user := range users.rows {
		usersByID[user[0]] = user
	}

	columns := append(append([]string(nil), orders.columns...), "userName", "userEmail")
	rows := make([][]any, 0, len(orders.rows))
	for _, order := range orders.rows {
		user, ok := usersByID[order[1]]
		if !ok {
			continue
		}
		row := append(append([]any(nil), order...), user[2], user[1])
		rows = append(rows, row)
	}
	return relation{
		columns: columns,
		rows:    rows,
		qualifiers: map[string]bool{
			tableOrders:     true,
			ordersRef.alias: true,
			tableUsers:      true,
			usersRef.alias:  true,
		},
		userAlias: usersRef.alias,
	}, nil
}

func joinsOnUserID(join joinClause, ordersRef, usersRef tableRef) bool {
	isOrderUser := func(c columnRef) bool {
		return (c.qualifier == ordersRef.alias || c.qualifier == tableOrders) && strings.EqualFold(c.name, "userId")
	}
	isUserID := func(c columnRef) bool {
		return (c.qualifier == usersRef.alias || c.qualifier == tableUsers) && strings.EqualFold(c.name, "id")
	}
	return (isOrderUser(join.left) && isUserID(join.other)) || (isUserID(join.left) && isOrderUser(join.other))
}

// star expands a wildcard. In the join, a wildcard qualified by the users
// side yields only the user fields carried by each order row.
func (r relation) star(qualifier string) ([]string, []int, error) {
	if qualifier != "" && !r.qualifiers[qualifier] {
		return nil, nil, fmt.Errorf("%w: unknown table %q", errUnsupported, qualifier)
	}
	var names []string
	var indexes []int
	if r.userAlias != "" && (qualifier == r.userAlias || qualifier == tableUsers) {
		for _, name := range []string{"id", "name", "email"} {
			mapped := joinedUserColumns[name]
			idx, ok := r.index(mapped)
			if !ok {
				return nil, nil, fmt.Errorf("%w: column %q of joined users", errUnsupported, name)
			}
			names = append(names, mapped)
			indexes = append(indexes, idx)
		}
		return names, indexes, nil
	}
	for i, name := range r.columns {
		names = append(names, name)
		indexes = append(indexes, i)
	}
	return names, indexes, nil
}

func (r relation) resolve(ref columnRef) (int, error) {
	if ref.qualifier != "" && !r.qualifiers[ref.qualifier] {
		return 0, fmt.Errorf("%w: unknown table %q", errUnsupported, ref.qualifier)
	}
	name := ref.name
	if r.userAlias != "" && (ref.qualifier == r.userAlias || ref.qualifier == tableUsers) {
		mapped, ok := joinedUserColumns[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%w: column %q of joined users", errUnsupported, name)
		}
		name = mapped
	}
	if idx, ok := r.index(name); ok {
		return idx, nil
	}
	if r.userAlias != "" && ref.qualifier == "" {
		if mapped, ok := joinedUserColumns[strings.ToLower(name)]; ok && mapped != "userId" {
			if idx, ok := r.index(mapped); ok {
				return idx, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown column %q", errUnsupported, ref.name)
}

func (r relation) index(name string) (int, bool) {
	for i, column := range r.columns {
		if strings.EqualFold(column, name) {
			return i, true
		}
	}
	return 0, false
}
