package memory

import (
	"errors"
	"fmt"
	"strconv"
)

var errUnsupported = errors.New("unsupported query shape")

type predicateKind int

const (
	predicateEquals predicateKind = iota
	predicateLessThan
	predicateGreaterThan
)

type literalKind int

const (
	literalString literalKind = iota
	literalNumber
	literalBool
)

type literal struct {
	kind   literalKind
	text   string
	number float64
	flag   bool
}

type columnRef struct {
	qualifier string
	name      string
}

type projectionItem struct {
	column columnRef
	// all selects every column of the source, for * and alias.*.
	all   bool
	count bool
	alias string
}

type predicate struct {
	kind   predicateKind
	column columnRef
	value  literal
}

type tableRef struct {
	name  string
	alias string
}

type joinClause struct {
	right tableRef
	left  columnRef
	other columnRef
}

type ordering struct {
	column     columnRef
	descending bool
}

type statement struct {
	projection []projectionItem
	from       tableRef
	join       *joinClause
	where      []predicate
	orderBy    *ordering
	limit      int
}

var reservedAfterTable = map[string]bool{
	"join": true, "inner": true, "where": true, "order": true, "limit": true, "on": true,
	"left": true, "right": true, "group": true, "as": true,
}

type parser struct {
	tokens []token
	pos    int
}

func parse(sql string) (statement, error) {
	tokens, err := lex(sql)
	if err != nil {
		return statement{}, err
	}
	p := &parser{tokens: tokens}
	return p.statement()
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind tokenKind, text string) bool {
	if p.peek().is(kind, text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind, text string) error {
	if !p.accept(kind, text) {
		return fmt.Errorf("%w: expected %q near %q", errUnsupported, text, p.peek().text)
	}
	return nil
}

func (p *parser) statement() (statement, error) {
	stmt := statement{limit: -1}
	if err := p.expect(tokIdent, "select"); err != nil {
		return stmt, err
	}
	projection, err := p.projection()
	if err != nil {
		return stmt, err
	}
	stmt.projection = projection
	if err := p.expect(tokIdent, "from"); err != nil {
		return stmt, err
	}
	if stmt.from, err = p.tableRef(); err != nil {
		return stmt, err
	}

	if p.peek().keyword("inner") || p.peek().keyword("join") {
		p.accept(tokIdent, "inner")
		if err := p.expect(tokIdent, "join"); err != nil {
			return stmt, err
		}
		right, err := p.tableRef()
		if err != nil {
			return stmt, err
		}
		if err := p.expect(tokIdent, "on"); err != nil {
			return stmt, err
		}
		left, err := p.columnRef()
		if err != nil {
			return stmt, err
		}
		if err := p.expect(tokSymbol, "="); err != nil {
			return stmt, err
		}
		other, err := p.columnRef()
		if err != nil {
			return stmt, err
		}
		stmt.join = &joinClause{right: right, left: left, other: other}
	}

	if p.accept(tokIdent, "where") {
		for {
			pred, err := p.predicate()
			if err != nil {
				return stmt, err
			}
			stmt.where = append(stmt.where, pred)
			if !p.accept(tokIdent, "and") {
				break
			}
		}
	}

	if p.accept(tokIdent, "order") {
		if err := p.expect(tokIdent, "by"); err != nil {
			return stmt, err
		}
		column, err := p.columnRef()
		if err != nil {
			return stmt, err
		}
		order := &ordering{column: column}
		if p.accept(tokIdent, "desc") {
			order.descending = true
		} else {
			p.accept(tokIdent, "asc")
		}
		stmt.orderBy = order
	}

	if p.accept(tokIdent, "limit") {
		tok := p.next()
		if tok.kind != tokNumber {
			return stmt, fmt.Errorf("%w: LIMIT requires a number", errUnsupported)
		}
		limit, err := strconv.Atoi(tok.text)
		if err != nil || limit < 0 {
			return stmt, fmt.Errorf("%w: invalid LIMIT %q", errUnsupported, tok.text)
		}
		stmt.limit = limit
	}

	for p.accept(tokSymbol, ";") {
	}
	if p.peek().kind != tokEOF {
		return stmt, fmt.Errorf("%w: unexpected %q", errUnsupported, p.peek().text)
	}
	return stmt, nil
}

func (p *parser) projection() ([]projectionItem, error) {
	var items []projectionItem
	for {
		item, err := p.projectionItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.accept(tokSymbol, ",") {
			return items, nil
		}
	}
}

func (p *parser) projectionItem() (projectionItem, error) {
	if p.accept(tokSymbol, "*") {
		return projectionItem{all: true}, nil
	}
	if p.peek().keyword("count") && p.tokens[p.pos+1].is(tokSymbol, "(") {
		p.pos += 2
		if err := p.expect(tokSymbol, "*"); err != nil {
			return projectionItem{}, err
		}
		if err := p.expect(tokSymbol, ")"); err != nil {
			return projectionItem{}, err
		}
		item := projectionItem{count: true, alias: "count"}
		if alias, ok := p.alias(); ok {
			item.alias = alias
		}
		return item, nil
	}

	first := p.next()
	if !isName(first) {
		return projectionItem{}, fmt.Errorf("%w: unexpected %q in select list", errUnsupported, first.text)
	}
	item := projectionItem{column: columnRef{name: first.text}}
	if p.accept(tokSymbol, ".") {
		if p.accept(tokSymbol, "*") {
			return projectionItem{all: true, column: columnRef{qualifier: first.text}}, nil
		}
		second := p.next()
		if !isName(second) {
			return projectionItem{}, fmt.Errorf("%w: expected column after %q", errUnsupported, first.text)
		}
		item.column = columnRef{qualifier: first.text, name: second.text}
	}
	if alias, ok := p.alias(); ok {
		item.alias = alias
	}
	return item, nil
}

func (p *parser) alias() (string, bool) {
	if p.accept(tokIdent, "as") {
		tok := p.next()
		if !isName(tok) {
			return "", false
		}
		return tok.text, true
	}
	if tok := p.peek(); tok.kind == tokQuotedIdent {
		p.pos++
		return tok.text, true
	}
	return "", false
}

func (p *parser) tableRef() (tableRef, error) {
	tok := p.next()
	if !isName(tok) {
		return tableRef{}, fmt.Errorf("%w: expected table name", errUnsupported)
	}
	ref := tableRef{name: tok.text, alias: tok.text}
	p.accept(tokIdent, "as")
	if next := p.peek(); next.kind == tokIdent && !reservedAfterTable[next.text] {
		ref.alias = next.text
		p.pos++
	}
	return ref, nil
}

func (p *parser) columnRef() (columnRef, error) {
	first := p.next()
	if !isName(first) {
		return columnRef{}, fmt.Errorf("%w: expected column", errUnsupported)
	}
	if !p.accept(tokSymbol, ".") {
		return columnRef{name: first.text}, nil
	}
	second := p.next()
	if !isName(second) {
		return columnRef{}, fmt.Errorf("%w: expected column after %q", errUnsupported, first.text)
	}
	return columnRef{qualifier: first.text, name: second.text}, nil
}

func (p *parser) predicate() (predicate, error) {
	column, err := p.columnRef()
	if err != nil {
		return predicate{}, err
	}
	op := p.next()
	var kind predicateKind
	switch {
	case op.is(tokSymbol, "="):
		kind = predicateEquals
	case op.is(tokSymbol, "<"):
		kind = predicateLessThan
	case op.is(tokSymbol, ">"):
		kind = predicateGreaterThan
	default:
		return predicate{}, fmt.Errorf("%w: operator %q", errUnsupported, op.text)
	}
	value, err := p.literal()
	if err != nil {
		return predicate{}, err
	}
	return predicate{kind: kind, column: column, value: value}, nil
}

func (p *parser) literal() (literal, error) {
	tok := p.next()
	switch {
	case tok.kind == tokString:
		return literal{kind: literalString, text: tok.text}, nil
	case tok.kind == tokNumber:
		number, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return literal{}, fmt.Errorf("%w: number %q", errUnsupported, tok.text)
		}
		return literal{kind: literalNumber, text: tok.text, number: number}, nil
	case tok.keyword("true"), tok.keyword("false"):
		return literal{kind: literalBool, text: tok.text, flag: tok.text == "true"}, nil
	default:
		return literal{}, fmt.Errorf("%w: unexpected %q in predicate", errUnsupported, tok.text)
	}
}

func isName(tok token) bool {
	return tok.kind == tokIdent || tok.kind == tokQuotedIdent
}
