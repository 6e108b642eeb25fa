package main

import (
	"fmt"
	"strings"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/sql"
)

type token struct {
	text   string
	quoted bool
}

// is reports whether tok is the unquoted keyword kw.
func (tok token) is(kw string) bool {
	return !tok.quoted && strings.EqualFold(tok.text, kw)
}

// value converts tok to a value of col's type. Unquoted null is NULL;
// quoted text keeps an empty string as text.
func (tok token) value(col core.Column) (core.Value, error) {
	if tok.is("null") {
		return core.Null, nil
	}
	if tok.quoted {
		if _, ok := col.Type().(core.CharType); ok {
			return core.Text(tok.text), nil
		}
	}
	return col.Type().Parse(tok.text)
}

// tokenize splits command arguments on whitespace, commas and parentheses.
// Runs of comparison characters form their own token.
func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == ',' || ch == '(' || ch == ')':
			i++

		case ch == '\'':
			var b strings.Builder
			i++
			for {
				if i >= len(input) {
					return nil, fmt.Errorf("%w: unterminated quote", core.ErrInvalidArgument)
				}
				if input[i] == '\'' {
					if i+1 < len(input) && input[i+1] == '\'' {
						b.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				b.WriteByte(input[i])
				i++
			}
			tokens = append(tokens, token{text: b.String(), quoted: true})

		case strings.IndexByte("<>=!", ch) >= 0:
			start := i
			for i < len(input) && strings.IndexByte("<>=!", input[i]) >= 0 {
				i++
			}
			tokens = append(tokens, token{text: input[start:i]})

		default:
			start := i
			for i < len(input) && strings.IndexByte(" \t,()'<>=!", input[i]) < 0 {
				i++
			}
			tokens = append(tokens, token{text: input[start:i]})
		}
	}
	return tokens, nil
}

var comparisons = map[string]sql.WhereOperator{
	"=":  sql.EqualsOperator,
	"<>": sql.NotEqualsOperator,
	"!=": sql.NotEqualsOperator,
	">":  sql.GreaterThanOperator,
	"<":  sql.LessThanOperator,
	">=": sql.GreaterThanOrEqualOperator,
	"<=": sql.LessThanOrEqualOperator,
}

type queryParser struct {
	q      db.Query
	tokens []token
	pos    int
}

// parseQuery applies "[where cond {and cond}] [order by col {, col} [asc|desc]]"
// to q.
func parseQuery(q db.Query, input string) (db.Query, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return q, err
	}
	p := &queryParser{q: q, tokens: tokens}

	if p.accept("where") {
		for {
			if err := p.condition(); err != nil {
				return q, err
			}
			if !p.accept("and") {
				break
			}
		}
	}

	if p.accept("order") {
		if !p.accept("by") {
			return q, p.errorf("expected BY after ORDER")
		}
		if err := p.orderBy(); err != nil {
			return q, err
		}
	}

	if !p.done() {
		return q, p.errorf("unexpected %q", p.peek().text)
	}
	return p.q, nil
}

func (p *queryParser) done() bool { return p.pos >= len(p.tokens) }

func (p *queryParser) peek() token {
	if p.done() {
		return token{}
	}
	return p.tokens[p.pos]
}

func (p *queryParser) next() (token, error) {
	if p.done() {
		return token{}, p.errorf("unexpected end of input")
	}
	p.pos++
	return p.tokens[p.pos-1], nil
}

func (p *queryParser) accept(kw string) bool {
	if !p.done() && p.peek().is(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *queryParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func (p *queryParser) condition() error {
	name, err := p.next()
	if err != nil {
		return err
	}
	col, err := p.q.Table().Schema().ColumnNamed(name.text)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}

	opTok, err := p.next()
	if err != nil {
		return err
	}

	var op sql.WhereOperator
	var values []core.Value
	switch {
	case opTok.is("is"):
		op = sql.EqualsOperator
		if p.accept("not") {
			op = sql.NotEqualsOperator
		}
		if !p.accept("null") {
			return p.errorf("expected NULL after IS")
		}
		values = []core.Value{core.Null}

	case opTok.is("like"):
		op = sql.LikeOperator
		values, err = p.values(col, 1)

	case opTok.is("between"):
		op = sql.BetweenOperator
		var lower, upper []core.Value
		if lower, err = p.values(col, 1); err != nil {
			return err
		}
		if !p.accept("and") {
			return p.errorf("expected AND in BETWEEN")
		}
		if upper, err = p.values(col, 1); err != nil {
			return err
		}
		values = append(lower, upper...)

	case opTok.is("in"):
		op = sql.InOperator
		for !p.done() && !p.peek().is("and") && !p.peek().is("order") {
			v, err := p.values(col, 1)
			if err != nil {
				return err
			}
			values = append(values, v...)
		}

	default:
		cmp, ok := comparisons[opTok.text]
		if opTok.quoted || !ok {
			return p.errorf("unknown operator %q", opTok.text)
		}
		op = cmp
		values, err = p.values(col, 1)
	}
	if err != nil {
		return err
	}

	p.q, err = p.q.WhereColumn(col, op, values...)
	return err
}

func (p *queryParser) values(col core.Column, n int) ([]core.Value, error) {
	values := make([]core.Value, n)
	for i := range values {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if values[i], err = tok.value(col); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (p *queryParser) orderBy() error {
	var columns []string
	direction := sql.NoDirection
	for !p.done() {
		switch {
		case p.accept("asc"):
			direction = sql.Ascending
		case p.accept("desc"):
			direction = sql.Descending
		default:
			tok, _ := p.next()
			columns = append(columns, tok.text)
			continue
		}
		break
	}

	var err error
	p.q, err = p.q.OrderBy(direction, columns...)
	return err
}
