package sql

import (
	"strings"

	"github.com/nickyhof/TypedSQL/core"
)

type StatementType int

const (
	SelectStatementType StatementType = iota
	DeleteStatementType
	WhereStatementType
	OrderByStatementType
)

func (t StatementType) String() string {
	switch t {
	case SelectStatementType:
		return "SELECT"
	case DeleteStatementType:
		return "DELETE"
	case WhereStatementType:
		return "WHERE"
	case OrderByStatementType:
		return "ORDER BY"
	default:
		return "UNKNOWN"
	}
}

// Statement is one node of a query chain. The set of implementations is
// closed: SelectStatement and DeleteStatement are leaves, WhereStatement and
// OrderByStatement each refine exactly one source statement.
type Statement interface {
	Type() StatementType
	statement()
}

type SelectStatement struct {
	Table string
}

type DeleteStatement struct {
	Table string
}

type WhereStatement struct {
	Source    Statement
	Condition WhereCondition
}

type OrderByStatement struct {
	Source    Statement
	Columns   []string
	Direction OrderDirection
}

func (SelectStatement) Type() StatementType  { return SelectStatementType }
func (DeleteStatement) Type() StatementType  { return DeleteStatementType }
func (WhereStatement) Type() StatementType   { return WhereStatementType }
func (OrderByStatement) Type() StatementType { return OrderByStatementType }

func (SelectStatement) statement()  {}
func (DeleteStatement) statement()  {}
func (WhereStatement) statement()   {}
func (OrderByStatement) statement() {}

type WhereOperator int

const (
	EqualsOperator WhereOperator = iota
	NotEqualsOperator
	GreaterThanOperator
	LessThanOperator
	GreaterThanOrEqualOperator
	LessThanOrEqualOperator
	LikeOperator
	BetweenOperator
	InOperator
)

func (op WhereOperator) String() string {
	switch op {
	case EqualsOperator:
		return "="
	case NotEqualsOperator:
		return "<>"
	case GreaterThanOperator:
		return ">"
	case LessThanOperator:
		return "<"
	case GreaterThanOrEqualOperator:
		return ">="
	case LessThanOrEqualOperator:
		return "<="
	case LikeOperator:
		return "LIKE"
	case BetweenOperator:
		return "BETWEEN"
	case InOperator:
		return "IN"
	default:
		return "?"
	}
}

// IsOrdering reports whether the operator compares magnitudes and so needs
// numeric operands.
func (op WhereOperator) IsOrdering() bool {
	switch op {
	case GreaterThanOperator, LessThanOperator, GreaterThanOrEqualOperator, LessThanOrEqualOperator, BetweenOperator:
		return true
	default:
		return false
	}
}

// Arity returns the number of operands the operator takes; max is -1 when unbounded.
func (op WhereOperator) Arity() (min, max int) {
	switch op {
	case BetweenOperator:
		return 2, 2
	case InOperator:
		return 1, -1
	default:
		return 1, 1
	}
}

type WhereCondition struct {
	Column   string
	Operator WhereOperator
	Values   []core.Value
}

type OrderDirection int

const (
	NoDirection OrderDirection = iota
	Ascending
	Descending
)

func (d OrderDirection) String() string {
	switch d {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return ""
	}
}

// Root returns the leaf at the bottom of a chain.
func Root(statement Statement) Statement {
	for {
		switch s := statement.(type) {
		case WhereStatement:
			statement = s.Source
		case OrderByStatement:
			statement = s.Source
		default:
			return statement
		}
	}
}

// TableOf returns the table the chain's leaf is bound to.
func TableOf(statement Statement) string {
	switch s := Root(statement).(type) {
	case SelectStatement:
		return s.Table
	case DeleteStatement:
		return s.Table
	default:
		return ""
	}
}

// HasWhere reports whether any node of the chain is a WhereStatement.
func HasWhere(statement Statement) bool {
	return contains(statement, WhereStatementType)
}

// HasOrderBy reports whether any node of the chain is an OrderByStatement.
func HasOrderBy(statement Statement) bool {
	return contains(statement, OrderByStatementType)
}

func contains(statement Statement, kind StatementType) bool {
	for statement != nil {
		if statement.Type() == kind {
			return true
		}
		switch s := statement.(type) {
		case WhereStatement:
			statement = s.Source
		case OrderByStatement:
			statement = s.Source
		default:
			return false
		}
	}
	return false
}

// Render produces the SQL text of a chain. Clauses appear in the order the
// chain was built; identical chains render identical text.
func Render(statement Statement) string {
	var b strings.Builder
	render(&b, statement)
	return b.String()
}

func render(b *strings.Builder, statement Statement) {
	switch s := statement.(type) {
	case SelectStatement:
		b.WriteString("SELECT * FROM ")
		b.WriteString(s.Table)
	case DeleteStatement:
		b.WriteString("DELETE FROM ")
		b.WriteString(s.Table)
	case WhereStatement:
		render(b, s.Source)
		if HasWhere(s.Source) {
			b.WriteString(" AND ")
		} else {
			b.WriteString(" WHERE ")
		}
		renderCondition(b, s.Condition)
	case OrderByStatement:
		render(b, s.Source)
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.Columns, ", "))
		if s.Direction != NoDirection {
			b.WriteByte(' ')
			b.WriteString(s.Direction.String())
		}
	}
}

func renderCondition(b *strings.Builder, c WhereCondition) {
	b.WriteString(c.Column)
	switch c.Operator {
	case EqualsOperator, NotEqualsOperator:
		if len(c.Values) == 1 && c.Values[0].IsNull() {
			if c.Operator == EqualsOperator {
				b.WriteString(" IS NULL")
			} else {
				b.WriteString(" IS NOT NULL")
			}
			return
		}
		b.WriteString(c.Operator.String())
		b.WriteString(c.Values[0].Literal())
	case LikeOperator:
		b.WriteString(" LIKE ")
		b.WriteString(c.Values[0].Literal())
	case BetweenOperator:
		b.WriteString(" BETWEEN ")
		b.WriteString(c.Values[0].Literal())
		b.WriteString(" AND ")
		b.WriteString(c.Values[1].Literal())
	case InOperator:
		b.WriteString(" IN (")
		for i, v := range c.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.Literal())
		}
		b.WriteByte(')')
	default:
		b.WriteString(c.Operator.String())
		b.WriteString(c.Values[0].Literal())
	}
}
