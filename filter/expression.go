package filter

import (
	"fmt"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/common/utils"
)

// FieldRef names a schema field used by an expression.
type FieldRef struct {
	Name string
}

// Expression is a boolean scan predicate. Bind resolves every field
// reference against a concrete schema; an unbound expression must not be
// handed to readers.
type Expression interface {
	Bind(schema *arrow.Schema) (Expression, error)
	Bound() bool
	FieldRefs() []FieldRef
	String() string
}

// FieldsInExpression returns the field references of expr in
// left-to-right order.
func FieldsInExpression(expr Expression) []FieldRef {
	if expr == nil {
		return nil
	}
	return expr.FieldRefs()
}

// Literal is a constant expression. Scanners use Literal(true) as the
// match-everything default filter.
type Literal struct {
	Value interface{}
}

var _ Expression = (*Literal)(nil)

func NewLiteral(value interface{}) *Literal {
	return &Literal{Value: value}
}

// True returns the match-everything predicate.
func True() *Literal {
	return NewLiteral(true)
}

func (l *Literal) Bind(*arrow.Schema) (Expression, error) {
	return l, nil
}

func (l *Literal) Bound() bool {
	return true
}

func (l *Literal) FieldRefs() []FieldRef {
	return nil
}

func (l *Literal) String() string {
	return fmt.Sprintf("%v", l.Value)
}

// Comparison compares a named column against a constant.
type Comparison struct {
	Op     ComparisonType
	Column string
	Value  interface{}

	fieldIndex int
	fieldType  arrow.DataType
	bound      bool
}

var _ Expression = (*Comparison)(nil)

func NewComparison(op ComparisonType, column string, value interface{}) *Comparison {
	return &Comparison{Op: op, Column: column, Value: value, fieldIndex: -1}
}

func (c *Comparison) Bind(schema *arrow.Schema) (Expression, error) {
	idx, err := utils.FindFieldIndex(schema, c.Column)
	if err != nil {
		return nil, err
	}
	field := schema.Field(idx)
	if err := NewConstantFilter(c.Op, c.Column, c.Value).CheckDataType(field.Type); err != nil {
		return nil, err
	}
	bound := *c
	bound.fieldIndex = idx
	bound.fieldType = field.Type
	bound.bound = true
	return &bound, nil
}

func (c *Comparison) Bound() bool {
	return c.bound
}

// FieldIndex is the schema field index resolved by Bind.
func (c *Comparison) FieldIndex() int {
	return c.fieldIndex
}

// FieldType is the schema field type resolved by Bind.
func (c *Comparison) FieldType() arrow.DataType {
	return c.fieldType
}

func (c *Comparison) FieldRefs() []FieldRef {
	return []FieldRef{{Name: c.Column}}
}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %v)", c.Column, c.Op, c.Value)
}

type LogicalOp int8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// Logical combines two expressions with and/or.
type Logical struct {
	Op    LogicalOp
	Left  Expression
	Right Expression
}

var _ Expression = (*Logical)(nil)

func NewAnd(left, right Expression) *Logical {
	return &Logical{Op: LogicalAnd, Left: left, Right: right}
}

func NewOr(left, right Expression) *Logical {
	return &Logical{Op: LogicalOr, Left: left, Right: right}
}

func (l *Logical) Bind(schema *arrow.Schema) (Expression, error) {
	left, err := l.Left.Bind(schema)
	if err != nil {
		return nil, err
	}
	right, err := l.Right.Bind(schema)
	if err != nil {
		return nil, err
	}
	return &Logical{Op: l.Op, Left: left, Right: right}, nil
}

func (l *Logical) Bound() bool {
	return l.Left.Bound() && l.Right.Bound()
}

func (l *Logical) FieldRefs() []FieldRef {
	return append(l.Left.FieldRefs(), l.Right.FieldRefs()...)
}

func (l *Logical) String() string {
	op := "and"
	if l.Op == LogicalOr {
		op = "or"
	}
	return fmt.Sprintf("(%s %s %s)", l.Left, op, l.Right)
}

// PushdownFilters extracts the per-column filters of a bound expression
// that can be pushed into file readers. Only conjunctions of comparisons
// are pushable; disjunctions and literals contribute nothing and are left
// to be evaluated elsewhere.
func PushdownFilters(expr Expression) ([]Filter, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil
	case *Literal:
		return nil, nil
	case *Comparison:
		if !e.bound {
			return nil, errors.Wrap(lakeerr.ErrUnboundExpression, e.String())
		}
		return []Filter{NewConstantFilter(e.Op, e.Column, e.Value)}, nil
	case *Logical:
		if e.Op == LogicalOr {
			return nil, nil
		}
		left, err := PushdownFilters(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := PushdownFilters(e.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	default:
		return nil, nil
	}
}
