// Package gqlinput reads GraphQL input value literals, the syntax clients
// write filters and orderings in, into ordered ir values.
//
//	{title: {startsWith: "The"}, _or: [{pages: {gt: 300}}, {genre: {eq: fiction}}]}
//
// Enum literals (fiction, ASC) become strings. Object keys keep their
// written order.
package gqlinput

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/regulumdb/regulumdb/internal/ir"
)

// The literal is parsed as the argument of a throwaway query so the
// GraphQL parser does the lexing.
const (
	wrapPrefix = "{ f(v: "
	wrapSuffix = "\n) }"
)

// Error is a problem in a literal. Line and Column are 1-based positions in
// the literal itself; zero means unknown.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return "graphql input: " + e.Message
	}
	return fmt.Sprintf("graphql input %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse reads one input value literal. Variables are rejected.
func Parse(literal string) (ir.IRValue, error) {
	return ParseWithVariables(literal, nil)
}

// ParseWithVariables reads one input value literal, replacing $name
// references with vars[name].
func ParseWithVariables(literal string, vars map[string]ir.IRValue) (ir.IRValue, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: wrapPrefix + literal + wrapSuffix})
	if err != nil {
		return nil, parseError(err)
	}

	if len(doc.Operations) != 1 || len(doc.Operations[0].SelectionSet) != 1 {
		return nil, &Error{Message: "expected a single value"}
	}
	field, ok := doc.Operations[0].SelectionSet[0].(*ast.Field)
	if !ok || len(field.Arguments) != 1 {
		return nil, &Error{Message: "expected a single value"}
	}

	c := &converter{vars: vars}
	return c.convert(field.Arguments[0].Value)
}

func parseError(err error) error {
	var gqlErr *gqlerror.Error
	if !errors.As(err, &gqlErr) {
		return &Error{Message: err.Error()}
	}
	e := &Error{Message: gqlErr.Message}
	if len(gqlErr.Locations) > 0 {
		e.Line, e.Column = literalPosition(gqlErr.Locations[0].Line, gqlErr.Locations[0].Column)
	}
	return e
}

// literalPosition maps a position in the wrapped query back to the literal.
func literalPosition(line, column int) (int, int) {
	if line == 1 {
		column -= len(wrapPrefix)
		if column < 1 {
			column = 1
		}
	}
	return line, column
}

func position(v *ast.Value) (int, int) {
	if v.Position == nil {
		return 0, 0
	}
	return literalPosition(v.Position.Line, v.Position.Column)
}

type converter struct {
	vars map[string]ir.IRValue
}

func (c *converter) errorf(v *ast.Value, format string, args ...any) error {
	line, col := position(v)
	return &Error{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (c *converter) convert(v *ast.Value) (ir.IRValue, error) {
	switch v.Kind {
	case ast.NullValue:
		return ir.IRNull{}, nil
	case ast.BooleanValue:
		return ir.IRBool(v.Raw == "true"), nil
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return ir.IRString(v.Raw), nil
	case ast.IntValue:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return ir.IRInt(n), nil
		}
		return ir.IRNumber(v.Raw), nil
	case ast.FloatValue:
		return floatValue(v.Raw), nil
	case ast.Variable:
		val, ok := c.vars[v.Raw]
		if !ok {
			return nil, c.errorf(v, "variable $%s is not defined", v.Raw)
		}
		return val, nil
	case ast.ListValue:
		arr := make(ir.IRArray, 0, len(v.Children))
		for _, child := range v.Children {
			elem, err := c.convert(child.Value)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case ast.ObjectValue:
		obj := ir.NewIRObject()
		for _, child := range v.Children {
			if _, dup := obj.Get(child.Name); dup {
				return nil, c.errorf(child.Value, "field %q given twice", child.Name)
			}
			val, err := c.convert(child.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(child.Name, val)
		}
		return obj, nil
	default:
		return nil, c.errorf(v, "unsupported value %q", v.Raw)
	}
}

// floatValue keeps the lexical form when float64 would change it, so
// decimal operands like 12.50 reach the compiler intact.
func floatValue(raw string) ir.IRValue {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || strconv.FormatFloat(f, 'g', -1, 64) != raw {
		return ir.IRNumber(raw)
	}
	return ir.IRFloat(f)
}
