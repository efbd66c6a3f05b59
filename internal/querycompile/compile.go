package querycompile

import (
	"slices"
	"strconv"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/ir"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

// Structural input keys.
const (
	keyAnd         = "_and"
	keyOr          = "_or"
	keyNot         = "_not"
	keyRestriction = "_restriction"
)

// CompileFilter compiles input against class. input must be an object.
func CompileFilter(frames *frame.AllFrames, class string, input ir.IRValue) (*queryir.FilterObject, error) {
	if _, ok := frames.Class(class); !ok {
		return nil, errorf("", "unknown class %q", class)
	}
	obj, ok := input.(*ir.IRObject)
	if !ok {
		return nil, errorf("", "filter must be an object, got %s", describe(input))
	}
	c := &compiler{frames: frames}
	return c.compileEdges(class, obj, "")
}

type compiler struct {
	frames *frame.AllFrames
}

func (c *compiler) compileEdges(class string, obj *ir.IRObject, at string) (*queryir.FilterObject, error) {
	f := &queryir.FilterObject{}
	for key, val := range obj.All() {
		field := join(at, key)
		switch key {
		case keyAnd, keyOr:
			filters, err := c.compileOperands(class, val, field)
			if err != nil {
				return nil, err
			}
			var v queryir.FilterValue = &queryir.And{Filters: filters}
			if key == keyOr {
				v = &queryir.Or{Filters: filters}
			}
			f.Edges = append(f.Edges, queryir.Edge{Property: key, Value: v})
		case keyNot:
			sub, ok := val.(*ir.IRObject)
			if !ok {
				return nil, errorf(field, "expected an object, got %s", describe(val))
			}
			inner, err := c.compileEdges(class, sub, field)
			if err != nil {
				return nil, err
			}
			f.Edges = append(f.Edges, queryir.Edge{Property: key, Value: &queryir.Not{Filter: inner}})
		case keyRestriction:
			name, ok := val.(ir.IRString)
			if !ok || name == "" {
				return nil, errorf(field, "expected a restriction name, got %s", describe(val))
			}
			f.Restriction = string(name)
		default:
			edge, err := c.compileField(class, key, val, field)
			if err != nil {
				return nil, err
			}
			f.Edges = append(f.Edges, edge)
		}
	}
	return f, nil
}

func (c *compiler) compileOperands(class string, val ir.IRValue, at string) ([]*queryir.FilterObject, error) {
	list, ok := val.(ir.IRArray)
	if !ok {
		return nil, errorf(at, "expected a list of filters, got %s", describe(val))
	}
	out := make([]*queryir.FilterObject, 0, len(list))
	for i, elem := range list {
		field := join(at, strconv.Itoa(i))
		sub, ok := elem.(*ir.IRObject)
		if !ok {
			return nil, errorf(field, "expected an object, got %s", describe(elem))
		}
		inner, err := c.compileEdges(class, sub, field)
		if err != nil {
			return nil, err
		}
		out = append(out, inner)
	}
	return out, nil
}

func (c *compiler) compileField(class, name string, val ir.IRValue, at string) (queryir.Edge, error) {
	def, ok := c.frames.ResolveField(class, name)
	if !ok {
		return queryir.Edge{}, errorf(at, "class %s has no field %q", class, name)
	}
	edge := queryir.Edge{Property: c.frames.PropertyIRI(name)}

	if !def.Kind.IsCollection() {
		of, err := c.compileTyped(def.Class, val, at)
		if err != nil {
			return queryir.Edge{}, err
		}
		edge.Value = &queryir.Required{Object: of}
		return edge, nil
	}

	obj, ok := val.(*ir.IRObject)
	if !ok || obj.Len() != 1 {
		return queryir.Edge{}, errorf(at, "collection filter needs exactly one of someHave or allHave")
	}
	key := obj.Keys()[0]
	op, ok := queryir.ParseCollectionOp(key)
	if !ok {
		return queryir.Edge{}, errorf(at, "unknown collection operator %q", key)
	}
	inner, _ := obj.Get(key)
	of, err := c.compileTyped(def.Class, inner, join(at, key))
	if err != nil {
		return queryir.Edge{}, err
	}
	edge.Value = &queryir.Collection{Op: op, Object: of}
	return edge, nil
}

// compileTyped compiles the test applied to one object of a field whose
// range is rangeClass.
func (c *compiler) compileTyped(rangeClass string, val ir.IRValue, at string) (queryir.ObjectFilter, error) {
	obj, ok := val.(*ir.IRObject)
	if !ok {
		return nil, errorf(at, "expected an object, got %s", describe(val))
	}

	switch c.frames.RangeKind(frame.FieldDefinition{Class: rangeClass}) {
	case frame.TypeBase:
		ft, err := compileBase(rangeClass, obj, at)
		if err != nil {
			return nil, err
		}
		return &queryir.ValueFilter{Type: ft}, nil
	case frame.TypeClass:
		inner, err := c.compileEdges(rangeClass, obj, at)
		if err != nil {
			return nil, err
		}
		return &queryir.NodeFilter{Filter: inner, Class: rangeClass}, nil
	case frame.TypeEnum:
		ft, err := c.compileEnum(rangeClass, obj, at)
		if err != nil {
			return nil, err
		}
		return &queryir.ValueFilter{Type: ft}, nil
	default:
		return nil, errorf(at, "field range %q is not a known type", rangeClass)
	}
}

func (c *compiler) compileEnum(enum string, obj *ir.IRObject, at string) (*queryir.EnumFilter, error) {
	if err := checkOperandKeys(obj, at, "eq", "ne"); err != nil {
		return nil, err
	}
	key, val, ok := firstOperand(obj, "eq", "ne")
	if !ok {
		return nil, errorf(at, "no operator given, expected eq or ne")
	}
	field := join(at, key)
	s, ok := val.(ir.IRString)
	if !ok {
		return nil, errorf(field, "expected a %s value, got %s", enum, describe(val))
	}
	def, _ := c.frames.Enum(enum)
	if !slices.Contains(def.Values, string(s)) {
		return nil, errorf(field, "%q is not a value of %s", string(s), enum)
	}
	op := queryir.EnumEq
	if key == "ne" {
		op = queryir.EnumNe
	}
	return &queryir.EnumFilter{Op: op, Value: c.frames.EnumValueIRI(enum, string(s)), Enum: enum}, nil
}
