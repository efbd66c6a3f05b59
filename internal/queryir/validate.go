package queryir

import (
	"fmt"
	"strings"
)

// ValidationResult lists the structural problems found in a filter.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each defect with its location, e.g.
	// "edges[1] (_or).filters[0]: nil filter".
	Problems []string
}

// Error joins the problems into one message.
func (r ValidationResult) Error() string {
	return strings.Join(r.Problems, "; ")
}

// Validate checks that a filter is well formed: every combinator has
// operands, every edge names a property, every leaf has a comparison. The
// compiler only produces valid filters; Validate guards hand-built ones.
//
// Validate is a pure function with no side effects.
func Validate(f *FilterObject) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateObject("filter", f)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(at, format string, args ...any) {
	v.problems = append(v.problems, at+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateObject(at string, f *FilterObject) {
	if f == nil {
		v.addProblem(at, "nil filter")
		return
	}
	for i, e := range f.Edges {
		v.validateEdge(fmt.Sprintf("%s.edges[%d]", at, i), e)
	}
}

func (v *validator) validateEdge(at string, e Edge) {
	if e.Property == "" {
		v.addProblem(at, "edge without property")
	}
	at = fmt.Sprintf("%s (%s)", at, e.Property)

	switch val := e.Value.(type) {
	case *Required:
		v.validateObjectFilter(at, val.Object)
	case *Collection:
		if val.Op != SomeHave && val.Op != AllHave {
			v.addProblem(at, "unknown collection operator %d", val.Op)
		}
		v.validateObjectFilter(at, val.Object)
	case *And:
		v.validateOperands(at, "_and", val.Filters)
	case *Or:
		v.validateOperands(at, "_or", val.Filters)
	case *Not:
		v.validateObject(at+".filter", val.Filter)
	case nil:
		v.addProblem(at, "nil filter value")
	default:
		v.addProblem(at, "unknown filter value %T", val)
	}
}

func (v *validator) validateOperands(at, name string, filters []*FilterObject) {
	if len(filters) == 0 {
		v.addProblem(at, "%s without operands", name)
	}
	for i, f := range filters {
		v.validateObject(fmt.Sprintf("%s.filters[%d]", at, i), f)
	}
}

func (v *validator) validateObjectFilter(at string, o ObjectFilter) {
	switch obj := o.(type) {
	case *NodeFilter:
		v.validateObject(at+".node", obj.Filter)
	case *ValueFilter:
		v.validateFilterType(at+".value", obj.Type)
	case nil:
		v.addProblem(at, "nil object filter")
	default:
		v.addProblem(at, "unknown object filter %T", obj)
	}
}

func (v *validator) validateFilterType(at string, t FilterType) {
	switch ft := t.(type) {
	case *TextFilter:
		switch ft.Op.Kind {
		case TextRegex:
			if ft.Op.Regex == nil {
				v.addProblem(at, "regex operator without pattern")
			}
		case TextAllOfTerms, TextAnyOfTerms:
			if len(ft.Op.Terms) == 0 {
				v.addProblem(at, "%s without terms", ft.Op.Kind)
			}
		case TextStartsWith:
		default:
			v.addProblem(at, "unknown text operator %d", ft.Op.Kind)
		}
	case *BigIntFilter:
		if ft.Value == nil {
			v.addProblem(at, "big integer filter without operand")
		}
	case *DecimalFilter:
		if ft.Value == nil {
			v.addProblem(at, "decimal filter without operand")
		}
	case *BoolFilter:
		if ft.Op != Eq && ft.Op != Ne {
			v.addProblem(at, "boolean filter supports eq and ne, got %s", ft.Op)
		}
	case *EnumFilter:
		if ft.Value == "" {
			v.addProblem(at, "enum filter without value")
		}
	case *IntFilter, *FloatFilter, *DateTimeFilter, *StringFilter:
	case nil:
		v.addProblem(at, "nil filter type")
	default:
		v.addProblem(at, "unknown filter type %T", ft)
	}
}
