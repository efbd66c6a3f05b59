package compiler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/regulumdb/regulumdb/internal/frame"
)

// Frame validation error codes (E120-E139)
const (
	ErrMissingNamespace   = "E120" // @base or @schema is empty
	ErrUnknownFieldClass  = "E121" // field range names no base type, class or enum
	ErrBadDimensions      = "E122" // array dimensions below one
	ErrBadCardinality     = "E123" // negative bounds or min above max
	ErrUnknownParent      = "E124" // @inherits names no class
	ErrInheritanceCycle   = "E125" // class inherits from itself
	ErrEmptyEnum          = "E126" // enum without values
	ErrDuplicateEnumValue = "E127" // enum value listed twice
	ErrUnknownBaseType    = "E128" // xsd: type not supported
)

// ValidationError represents a frame validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateFrames checks a compiled schema for dangling references and bad
// shapes. It reports every problem, not just the first; the result is nil or
// a *multierror.Error whose entries are ValidationErrors.
func ValidateFrames(a *frame.AllFrames) error {
	var result *multierror.Error
	add := func(field, code, format string, args ...any) {
		result = multierror.Append(result, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if a.Context.Base == "" {
		add("@context.@base", ErrMissingNamespace, "@base must be set")
	}
	if a.Context.Schema == "" {
		add("@context.@schema", ErrMissingNamespace, "@schema must be set")
	}

	for _, name := range a.Names() {
		def, _ := a.Lookup(name)
		switch d := def.(type) {
		case *frame.ClassDefinition:
			validateClass(a, d, add)
		case *frame.EnumDefinition:
			if len(d.Values) == 0 {
				add(name+".@values", ErrEmptyEnum, "enum %q has no values", name)
			}
			seen := map[string]bool{}
			for _, v := range d.Values {
				if seen[v] {
					add(name+".@values", ErrDuplicateEnumValue, "value %q listed more than once", v)
				}
				seen[v] = true
			}
		}
	}

	return result.ErrorOrNil()
}

func validateClass(a *frame.AllFrames, c *frame.ClassDefinition, add func(field, code, format string, args ...any)) {
	for _, parent := range c.Inherits {
		if _, ok := a.Class(parent); !ok {
			add(c.Name+".@inherits", ErrUnknownParent, "unknown parent class %q", parent)
		}
	}
	if inheritsFrom(a, c.Name, c.Name, map[string]bool{}) {
		add(c.Name+".@inherits", ErrInheritanceCycle, "class %q inherits from itself", c.Name)
	}

	for _, f := range c.Fields {
		path := c.Name + "." + f.Name
		switch a.RangeKind(f.Def) {
		case frame.TypeUnknown:
			add(path, ErrUnknownFieldClass, "unknown class %q", f.Def.Class)
		case frame.TypeBase:
			if _, ok := frame.BaseTypeKind(f.Def.Class); !ok {
				add(path, ErrUnknownBaseType, "unsupported base type %q", f.Def.Class)
			}
		}

		switch f.Def.Kind {
		case frame.Array:
			if f.Def.Dimensions < 1 {
				add(path+".@dimensions", ErrBadDimensions, "dimensions must be at least 1, got %d", f.Def.Dimensions)
			}
		case frame.Cardinality:
			if f.Def.Min != nil && *f.Def.Min < 0 || f.Def.Max != nil && *f.Def.Max < 0 {
				add(path, ErrBadCardinality, "cardinality bounds must not be negative")
			}
			if f.Def.Min != nil && f.Def.Max != nil && *f.Def.Min > *f.Def.Max {
				add(path, ErrBadCardinality, "min cardinality %d exceeds max %d", *f.Def.Min, *f.Def.Max)
			}
		}
	}
}

func inheritsFrom(a *frame.AllFrames, start, target string, visited map[string]bool) bool {
	c, ok := a.Class(start)
	if !ok {
		return false
	}
	for _, parent := range c.Inherits {
		if parent == target {
			return true
		}
		if visited[parent] {
			continue
		}
		visited[parent] = true
		if inheritsFrom(a, parent, target, visited) {
			return true
		}
	}
	return false
}
