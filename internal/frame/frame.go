package frame

import (
	"fmt"
	"net/url"
	"slices"
)

// FieldKind is the cardinality shape of a class field.
type FieldKind int

const (
	Required FieldKind = iota
	Optional
	Set
	List
	Array
	Cardinality
)

func (k FieldKind) String() string {
	switch k {
	case Required:
		return "Required"
	case Optional:
		return "Optional"
	case Set:
		return "Set"
	case List:
		return "List"
	case Array:
		return "Array"
	case Cardinality:
		return "Cardinality"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ParseFieldKind maps a frame @type keyword to a FieldKind.
func ParseFieldKind(s string) (FieldKind, bool) {
	switch s {
	case "Optional":
		return Optional, true
	case "Set":
		return Set, true
	case "List":
		return List, true
	case "Array":
		return Array, true
	case "Cardinality":
		return Cardinality, true
	default:
		return 0, false
	}
}

// IsCollection reports whether a field holds zero or more values.
func (k FieldKind) IsCollection() bool {
	return k == Set || k == List || k == Array || k == Cardinality
}

// FieldDefinition is one property of a class.
type FieldDefinition struct {
	Kind FieldKind
	// Class is the field's range as written in the frame: an "xsd:" base
	// type, a class name or an enum name.
	Class      string
	Dimensions int
	Min, Max   *int
}

// Field pairs a property name with its definition.
type Field struct {
	Name string
	Def  FieldDefinition
}

// TypeDefinition is a sealed interface over the top-level frame entries.
type TypeDefinition interface {
	TypeName() string
	typeDefinition()
}

// ClassDefinition is a class frame.
type ClassDefinition struct {
	Name          string
	Documentation string
	Key           string
	Subdocument   bool
	Unfoldable    bool
	Abstract      bool
	Inherits      []string
	Fields        []Field
}

func (c *ClassDefinition) TypeName() string { return c.Name }
func (*ClassDefinition) typeDefinition()    {}

// EnumDefinition is an enum frame.
type EnumDefinition struct {
	Name          string
	Documentation string
	Values        []string
}

func (e *EnumDefinition) TypeName() string { return e.Name }
func (*EnumDefinition) typeDefinition()    {}

// TypeKind says what a field's range refers to.
type TypeKind int

const (
	TypeBase TypeKind = iota
	TypeClass
	TypeEnum
	TypeUnknown
)

// AllFrames is a complete schema: its prefix context and every type frame.
type AllFrames struct {
	Context Prefixes
	frames  map[string]TypeDefinition
	order   []string

	fields   map[string][]Field
	subtypes map[string][]string
}

// New builds an AllFrames. Inherited fields are resolved parent-first, with a
// subclass redefinition replacing the inherited one in place. Unknown parents
// and inheritance cycles are ignored here; the frame compiler reports them.
func New(ctx Prefixes, defs ...TypeDefinition) *AllFrames {
	a := &AllFrames{
		Context:  ctx,
		frames:   make(map[string]TypeDefinition, len(defs)),
		fields:   make(map[string][]Field),
		subtypes: make(map[string][]string),
	}
	for _, d := range defs {
		if _, dup := a.frames[d.TypeName()]; !dup {
			a.order = append(a.order, d.TypeName())
		}
		a.frames[d.TypeName()] = d
	}
	for _, name := range a.order {
		c, ok := a.frames[name].(*ClassDefinition)
		if !ok {
			continue
		}
		a.fields[name] = a.resolveFields(c, map[string]bool{})
		for _, parent := range c.Inherits {
			a.subtypes[parent] = append(a.subtypes[parent], name)
		}
	}
	return a
}

func (a *AllFrames) resolveFields(c *ClassDefinition, visiting map[string]bool) []Field {
	if visiting[c.Name] {
		return nil
	}
	visiting[c.Name] = true
	defer delete(visiting, c.Name)

	var out []Field
	set := func(f Field) {
		for i := range out {
			if out[i].Name == f.Name {
				out[i] = f
				return
			}
		}
		out = append(out, f)
	}
	for _, parent := range c.Inherits {
		if pc, ok := a.Class(parent); ok {
			for _, f := range a.resolveFields(pc, visiting) {
				set(f)
			}
		}
	}
	for _, f := range c.Fields {
		set(f)
	}
	return out
}

// Names returns frame names in declaration order.
func (a *AllFrames) Names() []string {
	return slices.Clone(a.order)
}

// Lookup returns the frame named name.
func (a *AllFrames) Lookup(name string) (TypeDefinition, bool) {
	d, ok := a.frames[name]
	return d, ok
}

// Class returns the class frame named name.
func (a *AllFrames) Class(name string) (*ClassDefinition, bool) {
	c, ok := a.frames[name].(*ClassDefinition)
	return c, ok
}

// Enum returns the enum frame named name.
func (a *AllFrames) Enum(name string) (*EnumDefinition, bool) {
	e, ok := a.frames[name].(*EnumDefinition)
	return e, ok
}

// Fields returns a class's fields including inherited ones.
func (a *AllFrames) Fields(class string) []Field {
	return a.fields[class]
}

// ResolveField finds a field on class or one of its ancestors.
func (a *AllFrames) ResolveField(class, field string) (FieldDefinition, bool) {
	for _, f := range a.fields[class] {
		if f.Name == field {
			return f.Def, true
		}
	}
	return FieldDefinition{}, false
}

// RangeKind classifies what a field's Class refers to.
func (a *AllFrames) RangeKind(def FieldDefinition) TypeKind {
	if IsBaseType(def.Class) {
		return TypeBase
	}
	switch a.frames[def.Class].(type) {
	case *ClassDefinition:
		return TypeClass
	case *EnumDefinition:
		return TypeEnum
	default:
		return TypeUnknown
	}
}

// Subsumed returns class followed by every transitive subclass, each once.
func (a *AllFrames) Subsumed(class string) []string {
	seen := map[string]bool{class: true}
	out := []string{class}
	for i := 0; i < len(out); i++ {
		for _, sub := range a.subtypes[out[i]] {
			if !seen[sub] {
				seen[sub] = true
				out = append(out, sub)
			}
		}
	}
	return out
}

// ClassIRI expands a class name against @schema.
func (a *AllFrames) ClassIRI(name string) string {
	return a.Context.ExpandSchema(name)
}

// PropertyIRI expands a field name against @schema.
func (a *AllFrames) PropertyIRI(name string) string {
	return a.Context.ExpandSchema(name)
}

// EnumValueIRI returns the node name that stands for value of enum.
func (a *AllFrames) EnumValueIRI(enum, value string) string {
	return a.Context.ExpandSchema(enum) + "/" + url.PathEscape(value)
}
