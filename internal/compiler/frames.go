package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/regulumdb/regulumdb/internal/frame"
)

// CompileFramesBytes compiles a frame document written in CUE or JSON.
// filename is only used for error positions.
func CompileFramesBytes(data []byte, filename string) (*frame.AllFrames, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	return CompileFrames(v)
}

// CompileFrames parses a CUE value into AllFrames. Uses the CUE SDK's Go API
// directly.
//
// The value is the frame document itself:
//
//	{
//		"@context": {"@base": "http://ex.com/data/", "@schema": "http://ex.com/schema#"},
//		"Person": {"@type": "Class", "name": "xsd:string"},
//		"Color": {"@type": "Enum", "@values": ["red", "green"]}
//	}
func CompileFrames(v cue.Value) (*frame.AllFrames, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ctxVal := v.LookupPath(cue.MakePath(cue.Str("@context")))
	if !ctxVal.Exists() {
		return nil, &CompileError{
			Field:   "@context",
			Message: "@context is required",
			Pos:     v.Pos(),
		}
	}
	prefixes, err := parseContext(ctxVal)
	if err != nil {
		return nil, err
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []frame.TypeDefinition
	for iter.Next() {
		name := label(iter)
		if name == "@context" {
			continue
		}
		if strings.HasPrefix(name, "@") {
			return nil, &CompileError{
				Field:   name,
				Message: "unknown top-level keyword",
				Pos:     iter.Value().Pos(),
			}
		}
		def, err := parseTypeDefinition(name, iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return frame.New(prefixes, defs...), nil
}

// label returns the unquoted field label, so "@type" reads as @type.
func label(iter *cue.Iterator) string {
	sel := iter.Selector()
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func lookup(v cue.Value, key string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(key)))
}

func parseContext(v cue.Value) (frame.Prefixes, error) {
	var p frame.Prefixes
	p.Extra = map[string]string{}

	iter, err := v.Fields()
	if err != nil {
		return p, formatCUEError(err)
	}
	for iter.Next() {
		key := label(iter)
		val, err := iter.Value().String()
		if err != nil {
			return p, &CompileError{
				Field:   "@context." + key,
				Message: "prefix must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		switch key {
		case "@base":
			p.Base = val
		case "@schema":
			p.Schema = val
		case "@type", "@documentation":
		default:
			if strings.HasPrefix(key, "@") {
				return p, &CompileError{
					Field:   "@context." + key,
					Message: "unknown context keyword",
					Pos:     iter.Value().Pos(),
				}
			}
			p.Extra[key] = val
		}
	}
	return p, nil
}

func parseTypeDefinition(name string, v cue.Value) (frame.TypeDefinition, error) {
	typ, err := lookup(v, "@type").String()
	if err != nil {
		return nil, &CompileError{
			Field:   name + ".@type",
			Message: "@type is required and must be a string",
			Pos:     v.Pos(),
		}
	}

	switch typ {
	case "Class":
		return parseClass(name, v)
	case "Enum":
		return parseEnum(name, v)
	default:
		return nil, &CompileError{
			Field:   name + ".@type",
			Message: fmt.Sprintf("unsupported frame type %q", typ),
			Pos:     v.Pos(),
		}
	}
}

func parseClass(name string, v cue.Value) (*frame.ClassDefinition, error) {
	class := &frame.ClassDefinition{Name: name}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		key := label(iter)
		val := iter.Value()
		path := name + "." + key

		switch key {
		case "@type":
		case "@subdocument":
			class.Subdocument = true
		case "@unfoldable":
			class.Unfoldable = true
		case "@abstract":
			class.Abstract = true
		case "@documentation":
			class.Documentation = parseDocumentation(val)
		case "@key":
			keyType, err := lookup(val, "@type").String()
			if err != nil {
				return nil, &CompileError{Field: path, Message: "@key needs a @type", Pos: val.Pos()}
			}
			class.Key = keyType
		case "@inherits":
			parents, err := stringOrList(val)
			if err != nil {
				return nil, &CompileError{Field: path, Message: "@inherits must be a string or list of strings", Pos: val.Pos()}
			}
			class.Inherits = parents
		default:
			if strings.HasPrefix(key, "@") {
				return nil, &CompileError{Field: path, Message: "unknown class keyword", Pos: val.Pos()}
			}
			def, err := parseField(path, val)
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, frame.Field{Name: key, Def: def})
		}
	}
	return class, nil
}

// parseField reads a field range. A bare string is a Required field; a
// struct names its kind in @type and its range in @class.
func parseField(path string, v cue.Value) (frame.FieldDefinition, error) {
	if s, err := v.String(); err == nil {
		return frame.FieldDefinition{Kind: frame.Required, Class: s}, nil
	}

	typ, err := lookup(v, "@type").String()
	if err != nil {
		return frame.FieldDefinition{}, &CompileError{
			Field:   path,
			Message: "field must be a class name or a struct with @type and @class",
			Pos:     v.Pos(),
		}
	}
	kind, ok := frame.ParseFieldKind(typ)
	if !ok {
		return frame.FieldDefinition{}, &CompileError{
			Field:   path + ".@type",
			Message: fmt.Sprintf("unsupported field kind %q", typ),
			Pos:     v.Pos(),
		}
	}
	class, err := lookup(v, "@class").String()
	if err != nil {
		return frame.FieldDefinition{}, &CompileError{
			Field:   path + ".@class",
			Message: "@class is required and must be a string",
			Pos:     v.Pos(),
		}
	}

	def := frame.FieldDefinition{Kind: kind, Class: class}
	switch kind {
	case frame.Array:
		def.Dimensions = 1
		if d := lookup(v, "@dimensions"); d.Exists() {
			n, err := d.Int64()
			if err != nil {
				return def, &CompileError{Field: path + ".@dimensions", Message: "@dimensions must be an integer", Pos: d.Pos()}
			}
			def.Dimensions = int(n)
		}
	case frame.Cardinality:
		if c := lookup(v, "@cardinality"); c.Exists() {
			n, err := c.Int64()
			if err != nil {
				return def, &CompileError{Field: path + ".@cardinality", Message: "@cardinality must be an integer", Pos: c.Pos()}
			}
			exact := int(n)
			def.Min, def.Max = &exact, &exact
			break
		}
		for _, bound := range []struct {
			key string
			dst **int
		}{{"@min_cardinality", &def.Min}, {"@max_cardinality", &def.Max}} {
			b := lookup(v, bound.key)
			if !b.Exists() {
				continue
			}
			n, err := b.Int64()
			if err != nil {
				return def, &CompileError{Field: path + "." + bound.key, Message: "cardinality bounds must be integers", Pos: b.Pos()}
			}
			m := int(n)
			*bound.dst = &m
		}
	}
	return def, nil
}

func parseEnum(name string, v cue.Value) (*frame.EnumDefinition, error) {
	enum := &frame.EnumDefinition{Name: name}

	values := lookup(v, "@values")
	if !values.Exists() {
		return nil, &CompileError{Field: name + ".@values", Message: "@values is required", Pos: v.Pos()}
	}
	list, err := values.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, &CompileError{Field: name + ".@values", Message: "enum values must be strings", Pos: list.Value().Pos()}
		}
		enum.Values = append(enum.Values, s)
	}
	if doc := lookup(v, "@documentation"); doc.Exists() {
		enum.Documentation = parseDocumentation(doc)
	}
	return enum, nil
}

// parseDocumentation accepts a plain string or a struct with @comment.
func parseDocumentation(v cue.Value) string {
	if s, err := v.String(); err == nil {
		return s
	}
	s, _ := lookup(v, "@comment").String()
	return s
}

func stringOrList(v cue.Value) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a frame compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
