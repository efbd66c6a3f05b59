package frame

import (
	"maps"
	"slices"
	"strings"

	"github.com/regulumdb/regulumdb/internal/graph"
)

// builtinPrefixes are always known, though a frame context may override them.
var builtinPrefixes = map[string]string{
	"rdf": graph.RDF,
	"xsd": graph.XSD,
	"sys": graph.Sys,
}

// Prefixes is the @context of a frame document.
type Prefixes struct {
	Base   string
	Schema string
	Extra  map[string]string
}

// NewPrefixes returns a context with the given base and schema namespaces.
func NewPrefixes(base, schema string) Prefixes {
	return Prefixes{Base: base, Schema: schema, Extra: map[string]string{}}
}

func (p Prefixes) lookup(prefix string) (string, bool) {
	if iri, ok := p.Extra[prefix]; ok {
		return iri, true
	}
	iri, ok := builtinPrefixes[prefix]
	return iri, ok
}

func isAbsolute(s string) bool {
	return strings.Contains(s, "://")
}

func (p Prefixes) expand(s, namespace string) string {
	if isAbsolute(s) {
		return s
	}
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if iri, known := p.lookup(prefix); known {
			return iri + rest
		}
	}
	return namespace + s
}

// ExpandInstance expands a document id against @base.
func (p Prefixes) ExpandInstance(s string) string {
	return p.expand(s, p.Base)
}

// ExpandSchema expands a class, property or enum name against @schema.
func (p Prefixes) ExpandSchema(s string) string {
	return p.expand(s, p.Schema)
}

// ContractInstance strips @base, or failing that rewrites a known prefix.
func (p Prefixes) ContractInstance(iri string) string {
	if p.Base != "" && strings.HasPrefix(iri, p.Base) && len(iri) > len(p.Base) {
		return iri[len(p.Base):]
	}
	return p.contractPrefixed(iri)
}

// ContractSchema strips @schema, or failing that rewrites a known prefix.
func (p Prefixes) ContractSchema(iri string) string {
	if p.Schema != "" && strings.HasPrefix(iri, p.Schema) && len(iri) > len(p.Schema) {
		return iri[len(p.Schema):]
	}
	return p.contractPrefixed(iri)
}

// contractPrefixed picks the longest matching namespace so that nested
// namespaces contract to the most specific prefix.
func (p Prefixes) contractPrefixed(iri string) string {
	all := maps.Clone(builtinPrefixes)
	maps.Copy(all, p.Extra)

	best, bestIRI := "", ""
	for _, prefix := range slices.Sorted(maps.Keys(all)) {
		ns := all[prefix]
		if ns != "" && strings.HasPrefix(iri, ns) && len(ns) > len(bestIRI) {
			best, bestIRI = prefix, ns
		}
	}
	if bestIRI == "" {
		return iri
	}
	return best + ":" + iri[len(bestIRI):]
}
