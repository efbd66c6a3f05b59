package store

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
)

// Dataset is the YAML import format:
//
//	triples:
//	  - {s: Author/tolkien, p: a, o: Author}
//	  - {s: Author/tolkien, p: name, v: "J.R.R. Tolkien"}
//	  - {s: Book/hobbit, p: pages, v: "310", t: integer}
//	  - {s: Book/hobbit, p: genre, ref: Genre/fiction}
//
// Subjects and o objects expand against @base, predicates and ref objects
// against @schema. The object of an rdf:type triple (p: a) is a class and
// expands against @schema too.
type Dataset struct {
	Triples []TripleSpec `yaml:"triples"`
}

// TripleSpec is one YAML triple. Exactly one of O, Ref and V is set.
type TripleSpec struct {
	S   string  `yaml:"s"`
	P   string  `yaml:"p"`
	O   string  `yaml:"o,omitempty"`
	Ref string  `yaml:"ref,omitempty"`
	V   *string `yaml:"v,omitempty"`
	T   string  `yaml:"t,omitempty"` // xsd local name or prefixed IRI; default string
}

// LoadDataset reads a YAML dataset file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes YAML. Unknown keys are an error.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}

// Resolve expands every triple against the prefixes of a frame context.
func (ds *Dataset) Resolve(p frame.Prefixes) ([]Triple, error) {
	out := make([]Triple, 0, len(ds.Triples))
	for i, spec := range ds.Triples {
		t, err := spec.resolve(p)
		if err != nil {
			return nil, fmt.Errorf("triples[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (spec TripleSpec) resolve(p frame.Prefixes) (Triple, error) {
	if spec.S == "" {
		return Triple{}, fmt.Errorf("missing subject")
	}
	if spec.P == "" {
		return Triple{}, fmt.Errorf("missing predicate")
	}

	set := 0
	for _, present := range []bool{spec.O != "", spec.Ref != "", spec.V != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return Triple{}, fmt.Errorf("%s %s: exactly one of o, ref or v is required", spec.S, spec.P)
	}
	if spec.T != "" && spec.V == nil {
		return Triple{}, fmt.Errorf("%s %s: t is only valid with v", spec.S, spec.P)
	}

	t := Triple{Subject: p.ExpandInstance(spec.S)}
	if spec.P == "a" {
		t.Predicate = graph.RDFType
	} else {
		t.Predicate = p.ExpandSchema(spec.P)
	}

	switch {
	case spec.V != nil:
		t.Object = graph.ValueObject(graph.Literal{Datatype: datatype(p, spec.T), Lexical: *spec.V})
	case spec.Ref != "":
		t.Object = graph.NodeObject(p.ExpandSchema(spec.Ref))
	case t.Predicate == graph.RDFType:
		t.Object = graph.NodeObject(p.ExpandSchema(spec.O))
	default:
		t.Object = graph.NodeObject(p.ExpandInstance(spec.O))
	}
	return t, nil
}

func datatype(p frame.Prefixes, t string) string {
	switch {
	case t == "":
		return graph.XSDType("string")
	case strings.Contains(t, ":"):
		return p.ExpandSchema(t)
	default:
		return graph.XSDType(t)
	}
}
