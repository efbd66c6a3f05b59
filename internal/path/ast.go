// Package path implements the path expression language used to seed
// queries with the set of nodes reachable from a starting set.
//
// Grammar, loosest binding first:
//
//	seq    := choice ("," choice)*
//	choice := repeat ("|" repeat)*
//	repeat := atom ("+" | "*" | "{" N "," M "}")?
//	atom   := "(" seq ")" | "<" pred | pred ">"?
//	pred   := "." | name
//
// A bare or ">"-suffixed predicate steps forward from subject to object;
// a "<"-prefixed one steps backward from object to subject. "." matches
// any predicate.
package path

import (
	"fmt"
	"strings"
)

// Pred names the edge a step follows. Any matches every predicate.
type Pred struct {
	Any  bool
	Name string
}

// AnyPred matches every predicate.
func AnyPred() Pred { return Pred{Any: true} }

// Named matches one predicate, written as a prefixed or schema-relative name.
func Named(name string) Pred { return Pred{Name: name} }

func (p Pred) String() string {
	if p.Any {
		return "."
	}
	return p.Name
}

// Path is a sealed interface over the path AST.
type Path interface {
	pathNode()
	fmt.Stringer
}

// Seq follows each path in turn.
type Seq []Path

// Choice unions the results of each path from the same starting set.
type Choice []Path

// Positive steps from subject to object.
type Positive Pred

// Negative steps from object back to subject.
type Negative Pred

// Plus repeats Path one or more times.
type Plus struct{ Path Path }

// Star repeats Path zero or more times.
type Star struct{ Path Path }

// Times repeats Path between Min and Max times inclusive.
type Times struct {
	Path     Path
	Min, Max int
}

func (Seq) pathNode()      {}
func (Choice) pathNode()   {}
func (Positive) pathNode() {}
func (Negative) pathNode() {}
func (Plus) pathNode()     {}
func (Star) pathNode()     {}
func (Times) pathNode()    {}

// Binding levels for rendering; a child below its context's level gets
// parentheses.
const (
	levelSeq = iota
	levelChoice
	levelRepeat
	levelAtom
)

func level(p Path) int {
	switch p := p.(type) {
	case Seq:
		if len(p) == 1 {
			return level(p[0])
		}
		return levelSeq
	case Choice:
		if len(p) == 1 {
			return level(p[0])
		}
		return levelChoice
	case Plus, Star, Times:
		return levelRepeat
	default:
		return levelAtom
	}
}

func render(p Path, at int) string {
	if level(p) < at {
		return "(" + p.String() + ")"
	}
	return p.String()
}

func join(paths []Path, sep string, at int) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = render(p, at)
	}
	return strings.Join(parts, sep)
}

// String renders the path in the syntax Parse accepts.
func (s Seq) String() string      { return join(s, ",", levelChoice) }
func (c Choice) String() string   { return join(c, "|", levelRepeat) }
func (p Positive) String() string { return Pred(p).String() }
func (n Negative) String() string { return "<" + Pred(n).String() }
func (p Plus) String() string     { return render(p.Path, levelAtom) + "+" }
func (s Star) String() string     { return render(s.Path, levelAtom) + "*" }
func (t Times) String() string {
	return fmt.Sprintf("%s{%d,%d}", render(t.Path, levelAtom), t.Min, t.Max)
}
