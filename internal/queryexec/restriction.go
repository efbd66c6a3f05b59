package queryexec

import (
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

// Restriction is a named gate evaluated outside the filter language.
type Restriction func(id graph.ID) bool

// Restrictions resolves the names used by _restriction.
type Restrictions interface {
	Restriction(name string) (Restriction, bool)
}

// RestrictionMap is a fixed set of named restrictions.
type RestrictionMap map[string]Restriction

// Restriction implements Restrictions.
func (m RestrictionMap) Restriction(name string) (Restriction, bool) {
	r, ok := m[name]
	return r, ok
}

// Define adds a restriction that passes the ids the filter f passes, as
// evaluated by e. f must already be compiled for the class the restriction
// is applied to.
func (m RestrictionMap) Define(name string, e *Executor, f *queryir.FilterObject) {
	m[name] = func(id graph.ID) bool {
		return nonEmpty(e.CompileQuery(f, single(id)))
	}
}
