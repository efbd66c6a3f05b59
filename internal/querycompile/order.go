package querycompile

import (
	"github.com/regulumdb/regulumdb/internal/ir"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

// CompileOrderBy reads an ordering object such as {pages: DESC, title: ASC}.
// Field names are checked against the class by the executor.
func CompileOrderBy(input ir.IRValue) ([]queryir.OrderField, error) {
	obj, ok := input.(*ir.IRObject)
	if !ok {
		return nil, errorf("orderBy", "expected an object, got %s", describe(input))
	}
	out := make([]queryir.OrderField, 0, obj.Len())
	for key, val := range obj.All() {
		s, ok := val.(ir.IRString)
		if !ok {
			return nil, errorf(join("orderBy", key), "expected ASC or DESC, got %s", describe(val))
		}
		dir, ok := queryir.ParseDirection(string(s))
		if !ok {
			return nil, errorf(join("orderBy", key), "expected ASC or DESC, got %s", describe(val))
		}
		out = append(out, queryir.OrderField{Property: key, Direction: dir})
	}
	return out, nil
}
