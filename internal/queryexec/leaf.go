package queryexec

import (
	"cmp"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

// valueTest builds the scalar test of ft. A literal that does not parse
// under the filter's type fails the test and is logged.
func (e *Executor) valueTest(ft queryir.FilterType) func(graph.ID) bool {
	if f, ok := ft.(*queryir.EnumFilter); ok {
		return e.enumTest(f)
	}

	match := literalMatcher(ft)
	return func(obj graph.ID) bool {
		o, ok := e.g.IDObject(obj)
		if !ok || !o.IsValue {
			e.exclude(ft, obj, "object is not a literal")
			return false
		}
		pass, ok := match(o.Value.Lexical)
		if !ok {
			e.exclude(ft, obj, "literal "+strconv.Quote(o.Value.Lexical)+" does not parse")
			return false
		}
		return pass
	}
}

func (e *Executor) exclude(ft queryir.FilterType, obj graph.ID, reason string) {
	e.metrics.CandidateExcluded()
	e.logger.Debug("candidate excluded", "object", uint64(obj), "range", ft.RangeType(), "reason", reason)
}

// enumTest compares object ids with the enum node. An enum node the layer
// does not know equals nothing.
func (e *Executor) enumTest(f *queryir.EnumFilter) func(graph.ID) bool {
	node, known := e.g.ObjectNodeID(f.Value)
	if f.Op == queryir.EnumNe {
		return func(obj graph.ID) bool { return !known || obj != node }
	}
	return func(obj graph.ID) bool { return known && obj == node }
}

// literalMatcher returns a function reporting whether a lexical form passes
// ft, and false in its second result when the form does not parse.
func literalMatcher(ft queryir.FilterType) func(lexical string) (bool, bool) {
	switch f := ft.(type) {
	case *queryir.TextFilter:
		return textMatcher(f.Op)
	case *queryir.IntFilter:
		return func(s string) (bool, bool) {
			n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "+"), 10, 64)
			if err != nil {
				return false, false
			}
			return f.Op.Matches(cmp.Compare(n, f.Value)), true
		}
	case *queryir.BigIntFilter:
		return func(s string) (bool, bool) {
			n, ok := new(big.Int).SetString(strings.TrimPrefix(strings.TrimSpace(s), "+"), 10)
			if !ok {
				return false, false
			}
			return f.Op.Matches(n.Cmp(f.Value)), true
		}
	case *queryir.FloatFilter:
		return func(s string) (bool, bool) {
			x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return false, false
			}
			return f.Op.Matches(cmp.Compare(x, f.Value)), true
		}
	case *queryir.DecimalFilter:
		return func(s string) (bool, bool) {
			d, _, err := apd.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return false, false
			}
			return f.Op.Matches(d.Cmp(f.Value)), true
		}
	case *queryir.BoolFilter:
		return func(s string) (bool, bool) {
			b, ok := parseBool(s)
			if !ok {
				return false, false
			}
			return f.Op.Matches(compareBool(b, f.Value)), true
		}
	case *queryir.DateTimeFilter:
		// Reversed: the operand is compared with the literal, so a newer
		// literal compares as less.
		return func(s string) (bool, bool) {
			return f.Op.Matches(strings.Compare(f.Value, s)), true
		}
	case *queryir.StringFilter:
		return func(s string) (bool, bool) {
			return f.Op.Matches(strings.Compare(s, f.Value)), true
		}
	default:
		return func(string) (bool, bool) { return false, true }
	}
}

func textMatcher(op queryir.TextOp) func(string) (bool, bool) {
	switch op.Kind {
	case queryir.TextRegex:
		return func(s string) (bool, bool) { return op.Regex.MatchString(s), true }
	case queryir.TextStartsWith:
		return func(s string) (bool, bool) { return strings.HasPrefix(s, op.Prefix), true }
	case queryir.TextAllOfTerms:
		return func(s string) (bool, bool) {
			for _, term := range op.Terms {
				if !strings.Contains(s, term) {
					return false, true
				}
			}
			return true, true
		}
	case queryir.TextAnyOfTerms:
		return func(s string) (bool, bool) {
			for _, term := range op.Terms {
				if strings.Contains(s, term) {
					return true, true
				}
			}
			return false, true
		}
	default:
		return func(string) (bool, bool) { return false, true }
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
