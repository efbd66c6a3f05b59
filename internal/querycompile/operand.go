package querycompile

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/ir"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

var textKeys = []string{"regex", "startsWith", "allOfTerms", "anyOfTerms"}

func genericKeys() []string {
	keys := make([]string, len(queryir.GenericOps))
	for i, op := range queryir.GenericOps {
		keys[i] = op.String()
	}
	return keys
}

func genericOp(key string) queryir.GenericOp {
	for _, op := range queryir.GenericOps {
		if op.String() == key {
			return op
		}
	}
	panic("querycompile: not a generic operator: " + key)
}

// firstOperand returns the first of keys present in obj.
func firstOperand(obj *ir.IRObject, keys ...string) (string, ir.IRValue, bool) {
	for _, k := range keys {
		if v, ok := obj.Get(k); ok {
			return k, v, true
		}
	}
	return "", nil, false
}

// checkOperandKeys rejects keys outside allowed.
func checkOperandKeys(obj *ir.IRObject, at string, allowed ...string) error {
	for _, k := range obj.Keys() {
		if !slices.Contains(allowed, k) {
			return errorf(join(at, k), "unknown operator, expected one of %v", allowed)
		}
	}
	return nil
}

// compileBase compiles a leaf comparison on a literal of base type rangeClass.
func compileBase(rangeClass string, obj *ir.IRObject, at string) (queryir.FilterType, error) {
	kind, ok := frame.BaseTypeKind(rangeClass)
	if !ok {
		return nil, errorf(at, "unsupported base type %q", rangeClass)
	}

	allowed := genericKeys()
	switch kind {
	case frame.KindString:
		allowed = append(allowed, textKeys...)
	case frame.KindBool:
		allowed = []string{"eq", "ne"}
	}
	if err := checkOperandKeys(obj, at, allowed...); err != nil {
		return nil, err
	}
	key, val, ok := firstOperand(obj, allowed...)
	if !ok {
		return nil, errorf(at, "no operator given for %s, expected one of %v", rangeClass, allowed)
	}
	field := join(at, key)

	if slices.Contains(textKeys, key) {
		op, err := compileText(key, val, field)
		if err != nil {
			return nil, err
		}
		return &queryir.TextFilter{Op: op, Range: rangeClass}, nil
	}

	op := genericOp(key)
	switch kind {
	case frame.KindInt:
		n, err := coerceInt(val)
		if err != nil {
			return nil, errorf(field, "%v", err)
		}
		return &queryir.IntFilter{Op: op, Value: n, Range: rangeClass}, nil
	case frame.KindBigInt:
		n, err := coerceBigInt(val)
		if err != nil {
			return nil, errorf(field, "%v", err)
		}
		return &queryir.BigIntFilter{Op: op, Value: n, Range: rangeClass}, nil
	case frame.KindFloat:
		f, err := coerceFloat(val)
		if err != nil {
			return nil, errorf(field, "%v", err)
		}
		return &queryir.FloatFilter{Op: op, Value: f, Range: rangeClass}, nil
	case frame.KindDecimal:
		d, err := coerceDecimal(val)
		if err != nil {
			return nil, errorf(field, "%v", err)
		}
		return &queryir.DecimalFilter{Op: op, Value: d, Range: rangeClass}, nil
	case frame.KindBool:
		b, ok := val.(ir.IRBool)
		if !ok {
			return nil, errorf(field, "expected a boolean, got %s", describe(val))
		}
		return &queryir.BoolFilter{Op: op, Value: bool(b), Range: rangeClass}, nil
	case frame.KindDateTime:
		s, ok := val.(ir.IRString)
		if !ok {
			return nil, errorf(field, "expected a dateTime string, got %s", describe(val))
		}
		return &queryir.DateTimeFilter{Op: op, Value: string(s), Range: rangeClass}, nil
	default:
		s, ok := val.(ir.IRString)
		if !ok {
			return nil, errorf(field, "expected a string, got %s", describe(val))
		}
		return &queryir.StringFilter{Op: op, Value: string(s), Range: rangeClass}, nil
	}
}

func compileText(key string, val ir.IRValue, at string) (queryir.TextOp, error) {
	switch key {
	case "regex":
		s, ok := val.(ir.IRString)
		if !ok {
			return queryir.TextOp{}, errorf(at, "expected a pattern string, got %s", describe(val))
		}
		re, err := regexp.Compile(string(s))
		if err != nil {
			return queryir.TextOp{}, errorf(at, "bad pattern: %v", err)
		}
		return queryir.TextOp{Kind: queryir.TextRegex, Regex: re}, nil
	case "startsWith":
		s, ok := val.(ir.IRString)
		if !ok {
			return queryir.TextOp{}, errorf(at, "expected a string, got %s", describe(val))
		}
		return queryir.TextOp{Kind: queryir.TextStartsWith, Prefix: string(s)}, nil
	default:
		terms, err := stringList(val, at)
		if err != nil {
			return queryir.TextOp{}, err
		}
		if len(terms) == 0 {
			return queryir.TextOp{}, errorf(at, "needs at least one term")
		}
		kind := queryir.TextAllOfTerms
		if key == "anyOfTerms" {
			kind = queryir.TextAnyOfTerms
		}
		return queryir.TextOp{Kind: kind, Terms: terms}, nil
	}
}

// stringList accepts a list of strings. A lone string is a one-term list,
// matching GraphQL list input coercion.
func stringList(val ir.IRValue, at string) ([]string, error) {
	if s, ok := val.(ir.IRString); ok {
		return []string{string(s)}, nil
	}
	list, ok := val.(ir.IRArray)
	if !ok {
		return nil, errorf(at, "expected a list of strings, got %s", describe(val))
	}
	out := make([]string, 0, len(list))
	for i, elem := range list {
		s, ok := elem.(ir.IRString)
		if !ok {
			return nil, errorf(join(at, strconv.Itoa(i)), "expected a string, got %s", describe(elem))
		}
		out = append(out, string(s))
	}
	return out, nil
}

func coerceInt(val ir.IRValue) (int64, error) {
	if n, ok := val.(ir.IRInt); ok {
		return int64(n), nil
	}
	return 0, fmt.Errorf("expected an integer, got %s", describe(val))
}

func coerceBigInt(val ir.IRValue) (*big.Int, error) {
	switch v := val.(type) {
	case ir.IRInt:
		return big.NewInt(int64(v)), nil
	case ir.IRNumber:
		if n, ok := new(big.Int).SetString(string(v), 10); ok {
			return n, nil
		}
	case ir.IRString:
		if n, ok := new(big.Int).SetString(string(v), 10); ok {
			return n, nil
		}
	}
	return nil, fmt.Errorf("expected an integer, got %s", describe(val))
}

func coerceFloat(val ir.IRValue) (float64, error) {
	switch v := val.(type) {
	case ir.IRInt:
		return float64(v), nil
	case ir.IRFloat:
		return float64(v), nil
	case ir.IRNumber:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("expected a number, got %s", describe(val))
}

func coerceDecimal(val ir.IRValue) (*apd.Decimal, error) {
	var text string
	switch v := val.(type) {
	case ir.IRInt:
		return apd.New(int64(v), 0), nil
	case ir.IRFloat:
		text = strconv.FormatFloat(float64(v), 'g', -1, 64)
	case ir.IRNumber:
		text = string(v)
	case ir.IRString:
		text = string(v)
	default:
		return nil, fmt.Errorf("expected a decimal, got %s", describe(val))
	}
	d, _, err := apd.NewFromString(text)
	if err != nil || d.Form != apd.Finite {
		return nil, fmt.Errorf("expected a decimal, got %s", describe(val))
	}
	return d, nil
}

// describe names a value for error messages.
func describe(v ir.IRValue) string {
	switch v := v.(type) {
	case nil, ir.IRNull:
		return "null"
	case ir.IRString:
		return strconv.Quote(string(v))
	case ir.IRInt:
		return strconv.FormatInt(int64(v), 10)
	case ir.IRFloat:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case ir.IRNumber:
		return string(v)
	case ir.IRBool:
		return strconv.FormatBool(bool(v))
	case ir.IRArray:
		return "a list"
	case *ir.IRObject:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
