package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/regulumdb/regulumdb/internal/ir"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Step     string // scenario step, e.g. "queries[2] by title"
	Path     string // location inside a document, empty for id lists
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Step)
	if e.Path != "" {
		fmt.Fprintf(&buf, " at %s", e.Path)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// matchValue checks actual against expected. Objects match when every
// expected key is present and matches; extra keys in actual are ignored.
// Arrays match element for element. Scalars match when their canonical JSON
// is identical, so 12.5 from YAML matches an xsd:decimal rendered as 12.5.
func matchValue(path string, expected, actual ir.IRValue) error {
	mismatch := func(exp, act string) error {
		return &AssertionError{Step: "document", Path: displayPath(path), Expected: exp, Actual: act}
	}

	switch exp := expected.(type) {
	case *ir.IRObject:
		act, ok := actual.(*ir.IRObject)
		if !ok {
			return mismatch("an object", render(actual))
		}
		for key, ev := range exp.All() {
			av, ok := act.Get(key)
			if !ok {
				return mismatch(fmt.Sprintf("key %q", key), "missing")
			}
			if err := matchValue(path+"."+key, ev, av); err != nil {
				return err
			}
		}
		return nil
	case ir.IRArray:
		act, ok := actual.(ir.IRArray)
		if !ok {
			return mismatch("an array", render(actual))
		}
		if len(exp) != len(act) {
			return mismatch(fmt.Sprintf("%d elements", len(exp)), fmt.Sprintf("%d elements: %s", len(act), render(actual)))
		}
		for i := range exp {
			if err := matchValue(fmt.Sprintf("%s[%d]", path, i), exp[i], act[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		e, err := ir.MarshalCanonical(expected)
		if err != nil {
			return mismatch(fmt.Sprintf("%v", expected), err.Error())
		}
		a, err := ir.MarshalCanonical(actual)
		if err != nil || !bytes.Equal(e, a) {
			return mismatch(string(e), render(actual))
		}
		return nil
	}
}

func displayPath(path string) string {
	if path == "" {
		return "document root"
	}
	return strings.TrimPrefix(path, ".")
}

func render(v ir.IRValue) string {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%T", v)
	}
	return string(b)
}

// convertToIRValue converts a YAML-decoded value to an IRValue.
func convertToIRValue(val any) (ir.IRValue, error) {
	switch v := val.(type) {
	case nil:
		return ir.IRNull{}, nil
	case string:
		return ir.IRString(v), nil
	case int:
		return ir.IRInt(int64(v)), nil
	case int64:
		return ir.IRInt(v), nil
	case uint64:
		return ir.IRNumber(fmt.Sprintf("%d", v)), nil
	case float64:
		return ir.IRFloat(v), nil
	case bool:
		return ir.IRBool(v), nil
	case []any:
		arr := make(ir.IRArray, len(v))
		for i, elem := range v {
			irElem, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := ir.NewIRObject()
		for key, elem := range v {
			irElem, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			obj.Set(key, irElem)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}
