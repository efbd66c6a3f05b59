package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface over the document tree value types.
// Only IRNull, IRString, IRInt, IRFloat, IRNumber, IRBool, IRArray and
// *IRObject implement it.
type IRValue interface {
	irValue()
}

// IRNull represents a JSON null. Array reconstruction pads holes with it.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value, including contracted node references.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer that fits in int64.
type IRInt int64

func (IRInt) irValue() {}

// IRFloat represents an xsd:float or xsd:double literal.
type IRFloat float64

func (IRFloat) irValue() {}

// IRNumber is an arbitrary precision number kept in its lexical form.
// Big integers and xsd:decimal literals render through it without losing digits.
type IRNumber string

func (IRNumber) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an ordered sequence of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject is a keyed mapping that remembers insertion order.
// Materialized documents list fields in first-seen predicate order, so the
// order is part of the value.
type IRObject struct {
	keys   []string
	fields map[string]IRValue
}

func (*IRObject) irValue() {}

// IRPair is a key-value pair for IRObject construction.
type IRPair struct {
	Key   string
	Value IRValue
}

// O is a shorthand for IRPair.
// Example: NewIRObjectFromPairs(O("name", IRString("Jim")), O("age", IRInt(42)))
func O(key string, value IRValue) IRPair {
	return IRPair{Key: key, Value: value}
}

// NewIRObject creates an empty object.
func NewIRObject() *IRObject {
	return &IRObject{fields: make(map[string]IRValue)}
}

// NewIRObjectFromPairs creates an object whose key order follows pairs.
func NewIRObjectFromPairs(pairs ...IRPair) *IRObject {
	obj := &IRObject{
		keys:   make([]string, 0, len(pairs)),
		fields: make(map[string]IRValue, len(pairs)),
	}
	for _, p := range pairs {
		obj.Set(p.Key, p.Value)
	}
	return obj
}

// Set stores v under key. Replacing an existing key keeps its position.
func (obj *IRObject) Set(key string, v IRValue) {
	if obj.fields == nil {
		obj.fields = make(map[string]IRValue)
	}
	if _, ok := obj.fields[key]; !ok {
		obj.keys = append(obj.keys, key)
	}
	obj.fields[key] = v
}

// Get returns the value stored under key.
func (obj *IRObject) Get(key string) (IRValue, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.fields[key]
	return v, ok
}

// Len returns the number of keys.
func (obj *IRObject) Len() int {
	if obj == nil {
		return 0
	}
	return len(obj.keys)
}

// Keys returns the keys in insertion order.
func (obj *IRObject) Keys() []string {
	if obj == nil {
		return nil
	}
	return slices.Clone(obj.keys)
}

// All iterates key-value pairs in insertion order.
func (obj *IRObject) All() iter.Seq2[string, IRValue] {
	return func(yield func(string, IRValue) bool) {
		if obj == nil {
			return
		}
		for _, k := range obj.keys {
			if !yield(k, obj.fields[k]) {
				return
			}
		}
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison is UTF-8 byte order, which differs for surrogates.
func (obj *IRObject) SortedKeys() []string {
	keys := obj.Keys()
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as RFC 8785 requires.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// MarshalJSON writes the object with keys in insertion order.
// Use MarshalCanonical for digests.
func (obj *IRObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalIRValue(obj.fields[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for IRArray.
func (arr IRArray) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalIRValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalIRValue marshals an IRValue to JSON bytes, preserving object key order.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case IRFloat:
		return marshalFloat(float64(val))
	case IRNumber:
		if !json.Valid([]byte(val)) {
			return nil, fmt.Errorf("invalid number literal %q", string(val))
		}
		return []byte(val), nil
	case IRBool:
		return strconv.AppendBool(nil, bool(val)), nil
	case IRArray:
		return val.MarshalJSON()
	case *IRObject:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float %v has no JSON form", f)
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// MarshalIndent renders v as indented JSON in insertion order.
func MarshalIndent(v IRValue) ([]byte, error) {
	compact, err := MarshalIRValue(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalIRValue decodes JSON into an IRValue, keeping object key order.
// Integers that fit int64 become IRInt; other integers and decimals that
// would lose precision become IRNumber; the rest become IRFloat.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (IRValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return IRNull{}, nil
	case bool:
		return IRBool(t), nil
	case string:
		return IRString(t), nil
	case json.Number:
		return numberValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := IRArray{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewIRObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("object[%q]: %w", key, err)
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// numberValue picks the narrowest value type that represents n exactly.
func numberValue(n json.Number) IRValue {
	if i, err := n.Int64(); err == nil {
		return IRInt(i)
	}
	if f, err := n.Float64(); err == nil && strconv.FormatFloat(f, 'g', -1, 64) == n.String() {
		return IRFloat(f)
	}
	return IRNumber(n.String())
}
