package queryir

import (
	"math/big"
	"regexp"

	"github.com/cockroachdb/apd/v3"
)

// FilterType is a sealed interface over scalar comparisons. Every variant
// carries exactly one operator and its operand. Range is the expected
// base type of the literal, as written in the frame ("xsd:integer").
type FilterType interface {
	filterType()
	RangeType() string
}

// TextFilter applies a text operator to a string literal.
type TextFilter struct {
	Op    TextOp
	Range string
}

// IntFilter compares a literal that fits int64.
type IntFilter struct {
	Op    GenericOp
	Value int64
	Range string
}

// BigIntFilter compares an arbitrary precision integer.
type BigIntFilter struct {
	Op    GenericOp
	Value *big.Int
	Range string
}

// FloatFilter compares an xsd:float or xsd:double literal.
type FloatFilter struct {
	Op    GenericOp
	Value float64
	Range string
}

// DecimalFilter compares an xsd:decimal literal exactly.
type DecimalFilter struct {
	Op    GenericOp
	Value *apd.Decimal
	Range string
}

// BoolFilter compares a boolean literal. Only Eq and Ne are produced by
// the compiler.
type BoolFilter struct {
	Op    GenericOp
	Value bool
	Range string
}

// DateTimeFilter compares an xsd:dateTime literal by its lexical form, with
// the order reversed: the operand is compared against the literal, so a
// newer literal is "less".
type DateTimeFilter struct {
	Op    GenericOp
	Value string
	Range string
}

// StringFilter compares a string literal lexicographically.
type StringFilter struct {
	Op    GenericOp
	Value string
	Range string
}

// EnumFilter compares an enum-valued edge against one enum node. Value is
// the fully qualified node IRI, resolved at compile time.
type EnumFilter struct {
	Op    EnumOp
	Value string
	Enum  string
}

func (*TextFilter) filterType()     {}
func (*IntFilter) filterType()      {}
func (*BigIntFilter) filterType()   {}
func (*FloatFilter) filterType()    {}
func (*DecimalFilter) filterType()  {}
func (*BoolFilter) filterType()     {}
func (*DateTimeFilter) filterType() {}
func (*StringFilter) filterType()   {}
func (*EnumFilter) filterType()     {}

func (f *TextFilter) RangeType() string     { return f.Range }
func (f *IntFilter) RangeType() string      { return f.Range }
func (f *BigIntFilter) RangeType() string   { return f.Range }
func (f *FloatFilter) RangeType() string    { return f.Range }
func (f *DecimalFilter) RangeType() string  { return f.Range }
func (f *BoolFilter) RangeType() string     { return f.Range }
func (f *DateTimeFilter) RangeType() string { return f.Range }
func (f *StringFilter) RangeType() string   { return f.Range }
func (f *EnumFilter) RangeType() string     { return f.Enum }

// TextKind selects a text operator.
type TextKind int

const (
	TextRegex TextKind = iota
	TextStartsWith
	TextAllOfTerms
	TextAnyOfTerms
)

func (k TextKind) String() string {
	switch k {
	case TextRegex:
		return "regex"
	case TextStartsWith:
		return "startsWith"
	case TextAllOfTerms:
		return "allOfTerms"
	case TextAnyOfTerms:
		return "anyOfTerms"
	default:
		return "unknown"
	}
}

// TextOp is a compiled text operator. Regex is set for TextRegex, Prefix
// for TextStartsWith and Terms for the term operators. Terms match as
// plain substrings.
type TextOp struct {
	Kind   TextKind
	Regex  *regexp.Regexp
	Prefix string
	Terms  []string
}
