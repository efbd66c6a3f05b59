package queryir

import (
	"math/big"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringEq(s string) *ValueFilter {
	return &ValueFilter{Type: &StringFilter{Op: Eq, Value: s, Range: "xsd:string"}}
}

func TestValidate_WellFormed(t *testing.T) {
	sub := &FilterObject{Edges: []Edge{{Property: "http://ex.com/schema#name", Value: &Required{Object: stringEq("Jim")}}}}
	f := &FilterObject{
		Restriction: "reviewed",
		Edges: []Edge{
			{Property: "http://ex.com/schema#friend", Value: &Collection{Op: SomeHave, Object: &NodeFilter{Filter: sub, Class: "Person"}}},
			{Property: "_or", Value: &Or{Filters: []*FilterObject{sub, sub}}},
			{Property: "_not", Value: &Not{Filter: sub}},
			{Property: "http://ex.com/schema#bio", Value: &Required{Object: &ValueFilter{Type: &TextFilter{
				Op:    TextOp{Kind: TextRegex, Regex: regexp.MustCompile("^J")},
				Range: "xsd:string",
			}}}},
			{Property: "http://ex.com/schema#big", Value: &Required{Object: &ValueFilter{Type: &BigIntFilter{Op: Gt, Value: big.NewInt(3)}}}},
		},
	}

	result := Validate(f)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
}

func TestValidate_EmptyFilterIsValid(t *testing.T) {
	assert.True(t, Validate(&FilterObject{}).Valid)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		filter  *FilterObject
		problem string
	}{
		{"nil filter", nil, "filter: nil filter"},
		{
			"edge without property",
			&FilterObject{Edges: []Edge{{Value: &Required{Object: stringEq("x")}}}},
			"edge without property",
		},
		{
			"nil value",
			&FilterObject{Edges: []Edge{{Property: "p"}}},
			"nil filter value",
		},
		{
			"empty or",
			&FilterObject{Edges: []Edge{{Property: "_or", Value: &Or{}}}},
			"_or without operands",
		},
		{
			"nil and operand",
			&FilterObject{Edges: []Edge{{Property: "_and", Value: &And{Filters: []*FilterObject{nil}}}}},
			"filter.edges[0] (_and).filters[0]: nil filter",
		},
		{
			"nil not",
			&FilterObject{Edges: []Edge{{Property: "_not", Value: &Not{}}}},
			"nil filter",
		},
		{
			"nil object",
			&FilterObject{Edges: []Edge{{Property: "p", Value: &Required{}}}},
			"nil object filter",
		},
		{
			"regex without pattern",
			&FilterObject{Edges: []Edge{{Property: "p", Value: &Required{Object: &ValueFilter{Type: &TextFilter{Op: TextOp{Kind: TextRegex}}}}}}},
			"regex operator without pattern",
		},
		{
			"terms without terms",
			&FilterObject{Edges: []Edge{{Property: "p", Value: &Collection{Op: AllHave, Object: &ValueFilter{Type: &TextFilter{Op: TextOp{Kind: TextAnyOfTerms}}}}}}},
			"anyOfTerms without terms",
		},
		{
			"boolean lt",
			&FilterObject{Edges: []Edge{{Property: "p", Value: &Required{Object: &ValueFilter{Type: &BoolFilter{Op: Lt}}}}}},
			"boolean filter supports eq and ne, got lt",
		},
		{
			"unknown quantifier",
			&FilterObject{Edges: []Edge{{Property: "p", Value: &Collection{Op: CollectionOp(9), Object: stringEq("x")}}}},
			"unknown collection operator 9",
		},
		{
			"nested node",
			&FilterObject{Edges: []Edge{{Property: "p", Value: &Required{Object: &NodeFilter{}}}}},
			"filter.edges[0] (p).node: nil filter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.filter)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Problems)
			assert.Contains(t, result.Error(), tt.problem)
		})
	}
}

func TestGenericOpMatches(t *testing.T) {
	tests := []struct {
		op   GenericOp
		less bool
		eq   bool
		more bool
	}{
		{Eq, false, true, false},
		{Ne, true, false, true},
		{Lt, true, false, false},
		{Le, true, true, false},
		{Gt, false, false, true},
		{Ge, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.less, tt.op.Matches(-1))
			assert.Equal(t, tt.eq, tt.op.Matches(0))
			assert.Equal(t, tt.more, tt.op.Matches(1))
		})
	}
}

func TestParseCollectionOp(t *testing.T) {
	op, ok := ParseCollectionOp("allHave")
	require.True(t, ok)
	assert.Equal(t, AllHave, op)
	assert.Equal(t, "allHave", op.String())

	_, ok = ParseCollectionOp("noneHave")
	assert.False(t, ok)
}
