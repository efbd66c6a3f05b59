package gqlinput

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulumdb/regulumdb/internal/ir"
)

func TestParse(t *testing.T) {
	tests := []struct {
		literal string
		want    ir.IRValue
	}{
		{`"x"`, ir.IRString("x")},
		{`fiction`, ir.IRString("fiction")},
		{`42`, ir.IRInt(42)},
		{`-7`, ir.IRInt(-7)},
		{`123456789012345678901234567890`, ir.IRNumber("123456789012345678901234567890")},
		{`1.5`, ir.IRFloat(1.5)},
		{`12.50`, ir.IRNumber("12.50")},
		{`true`, ir.IRBool(true)},
		{`null`, ir.IRNull{}},
		{`[1, "a", [false]]`, ir.IRArray{ir.IRInt(1), ir.IRString("a"), ir.IRArray{ir.IRBool(false)}}},
		{`[]`, ir.IRArray{}},
		{`"""block"""`, ir.IRString("block")},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got, err := Parse(tt.literal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseObjectKeepsOrder(t *testing.T) {
	got, err := Parse(`{title: {startsWith: "The"}, _or: [{pages: {gt: 300}}, {genre: {eq: fiction}}], author: {name: {eq: "x"}}}`)
	require.NoError(t, err)

	obj, ok := got.(*ir.IRObject)
	require.True(t, ok)
	assert.Equal(t, []string{"title", "_or", "author"}, obj.Keys())

	or, _ := obj.Get("_or")
	require.Len(t, or, 2)
	first := or.(ir.IRArray)[0].(*ir.IRObject)
	pages, _ := first.Get("pages")
	gt, _ := pages.(*ir.IRObject).Get("gt")
	assert.Equal(t, ir.IRInt(300), gt)
}

func TestParseVariables(t *testing.T) {
	got, err := ParseWithVariables(`{pages: {gt: $min}}`, map[string]ir.IRValue{"min": ir.IRInt(100)})
	require.NoError(t, err)

	pages, _ := got.(*ir.IRObject).Get("pages")
	gt, _ := pages.(*ir.IRObject).Get("gt")
	assert.Equal(t, ir.IRInt(100), gt)

	_, err = Parse(`{pages: {gt: $min}}`)
	assert.ErrorContains(t, err, "variable $min is not defined")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		literal string
		message string
	}{
		{`{title: }`, "Unexpected"},
		{`{a: 1, a: 2}`, `field "a" given twice`},
		{`{title: "x"`, "Expected"},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			_, err := Parse(tt.literal)
			require.Error(t, err)
			var gerr *Error
			require.True(t, errors.As(err, &gerr))
			assert.Contains(t, gerr.Message, tt.message)
		})
	}
}

func TestErrorPositionIsRelativeToLiteral(t *testing.T) {
	_, err := Parse(`{a: 1, a: 2}`)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 1, gerr.Line)
	assert.Equal(t, 11, gerr.Column)
}
