package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulumdb/regulumdb/internal/ir"
)

func hobbitDoc() *ir.IRObject {
	return ir.NewIRObjectFromPairs(
		ir.O("@id", ir.IRString("Book/hobbit")),
		ir.O("title", ir.IRString("The Hobbit")),
		ir.O("pages", ir.IRNumber("310")),
		ir.O("price", ir.IRNumber("12.5")),
		ir.O("tags", ir.IRArray{ir.IRString("classic"), ir.IRString("fantasy")}),
		ir.O("author", ir.NewIRObjectFromPairs(
			ir.O("@id", ir.IRString("Author/tolkien")),
			ir.O("name", ir.IRString("J.R.R. Tolkien")),
		)),
	)
}

func mustIR(t *testing.T, v any) ir.IRValue {
	t.Helper()
	out, err := convertToIRValue(v)
	require.NoError(t, err)
	return out
}

func TestMatchValue_SubsetSemantics(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		wantPath string
	}{
		{"empty object matches", map[string]any{}, ""},
		{"single key", map[string]any{"title": "The Hobbit"}, ""},
		{"integer from yaml", map[string]any{"pages": 310}, ""},
		{"decimal from yaml", map[string]any{"price": 12.5}, ""},
		{"nested subset", map[string]any{"author": map[string]any{"name": "J.R.R. Tolkien"}}, ""},
		{"array exact", map[string]any{"tags": []any{"classic", "fantasy"}}, ""},
		{"wrong scalar", map[string]any{"pages": 311}, "pages"},
		{"missing key", map[string]any{"isbn": "x"}, "document root"},
		{"nested mismatch", map[string]any{"author": map[string]any{"name": "Tolkien"}}, "author.name"},
		{"array too short", map[string]any{"tags": []any{"classic"}}, "tags"},
		{"array order", map[string]any{"tags": []any{"fantasy", "classic"}}, "tags[0]"},
		{"object expected", map[string]any{"title": map[string]any{}}, "title"},
		{"array expected", map[string]any{"title": []any{}}, "title"},
		{"type differs", map[string]any{"pages": "310"}, "pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := matchValue("", mustIR(t, tt.expected), hobbitDoc())
			if tt.wantPath == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.wantPath, ae.Path)
		})
	}
}

func TestMatchValue_NullMatchesNull(t *testing.T) {
	assert.NoError(t, matchValue("", ir.IRNull{}, ir.IRNull{}))
	assert.Error(t, matchValue("", ir.IRNull{}, ir.IRString("x")))
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Step:     "document",
		Path:     "author.name",
		Expected: `"Tolkien"`,
		Actual:   `"J.R.R. Tolkien"`,
	}

	s := err.Error()
	assert.Contains(t, s, "Assertion failed: document at author.name")
	assert.Contains(t, s, `Expected: "Tolkien"`)
	assert.Contains(t, s, `Actual: "J.R.R. Tolkien"`)

	err.Path = ""
	assert.NotContains(t, err.Error(), " at ")
}

func TestConvertToIRValue(t *testing.T) {
	got, err := convertToIRValue(map[string]any{
		"s":    "x",
		"i":    7,
		"big":  uint64(18446744073709551615),
		"f":    1.5,
		"b":    true,
		"n":    nil,
		"list": []any{1, "two"},
	})
	require.NoError(t, err)

	obj, ok := got.(*ir.IRObject)
	require.True(t, ok)
	want := map[string]ir.IRValue{
		"s":    ir.IRString("x"),
		"i":    ir.IRInt(7),
		"big":  ir.IRNumber("18446744073709551615"),
		"f":    ir.IRFloat(1.5),
		"b":    ir.IRBool(true),
		"n":    ir.IRNull{},
		"list": ir.IRArray{ir.IRInt(1), ir.IRString("two")},
	}
	for key, w := range want {
		v, ok := obj.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, w, v, key)
	}

	_, err = convertToIRValue(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "bad"`)
}
