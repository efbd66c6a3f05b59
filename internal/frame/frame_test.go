package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames() *AllFrames {
	return New(NewPrefixes("http://ex.com/data/", "http://ex.com/schema#"),
		&ClassDefinition{
			Name: "Agent",
			Fields: []Field{
				{Name: "name", Def: FieldDefinition{Kind: Required, Class: "xsd:string"}},
				{Name: "tags", Def: FieldDefinition{Kind: Set, Class: "xsd:string"}},
			},
		},
		&ClassDefinition{
			Name:     "Person",
			Inherits: []string{"Agent"},
			Fields: []Field{
				{Name: "age", Def: FieldDefinition{Kind: Optional, Class: "xsd:integer"}},
				{Name: "name", Def: FieldDefinition{Kind: Optional, Class: "xsd:string"}},
				{Name: "color", Def: FieldDefinition{Kind: Optional, Class: "Color"}},
				{Name: "friend", Def: FieldDefinition{Kind: Set, Class: "Person"}},
			},
		},
		&ClassDefinition{Name: "Employee", Inherits: []string{"Person"}},
		&EnumDefinition{Name: "Color", Values: []string{"red", "dark blue"}},
	)
}

func TestFieldsIncludeInherited(t *testing.T) {
	a := testFrames()

	var names []string
	for _, f := range a.Fields("Employee") {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "tags", "age", "color", "friend"}, names)

	def, ok := a.ResolveField("Person", "name")
	require.True(t, ok)
	assert.Equal(t, Optional, def.Kind, "subclass redefinition wins")

	_, ok = a.ResolveField("Agent", "age")
	assert.False(t, ok)
}

func TestSubsumed(t *testing.T) {
	a := testFrames()
	assert.Equal(t, []string{"Agent", "Person", "Employee"}, a.Subsumed("Agent"))
	assert.Equal(t, []string{"Employee"}, a.Subsumed("Employee"))
	assert.Equal(t, []string{"Nope"}, a.Subsumed("Nope"))
}

func TestInheritanceCycleDoesNotLoop(t *testing.T) {
	a := New(NewPrefixes("b/", "s#"),
		&ClassDefinition{Name: "A", Inherits: []string{"B"}, Fields: []Field{{Name: "a", Def: FieldDefinition{Class: "xsd:string"}}}},
		&ClassDefinition{Name: "B", Inherits: []string{"A"}, Fields: []Field{{Name: "b", Def: FieldDefinition{Class: "xsd:string"}}}},
	)
	assert.Len(t, a.Fields("A"), 2)
	assert.ElementsMatch(t, []string{"A", "B"}, a.Subsumed("A"))
}

func TestRangeKind(t *testing.T) {
	a := testFrames()
	assert.Equal(t, TypeBase, a.RangeKind(FieldDefinition{Class: "xsd:string"}))
	assert.Equal(t, TypeClass, a.RangeKind(FieldDefinition{Class: "Person"}))
	assert.Equal(t, TypeEnum, a.RangeKind(FieldDefinition{Class: "Color"}))
	assert.Equal(t, TypeUnknown, a.RangeKind(FieldDefinition{Class: "Ghost"}))
}

func TestIRIs(t *testing.T) {
	a := testFrames()
	assert.Equal(t, "http://ex.com/schema#Person", a.ClassIRI("Person"))
	assert.Equal(t, "http://ex.com/schema#age", a.PropertyIRI("age"))
	assert.Equal(t, "http://ex.com/schema#Color/dark%20blue", a.EnumValueIRI("Color", "dark blue"))
}

func TestFieldKind(t *testing.T) {
	for _, k := range []FieldKind{Optional, Set, List, Array, Cardinality} {
		parsed, ok := ParseFieldKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseFieldKind("Required")
	assert.False(t, ok, "Required is written as a bare class name")

	assert.False(t, Required.IsCollection())
	assert.False(t, Optional.IsCollection())
	assert.True(t, Array.IsCollection())
}

func TestBaseTypeKind(t *testing.T) {
	tests := []struct {
		class string
		want  ScalarKind
		ok    bool
	}{
		{"xsd:string", KindString, true},
		{"xsd:int", KindInt, true},
		{"xsd:integer", KindBigInt, true},
		{"xsd:double", KindFloat, true},
		{"xsd:decimal", KindDecimal, true},
		{"xsd:boolean", KindBool, true},
		{"xsd:dateTime", KindDateTime, true},
		{"xsd:bogus", 0, false},
		{"Person", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, ok := BaseTypeKind(tt.class)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
