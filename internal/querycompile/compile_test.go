package querycompile

import (
	"math/big"
	"regexp"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulumdb/regulumdb/internal/gqlinput"
	"github.com/regulumdb/regulumdb/internal/queryir"
	"github.com/regulumdb/regulumdb/internal/testutil"
)

var filterCmp = []cmp.Option{
	cmp.Comparer(func(a, b *regexp.Regexp) bool { return a.String() == b.String() }),
	cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 }),
	cmp.Comparer(func(a, b *apd.Decimal) bool { return a.Cmp(b) == 0 }),
}

func compile(t *testing.T, class, literal string) (*queryir.FilterObject, error) {
	t.Helper()
	input, err := gqlinput.Parse(literal)
	require.NoError(t, err)
	return CompileFilter(testutil.LibraryFrames(), class, input)
}

func value(ft queryir.FilterType) *queryir.Required {
	return &queryir.Required{Object: &queryir.ValueFilter{Type: ft}}
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name    string
		class   string
		literal string
		want    *queryir.FilterObject
	}{
		{
			name:    "empty",
			class:   "Book",
			literal: `{}`,
			want:    &queryir.FilterObject{},
		},
		{
			name:    "string eq",
			class:   "Book",
			literal: `{title: {eq: "The Hobbit"}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("title"),
				Value:    value(&queryir.StringFilter{Op: queryir.Eq, Value: "The Hobbit", Range: "xsd:string"}),
			}}},
		},
		{
			name:    "first operand wins",
			class:   "Book",
			literal: `{title: {ge: "M", eq: "X"}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("title"),
				Value:    value(&queryir.StringFilter{Op: queryir.Eq, Value: "X", Range: "xsd:string"}),
			}}},
		},
		{
			name:    "le stays le",
			class:   "Book",
			literal: `{pages: {le: 300}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("pages"),
				Value:    value(&queryir.BigIntFilter{Op: queryir.Le, Value: big.NewInt(300), Range: "xsd:integer"}),
			}}},
		},
		{
			name:    "big integer from string",
			class:   "Book",
			literal: `{pages: {gt: "123456789012345678901234567890"}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("pages"),
				Value: value(&queryir.BigIntFilter{
					Op:    queryir.Gt,
					Value: func() *big.Int { n, _ := new(big.Int).SetString("123456789012345678901234567890", 10); return n }(),
					Range: "xsd:integer",
				}),
			}}},
		},
		{
			name:    "decimal",
			class:   "Book",
			literal: `{price: {lt: 10.50}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("price"),
				Value:    value(&queryir.DecimalFilter{Op: queryir.Lt, Value: apd.New(105, -1), Range: "xsd:decimal"}),
			}}},
		},
		{
			name:    "bool and datetime",
			class:   "Book",
			literal: `{inPrint: {eq: true}, published: {ge: "1980-01-01T00:00:00Z"}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{
				{
					Property: testutil.Prop("inPrint"),
					Value:    value(&queryir.BoolFilter{Op: queryir.Eq, Value: true, Range: "xsd:boolean"}),
				},
				{
					Property: testutil.Prop("published"),
					Value:    value(&queryir.DateTimeFilter{Op: queryir.Ge, Value: "1980-01-01T00:00:00Z", Range: "xsd:dateTime"}),
				},
			}},
		},
		{
			name:    "text operators",
			class:   "Book",
			literal: `{_and: [{title: {regex: "^The"}}, {title: {allOfTerms: ["Hob", "bit"]}}, {title: {anyOfTerms: "Magic"}}]}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: "_and",
				Value: &queryir.And{Filters: []*queryir.FilterObject{
					{Edges: []queryir.Edge{{
						Property: testutil.Prop("title"),
						Value: value(&queryir.TextFilter{
							Op:    queryir.TextOp{Kind: queryir.TextRegex, Regex: regexp.MustCompile("^The")},
							Range: "xsd:string",
						}),
					}}},
					{Edges: []queryir.Edge{{
						Property: testutil.Prop("title"),
						Value: value(&queryir.TextFilter{
							Op:    queryir.TextOp{Kind: queryir.TextAllOfTerms, Terms: []string{"Hob", "bit"}},
							Range: "xsd:string",
						}),
					}}},
					{Edges: []queryir.Edge{{
						Property: testutil.Prop("title"),
						Value: value(&queryir.TextFilter{
							Op:    queryir.TextOp{Kind: queryir.TextAnyOfTerms, Terms: []string{"Magic"}},
							Range: "xsd:string",
						}),
					}}},
				}},
			}}},
		},
		{
			name:    "enum resolves to node",
			class:   "Book",
			literal: `{genre: {ne: "non fiction"}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("genre"),
				Value: value(&queryir.EnumFilter{
					Op:    queryir.EnumNe,
					Value: testutil.Prop("Genre/non%20fiction"),
					Enum:  "Genre",
				}),
			}}},
		},
		{
			name:    "node edge",
			class:   "Book",
			literal: `{author: {name: {startsWith: "J"}}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("author"),
				Value: &queryir.Required{Object: &queryir.NodeFilter{
					Class: "Author",
					Filter: &queryir.FilterObject{Edges: []queryir.Edge{{
						Property: testutil.Prop("name"),
						Value: value(&queryir.TextFilter{
							Op:    queryir.TextOp{Kind: queryir.TextStartsWith, Prefix: "J"},
							Range: "xsd:string",
						}),
					}}},
				}},
			}}},
		},
		{
			name:    "collections",
			class:   "Series",
			literal: `{volumes: {allHave: {pages: {gt: 100}}}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("volumes"),
				Value: &queryir.Collection{Op: queryir.AllHave, Object: &queryir.NodeFilter{
					Class: "Book",
					Filter: &queryir.FilterObject{Edges: []queryir.Edge{{
						Property: testutil.Prop("pages"),
						Value:    value(&queryir.BigIntFilter{Op: queryir.Gt, Value: big.NewInt(100), Range: "xsd:integer"}),
					}}},
				}},
			}}},
		},
		{
			name:    "value collection",
			class:   "Book",
			literal: `{tags: {someHave: {eq: "fantasy"}}}`,
			want: &queryir.FilterObject{Edges: []queryir.Edge{{
				Property: testutil.Prop("tags"),
				Value: &queryir.Collection{Op: queryir.SomeHave, Object: &queryir.ValueFilter{
					Type: &queryir.StringFilter{Op: queryir.Eq, Value: "fantasy", Range: "xsd:string"},
				}},
			}}},
		},
		{
			name:    "or not restriction",
			class:   "Novel",
			literal: `{_restriction: "inPrint", _or: [{pages: {lt: 300}}], _not: {series: {}}}`,
			want: &queryir.FilterObject{
				Restriction: "inPrint",
				Edges: []queryir.Edge{
					{
						Property: "_or",
						Value: &queryir.Or{Filters: []*queryir.FilterObject{{Edges: []queryir.Edge{{
							Property: testutil.Prop("pages"),
							Value:    value(&queryir.BigIntFilter{Op: queryir.Lt, Value: big.NewInt(300), Range: "xsd:integer"}),
						}}}}},
					},
					{
						Property: "_not",
						Value: &queryir.Not{Filter: &queryir.FilterObject{Edges: []queryir.Edge{{
							Property: testutil.Prop("series"),
							Value: &queryir.Required{Object: &queryir.NodeFilter{
								Class:  "Series",
								Filter: &queryir.FilterObject{},
							}},
						}}}},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compile(t, tt.class, tt.literal)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, filterCmp...); diff != "" {
				t.Errorf("CompileFilter mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, queryir.Validate(got).Valid)
		})
	}
}

func TestCompileFilterErrors(t *testing.T) {
	tests := []struct {
		name    string
		class   string
		literal string
		message string
	}{
		{"unknown class", "Dragon", `{}`, `unknown class "Dragon"`},
		{"not an object", "Book", `[1]`, "filter must be an object"},
		{"unknown field", "Book", `{isbn: {eq: "x"}}`, `isbn: class Book has no field "isbn"`},
		{"no operator", "Book", `{title: {}}`, "title: no operator given"},
		{"unknown operator", "Book", `{title: {like: "x"}}`, "title.like: unknown operator"},
		{"text on integers", "Book", `{pages: {regex: "1"}}`, "pages.regex: unknown operator"},
		{"bool ordering", "Book", `{inPrint: {lt: true}}`, "inPrint.lt: unknown operator"},
		{"wrong operand type", "Book", `{pages: {eq: "many"}}`, `pages.eq: expected an integer, got "many"`},
		{"bad regex", "Book", `{title: {regex: "("}}`, "title.regex: bad pattern"},
		{"bad enum", "Book", `{genre: {eq: "poetry"}}`, `genre.eq: "poetry" is not a value of Genre`},
		{"collection without quantifier", "Book", `{tags: {eq: "x"}}`, `tags: unknown collection operator "eq"`},
		{"collection two quantifiers", "Book", `{tags: {someHave: {eq: "x"}, allHave: {eq: "y"}}}`, "tags: collection filter needs exactly one"},
		{"and needs list", "Book", `{_and: {title: {eq: "x"}}}`, "_and: expected a list of filters"},
		{"or element", "Book", `{_or: [{title: {eq: "x"}}, 3]}`, "_or.1: expected an object, got 3"},
		{"nested path", "Book", `{author: {address: {zip: {eq: "x"}}}}`, `author.address.zip: class Address has no field "zip"`},
		{"restriction name", "Book", `{_restriction: 1}`, "_restriction: expected a restriction name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.class, tt.literal)
			require.Error(t, err)
			assert.True(t, IsCompileError(err))
			assert.Contains(t, err.Error(), "Unable to compile filter: ")
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCompileOrderBy(t *testing.T) {
	input, err := gqlinput.Parse(`{pages: DESC, title: asc}`)
	require.NoError(t, err)

	got, err := CompileOrderBy(input)
	require.NoError(t, err)
	assert.Equal(t, []queryir.OrderField{
		{Property: "pages", Direction: queryir.Desc},
		{Property: "title", Direction: queryir.Asc},
	}, got)

	input, err = gqlinput.Parse(`{pages: UP}`)
	require.NoError(t, err)
	_, err = CompileOrderBy(input)
	assert.ErrorContains(t, err, "orderBy.pages: expected ASC or DESC")
}
