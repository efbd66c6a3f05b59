package path

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
)

const (
	base   = "http://ex.com/data/"
	schema = "http://ex.com/schema#"
)

// ring: a -> b -> c -> a over next, a likes d, d -> e over next.
func ring() *graph.MemoryLayer {
	return graph.NewBuilder().
		AddNode(base+"a", schema+"next", base+"b").
		AddNode(base+"b", schema+"next", base+"c").
		AddNode(base+"c", schema+"next", base+"a").
		AddNode(base+"a", schema+"likes", base+"d").
		AddNode(base+"d", schema+"next", base+"e").
		AddValue(base+"a", schema+"label", graph.StringLiteral("A")).
		Build()
}

func TestCompile(t *testing.T) {
	g := ring()
	prefixes := frame.NewPrefixes(base, schema)

	id := func(name string) graph.ID {
		n, ok := g.SubjectID(base + name)
		require.True(t, ok, name)
		return n
	}
	names := func(ids []graph.ID) []string {
		out := []string{}
		for _, n := range ids {
			s, _ := g.IDSubject(n)
			out = append(out, s[len(base):])
		}
		return out
	}

	tests := []struct {
		path  string
		start []string
		want  []string
	}{
		{"next", []string{"a"}, []string{"b"}},
		{"next>", []string{"a", "b"}, []string{"b", "c"}},
		{"<next", []string{"b"}, []string{"a"}},
		{"<.", []string{"e"}, []string{"d"}},
		{".", []string{"a"}, []string{"d", "b"}},
		{"next+", []string{"a"}, []string{"b", "c", "a"}},
		{"next*", []string{"a"}, []string{"a", "b", "c"}},
		{"next*", []string{"d"}, []string{"d", "e"}},
		{"next{2,3}", []string{"a"}, []string{"c", "a"}},
		{"next{0,1}", []string{"a"}, []string{"a", "b"}},
		{"likes|next", []string{"a"}, []string{"d", "b"}},
		{"likes,next", []string{"a"}, []string{"e"}},
		{"(likes|next),next", []string{"a"}, []string{"e", "c"}},
		{"next|next", []string{"a"}, []string{"b"}},
		{"next", []string{"a", "a"}, []string{"b"}},
		{"nope", []string{"a"}, []string{}},
		{"label", []string{"a"}, []string{}},
		{"(<next)+", []string{"a"}, []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := Parse(tt.path)
			require.NoError(t, err)

			start := make([]graph.ID, len(tt.start))
			for i, s := range tt.start {
				start[i] = id(s)
			}
			got := slices.Collect(Compile(p, g, prefixes)(slices.Values(start)))
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestCompileStopsEarly(t *testing.T) {
	g := ring()
	p, err := Parse("next*")
	require.NoError(t, err)

	a, _ := g.SubjectID(base + "a")
	var got []graph.ID
	for id := range Compile(p, g, frame.NewPrefixes(base, schema))(slices.Values([]graph.ID{a})) {
		got = append(got, id)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}
