package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulumdb/regulumdb/internal/graph"
)

func TestLibraryLayer(t *testing.T) {
	g := LibraryLayer()

	hobbit, ok := g.SubjectID(Doc("Book/hobbit"))
	require.True(t, ok)
	title, ok := g.PredicateID(Prop("title"))
	require.True(t, ok)

	tr, ok := g.SingleTripleSP(hobbit, title)
	require.True(t, ok)
	obj, ok := g.IDObject(tr.Object)
	require.True(t, ok)
	assert.Equal(t, graph.StringLiteral("The Hobbit"), obj.Value)
}

func TestLibraryCellIndexOrder(t *testing.T) {
	l := &Library{Builder: graph.NewBuilder()}
	l.Cell("x", "grid", graph.BoolLiteral(true), 4, 7)
	g := l.Build()

	cell, ok := g.SubjectID(Doc("x/grid/4/7"))
	require.True(t, ok)

	index := func(pred string) string {
		p, ok := g.PredicateID(pred)
		require.True(t, ok)
		tr, ok := g.SingleTripleSP(cell, p)
		require.True(t, ok)
		obj, _ := g.IDObject(tr.Object)
		return obj.Value.Lexical
	}
	assert.Equal(t, "7", index(graph.SysIndexN(1)), "sys:index holds the innermost dimension")
	assert.Equal(t, "4", index(graph.SysIndexN(2)))
}

func TestLibraryFramesResolve(t *testing.T) {
	frames := LibraryFrames()
	def, ok := frames.ResolveField("Novel", "tags")
	require.True(t, ok)
	assert.True(t, def.Kind.IsCollection())
	assert.Equal(t, []string{"Book", "Novel"}, frames.Subsumed("Book"))
}
