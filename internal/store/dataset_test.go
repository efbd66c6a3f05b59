package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/testutil"
)

const hobbitYAML = `
triples:
  - {s: Book/hobbit, p: a, o: Book}
  - {s: Book/hobbit, p: title, v: The Hobbit}
  - {s: Book/hobbit, p: pages, v: "310", t: integer}
  - {s: Book/hobbit, p: genre, ref: Genre/fiction}
  - {s: Book/hobbit, p: author, o: Author/tolkien}
  - {s: Book/hobbit/chapters/0, p: "rdf:type", o: "rdf:List"}
  - {s: Book/hobbit/chapters/0, p: "rdf:rest", o: "rdf:nil"}
  - {s: Book/hobbit, p: published, v: "1937-09-21T00:00:00Z", t: "xsd:dateTime"}
`

func TestDataset_Resolve(t *testing.T) {
	ds, err := ParseDataset([]byte(hobbitYAML))
	require.NoError(t, err)

	got, err := ds.Resolve(frame.NewPrefixes(testutil.Base, testutil.Schema))
	require.NoError(t, err)

	hobbit := testutil.Doc("Book/hobbit")
	cell := testutil.Doc("Book/hobbit/chapters/0")
	want := []Triple{
		{Subject: hobbit, Predicate: graph.RDFType, Object: graph.NodeObject(testutil.Prop("Book"))},
		{Subject: hobbit, Predicate: testutil.Prop("title"), Object: graph.ValueObject(graph.StringLiteral("The Hobbit"))},
		{Subject: hobbit, Predicate: testutil.Prop("pages"), Object: graph.ValueObject(graph.IntegerLiteral(310))},
		{Subject: hobbit, Predicate: testutil.Prop("genre"), Object: graph.NodeObject(testutil.Prop("Genre/fiction"))},
		{Subject: hobbit, Predicate: testutil.Prop("author"), Object: graph.NodeObject(testutil.Doc("Author/tolkien"))},
		{Subject: cell, Predicate: graph.RDFType, Object: graph.NodeObject(graph.RDFList)},
		{Subject: cell, Predicate: graph.RDFRest, Object: graph.NodeObject(graph.RDFNil)},
		{Subject: hobbit, Predicate: testutil.Prop("published"), Object: graph.ValueObject(graph.TypedLiteral("dateTime", "1937-09-21T00:00:00Z"))},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestDataset_ResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing subject", `triples: [{p: a, o: Book}]`, "triples[0]: missing subject"},
		{"missing predicate", `triples: [{s: x, o: Book}]`, "triples[0]: missing predicate"},
		{"no object", `triples: [{s: x, p: q}]`, "exactly one of o, ref or v"},
		{"two objects", `triples: [{s: x, p: q, o: y, v: "1"}]`, "exactly one of o, ref or v"},
		{"type without value", `triples: [{s: x, p: q, o: y, t: integer}]`, "t is only valid with v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = ds.Resolve(frame.NewPrefixes(testutil.Base, testutil.Schema))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDataset_UnknownKey(t *testing.T) {
	_, err := ParseDataset([]byte(`triples: [{s: x, p: q, object: y}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dataset")
}

func TestLoadDataset_ImportsIntoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hobbit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(hobbitYAML), 0o644))

	ds, err := LoadDataset(path)
	require.NoError(t, err)
	triples, err := ds.Resolve(frame.NewPrefixes(testutil.Base, testutil.Schema))
	require.NoError(t, err)

	s := createTestStore(t)
	res, err := s.Import(t.Context(), path, triples)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Added)

	layer, err := s.Snapshot(t.Context())
	require.NoError(t, err)
	_, ok := layer.SubjectID(testutil.Doc("Book/hobbit"))
	assert.True(t, ok)
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read dataset")
}
