package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hobbitCanonical = `{"@id":"Book/hobbit","@type":"Book","author":"Author/tolkien","genre":"fiction","pages":310,"tags":["classic","fantasy"],"title":"The Hobbit"}`

func TestDoc_Indented(t *testing.T) {
	db := importLibrary(t)

	out, _, err := execute(t, "doc", "--db", db, "--frames", testFrames, "Book/hobbit")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "doc_hobbit", []byte(out))
}

func TestDoc_Minimized(t *testing.T) {
	db := importLibrary(t)

	out, _, err := execute(t, "doc", "--db", db, "--frames", testFrames, "--minimized", "Book/hobbit", "Book/letters")
	require.NoError(t, err)

	lines := splitLines(out)
	require.Len(t, lines, 2)
	assert.Equal(t, hobbitCanonical, lines[0])
	assert.Contains(t, lines[1], `"genre":"non fiction"`)
}

func TestDoc_JSON(t *testing.T) {
	db := importLibrary(t)

	out, _, err := execute(t, "--format", "json", "doc", "--db", db, "--frames", testFrames, "Author/tolkien")
	require.NoError(t, err)

	var docs []struct {
		ID       string         `json:"id"`
		Document map[string]any `json:"document"`
	}
	decodeData(t, out, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "Author/tolkien", docs[0].ID)
	assert.Equal(t, "J.R.R. Tolkien", docs[0].Document["name"])
	assert.Equal(t, "1892-01-03T00:00:00Z", docs[0].Document["born"])
}

func TestDoc_NoCompress(t *testing.T) {
	db := importLibrary(t)

	out, _, err := execute(t, "doc", "--db", db, "--frames", testFrames, "--minimized", "--no-compress", "Book/hobbit")
	require.NoError(t, err)
	assert.Contains(t, out, `"@id":"http://ex.com/data/Book/hobbit"`)
	assert.Contains(t, out, `"http://ex.com/schema#title":"The Hobbit"`)
}

func TestDoc_Referrers(t *testing.T) {
	db := importLibrary(t)

	out, _, err := execute(t, "--format", "json", "doc", "--db", db, "--frames", testFrames, "--referrers", "Author/tolkien")
	require.NoError(t, err)

	var docs []DocResult
	decodeData(t, out, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, []Referrer{
		{Subject: "Book/hobbit", Predicate: "author"},
		{Subject: "Book/letters", Predicate: "author"},
	}, docs[0].Referrers)

	out, _, err = execute(t, "doc", "--db", db, "--frames", testFrames, "--minimized", "--referrers", "Author/tolkien")
	require.NoError(t, err)
	assert.Contains(t, out, "  <- Book/hobbit author\n")
}

func TestDoc_Errors(t *testing.T) {
	db := importLibrary(t)

	t.Run("unknown document", func(t *testing.T) {
		out, _, err := execute(t, "doc", "--db", db, "--frames", testFrames, "Book/silmarillion")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error ["+ErrCodeNoDocument+"]")
	})

	t.Run("missing database", func(t *testing.T) {
		out, _, err := execute(t, "doc", "--db", "absent.db", "--frames", testFrames, "Book/hobbit")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "database not found")
	})

	t.Run("no ids", func(t *testing.T) {
		_, _, err := execute(t, "doc", "--db", db, "--frames", testFrames)
		require.Error(t, err)
	})
}
