package testutil

import (
	"strconv"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
)

// Namespaces of the library fixture.
const (
	Base   = "http://ex.com/data/"
	Schema = "http://ex.com/schema#"
)

// Doc expands an instance name against Base.
func Doc(name string) string { return Base + name }

// Prop expands a class, property or enum name against Schema.
func Prop(name string) string { return Schema + name }

// LibraryFrames returns the library schema:
//
//	Genre    enum: fiction, "non fiction"
//	Address  subdocument: street, city
//	Author   name, born?, address?, rating?
//	Book     title, pages?, genre?, author, tags{}, chapters[], grid[][], price?, published?, inPrint?
//	Novel    Book + series?
//	Series   unfoldable: name, volumes{}
func LibraryFrames() *frame.AllFrames {
	req := func(class string) frame.FieldDefinition {
		return frame.FieldDefinition{Kind: frame.Required, Class: class}
	}
	opt := func(class string) frame.FieldDefinition {
		return frame.FieldDefinition{Kind: frame.Optional, Class: class}
	}
	set := func(class string) frame.FieldDefinition {
		return frame.FieldDefinition{Kind: frame.Set, Class: class}
	}

	return frame.New(frame.NewPrefixes(Base, Schema),
		&frame.EnumDefinition{Name: "Genre", Values: []string{"fiction", "non fiction"}},
		&frame.ClassDefinition{
			Name:        "Address",
			Subdocument: true,
			Fields: []frame.Field{
				{Name: "street", Def: req("xsd:string")},
				{Name: "city", Def: req("xsd:string")},
			},
		},
		&frame.ClassDefinition{
			Name: "Author",
			Fields: []frame.Field{
				{Name: "name", Def: req("xsd:string")},
				{Name: "born", Def: opt("xsd:dateTime")},
				{Name: "address", Def: opt("Address")},
				{Name: "rating", Def: opt("xsd:decimal")},
			},
		},
		&frame.ClassDefinition{
			Name: "Book",
			Fields: []frame.Field{
				{Name: "title", Def: req("xsd:string")},
				{Name: "pages", Def: opt("xsd:integer")},
				{Name: "genre", Def: opt("Genre")},
				{Name: "author", Def: req("Author")},
				{Name: "tags", Def: set("xsd:string")},
				{Name: "chapters", Def: frame.FieldDefinition{Kind: frame.List, Class: "xsd:string"}},
				{Name: "grid", Def: frame.FieldDefinition{Kind: frame.Array, Class: "xsd:boolean", Dimensions: 2}},
				{Name: "price", Def: opt("xsd:decimal")},
				{Name: "published", Def: opt("xsd:dateTime")},
				{Name: "inPrint", Def: opt("xsd:boolean")},
			},
		},
		&frame.ClassDefinition{
			Name:     "Novel",
			Inherits: []string{"Book"},
			Fields: []frame.Field{
				{Name: "series", Def: opt("Series")},
			},
		},
		&frame.ClassDefinition{
			Name:       "Series",
			Unfoldable: true,
			Fields: []frame.Field{
				{Name: "name", Def: req("xsd:string")},
				{Name: "volumes", Def: set("Book")},
			},
		},
	)
}

// Library wraps a Builder with helpers for the library namespaces.
type Library struct {
	*graph.Builder
}

// NewLibrary returns a builder preloaded with the library dataset.
func NewLibrary() *Library {
	l := &Library{Builder: graph.NewBuilder()}
	l.populate()
	return l
}

// LibraryLayer returns the library dataset as a layer.
func LibraryLayer() *graph.MemoryLayer {
	return NewLibrary().Build()
}

// Typed adds an rdf:type triple.
func (l *Library) Typed(doc, class string) {
	l.AddNode(Doc(doc), graph.RDFType, Prop(class))
}

// Link adds a node-valued property.
func (l *Library) Link(doc, prop, target string) {
	l.AddNode(Doc(doc), Prop(prop), Doc(target))
}

// Value adds a literal property.
func (l *Library) Value(doc, prop string, v graph.Literal) {
	l.AddValue(Doc(doc), Prop(prop), v)
}

// Enum adds an enum-valued property.
func (l *Library) Enum(doc, prop, enum, value string) {
	l.AddNode(Doc(doc), Prop(prop), LibraryFrames().EnumValueIRI(enum, value))
}

// List adds prop as an RDF list of strings. Cells are named doc/prop/N.
func (l *Library) List(doc, prop string, items ...string) {
	if len(items) == 0 {
		l.AddNode(Doc(doc), Prop(prop), graph.RDFNil)
		return
	}
	cell := func(i int) string { return Doc(doc) + "/" + prop + "/" + strconv.Itoa(i) }
	l.AddNode(Doc(doc), Prop(prop), cell(0))
	for i, item := range items {
		l.AddNode(cell(i), graph.RDFType, graph.RDFList)
		l.AddValue(cell(i), graph.RDFFirst, graph.StringLiteral(item))
		if i == len(items)-1 {
			l.AddNode(cell(i), graph.RDFRest, graph.RDFNil)
		} else {
			l.AddNode(cell(i), graph.RDFRest, cell(i+1))
		}
	}
}

// Cell adds one sys:Array cell of prop. index is most significant first.
func (l *Library) Cell(doc, prop string, v graph.Literal, index ...int) {
	name := Doc(doc) + "/" + prop
	for _, i := range index {
		name += "/" + strconv.Itoa(i)
	}
	l.AddNode(Doc(doc), Prop(prop), name)
	l.AddNode(name, graph.RDFType, graph.SysArray)
	l.AddValue(name, graph.SysValue, v)
	for n := range index {
		l.AddValue(name, graph.SysIndexN(n+1), graph.IntegerLiteral(int64(index[len(index)-1-n])))
	}
}

func dateTime(s string) graph.Literal { return graph.TypedLiteral("dateTime", s) }
func decimal(s string) graph.Literal  { return graph.TypedLiteral("decimal", s) }

func (l *Library) populate() {
	l.Typed("Author/tolkien", "Author")
	l.Value("Author/tolkien", "name", graph.StringLiteral("J.R.R. Tolkien"))
	l.Value("Author/tolkien", "born", dateTime("1892-01-03T00:00:00Z"))
	l.Value("Author/tolkien", "rating", decimal("4.5"))
	l.Link("Author/tolkien", "address", "Author/tolkien/Address/home")
	l.Typed("Author/tolkien/Address/home", "Address")
	l.Value("Author/tolkien/Address/home", "street", graph.StringLiteral("20 Northmoor Road"))
	l.Value("Author/tolkien/Address/home", "city", graph.StringLiteral("Oxford"))

	l.Typed("Author/pratchett", "Author")
	l.Value("Author/pratchett", "name", graph.StringLiteral("Terry Pratchett"))
	l.Value("Author/pratchett", "born", dateTime("1948-04-28T00:00:00Z"))
	l.Value("Author/pratchett", "rating", decimal("4.8"))

	l.Typed("Author/anon", "Author")
	l.Value("Author/anon", "name", graph.StringLiteral("Anonymous"))

	l.Typed("Book/hobbit", "Book")
	l.Value("Book/hobbit", "title", graph.StringLiteral("The Hobbit"))
	l.Value("Book/hobbit", "pages", graph.IntegerLiteral(310))
	l.Enum("Book/hobbit", "genre", "Genre", "fiction")
	l.Link("Book/hobbit", "author", "Author/tolkien")
	l.Value("Book/hobbit", "tags", graph.StringLiteral("classic"))
	l.Value("Book/hobbit", "tags", graph.StringLiteral("fantasy"))
	l.List("Book/hobbit", "chapters", "An Unexpected Party", "Roast Mutton")
	l.Cell("Book/hobbit", "grid", graph.BoolLiteral(true), 0, 0)
	l.Cell("Book/hobbit", "grid", graph.BoolLiteral(false), 0, 1)
	l.Cell("Book/hobbit", "grid", graph.BoolLiteral(false), 1, 0)
	l.Cell("Book/hobbit", "grid", graph.BoolLiteral(true), 1, 1)
	l.Value("Book/hobbit", "price", decimal("12.5"))
	l.Value("Book/hobbit", "published", dateTime("1937-09-21T00:00:00Z"))
	l.Value("Book/hobbit", "inPrint", graph.BoolLiteral(true))

	l.Typed("Book/beowulf", "Book")
	l.Value("Book/beowulf", "title", graph.StringLiteral("Beowulf"))
	l.Link("Book/beowulf", "author", "Author/anon")
	l.Value("Book/beowulf", "price", decimal("5"))
	l.Value("Book/beowulf", "inPrint", graph.BoolLiteral(false))

	l.Typed("Book/letters", "Book")
	l.Value("Book/letters", "title", graph.StringLiteral("The Letters of J.R.R. Tolkien"))
	l.Value("Book/letters", "pages", graph.IntegerLiteral(463))
	l.Enum("Book/letters", "genre", "Genre", "non fiction")
	l.Link("Book/letters", "author", "Author/tolkien")
	l.Value("Book/letters", "tags", graph.StringLiteral("letters"))
	l.Value("Book/letters", "price", decimal("20"))
	l.Value("Book/letters", "published", dateTime("1981-08-20T00:00:00Z"))
	l.Value("Book/letters", "inPrint", graph.BoolLiteral(false))

	l.Typed("Novel/colour", "Novel")
	l.Value("Novel/colour", "title", graph.StringLiteral("The Colour of Magic"))
	l.Value("Novel/colour", "pages", graph.IntegerLiteral(288))
	l.Enum("Novel/colour", "genre", "Genre", "fiction")
	l.Link("Novel/colour", "author", "Author/pratchett")
	l.Value("Novel/colour", "tags", graph.StringLiteral("fantasy"))
	l.Value("Novel/colour", "tags", graph.StringLiteral("humour"))
	l.Value("Novel/colour", "price", decimal("9.99"))
	l.Value("Novel/colour", "published", dateTime("1983-11-24T00:00:00Z"))
	l.Value("Novel/colour", "inPrint", graph.BoolLiteral(true))
	l.Link("Novel/colour", "series", "Series/discworld")

	l.Typed("Series/discworld", "Series")
	l.Value("Series/discworld", "name", graph.StringLiteral("Discworld"))
	l.Link("Series/discworld", "volumes", "Novel/colour")
}
