package graph

import "strconv"

// Well-known namespaces.
const (
	RDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSD = "http://www.w3.org/2001/XMLSchema#"
	Sys = "http://regulumdb.com/schema/sys#"
)

// Well-known node and predicate names.
const (
	RDFType  = RDF + "type"
	RDFFirst = RDF + "first"
	RDFRest  = RDF + "rest"
	RDFNil   = RDF + "nil"
	RDFList  = RDF + "List"

	SysArray        = Sys + "Array"
	SysValue        = Sys + "value"
	SysIndex        = Sys + "index"
	SysJSON         = Sys + "JSON"
	SysJSONDocument = Sys + "JSONDocument"
)

// SysIndexN returns the predicate holding the n-th array index component
// (1-based). The first component is sys:index, then sys:index2, sys:index3...
func SysIndexN(n int) string {
	if n <= 1 {
		return SysIndex
	}
	return SysIndex + strconv.Itoa(n)
}
