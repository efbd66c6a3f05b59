package graph

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/regulumdb/regulumdb/internal/ir"
)

// integerTypes are the XSD datatypes whose lexical space is a subset of the integers.
var integerTypes = map[string]bool{
	XSD + "integer":            true,
	XSD + "int":                true,
	XSD + "long":               true,
	XSD + "short":              true,
	XSD + "byte":               true,
	XSD + "nonNegativeInteger": true,
	XSD + "positiveInteger":    true,
	XSD + "nonPositiveInteger": true,
	XSD + "negativeInteger":    true,
	XSD + "unsignedLong":       true,
	XSD + "unsignedInt":        true,
	XSD + "unsignedShort":      true,
	XSD + "unsignedByte":       true,
}

// IsIntegerType reports whether datatype is one of the XSD integer types.
func IsIntegerType(datatype string) bool {
	return integerTypes[datatype]
}

// Native converts the literal to the document model's scalar type.
// Lexical forms that do not parse under their datatype render as strings.
func (l Literal) Native() ir.IRValue {
	switch {
	case l.Datatype == XSD+"boolean":
		switch strings.TrimSpace(l.Lexical) {
		case "true", "1":
			return ir.IRBool(true)
		case "false", "0":
			return ir.IRBool(false)
		}
	case integerTypes[l.Datatype]:
		s := strings.TrimPrefix(strings.TrimSpace(l.Lexical), "+")
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ir.IRInt(n)
		}
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return ir.IRNumber(n.String())
		}
	case l.Datatype == XSD+"decimal":
		if d, _, err := apd.NewFromString(strings.TrimSpace(l.Lexical)); err == nil && d.Form == apd.Finite {
			text := d.Text('f')
			if json.Valid([]byte(text)) {
				return ir.IRNumber(text)
			}
		}
	case l.Datatype == XSD+"float" || l.Datatype == XSD+"double":
		if f, err := strconv.ParseFloat(strings.TrimSpace(l.Lexical), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return ir.IRFloat(f)
		}
	}
	return ir.IRString(l.Lexical)
}
