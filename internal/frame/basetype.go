package frame

import "strings"

// ScalarKind groups XSD base types by how values of that type compare.
type ScalarKind int

const (
	KindString ScalarKind = iota
	KindInt
	KindBigInt
	KindFloat
	KindDecimal
	KindBool
	KindDateTime
)

func (k ScalarKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

var baseTypeKinds = map[string]ScalarKind{
	"string":             KindString,
	"anyURI":             KindString,
	"normalizedString":   KindString,
	"token":              KindString,
	"language":           KindString,
	"NMTOKEN":            KindString,
	"Name":               KindString,
	"NCName":             KindString,
	"hexBinary":          KindString,
	"base64Binary":       KindString,
	"date":               KindString,
	"time":               KindString,
	"duration":           KindString,
	"gYear":              KindString,
	"gYearMonth":         KindString,
	"gMonth":             KindString,
	"gMonthDay":          KindString,
	"gDay":               KindString,
	"byte":               KindInt,
	"short":              KindInt,
	"int":                KindInt,
	"long":               KindInt,
	"unsignedByte":       KindInt,
	"unsignedShort":      KindInt,
	"unsignedInt":        KindInt,
	"unsignedLong":       KindBigInt,
	"integer":            KindBigInt,
	"positiveInteger":    KindBigInt,
	"nonNegativeInteger": KindBigInt,
	"negativeInteger":    KindBigInt,
	"nonPositiveInteger": KindBigInt,
	"float":              KindFloat,
	"double":             KindFloat,
	"decimal":            KindDecimal,
	"boolean":            KindBool,
	"dateTime":           KindDateTime,
	"dateTimeStamp":      KindDateTime,
}

// IsBaseType reports whether a field class names an XSD base type.
func IsBaseType(class string) bool {
	return strings.HasPrefix(class, "xsd:")
}

// BaseTypeKind returns the comparison kind of a compact XSD type name such
// as "xsd:integer".
func BaseTypeKind(class string) (ScalarKind, bool) {
	local, ok := strings.CutPrefix(class, "xsd:")
	if !ok {
		return 0, false
	}
	k, ok := baseTypeKinds[local]
	return k, ok
}
