package queryir

// GenericOp is a relational operator over a three-way comparison.
type GenericOp int

const (
	Eq GenericOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op GenericOp) String() string {
	switch op {
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	case Lt:
		return "lt"
	case Le:
		return "le"
	case Gt:
		return "gt"
	case Ge:
		return "ge"
	default:
		return "unknown"
	}
}

// GenericOps lists the operators in the order the compiler checks input
// keys.
var GenericOps = []GenericOp{Eq, Ne, Lt, Le, Gt, Ge}

// Matches reports whether a comparison result (negative, zero or positive)
// satisfies op.
func (op GenericOp) Matches(cmp int) bool {
	switch {
	case cmp < 0:
		return op == Lt || op == Le || op == Ne
	case cmp == 0:
		return op == Eq || op == Le || op == Ge
	default:
		return op == Gt || op == Ge || op == Ne
	}
}

// EnumOp is the operator of an EnumFilter.
type EnumOp int

const (
	EnumEq EnumOp = iota
	EnumNe
)

func (op EnumOp) String() string {
	if op == EnumNe {
		return "ne"
	}
	return "eq"
}
