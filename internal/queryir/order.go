package queryir

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection accepts ASC or DESC in any case.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "ASC", "asc", "Asc":
		return Asc, true
	case "DESC", "desc", "Desc":
		return Desc, true
	default:
		return 0, false
	}
}

// OrderField orders results by one field of the queried class. Property is
// the field name as written in the frame.
type OrderField struct {
	Property  string
	Direction Direction
}
