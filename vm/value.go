package vm

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Cell: tagged operand stack value
// ---------------------------------------------------------------------------

// CellKind tags the contents of a Cell.
type CellKind uint8

const (
	FloatCell CellKind = iota + 1
	IdentifierCell
)

func (k CellKind) String() string {
	switch k {
	case FloatCell:
		return "float"
	case IdentifierCell:
		return "identifier"
	}
	return fmt.Sprintf("CellKind(%d)", uint8(k))
}

// Cell is one slot of the operand stack. It holds either a number or a
// pending assignment target, never both. The zero Cell is invalid.
type Cell struct {
	kind  CellKind
	num   float64
	ident string
}

// FloatValue wraps a number.
func FloatValue(v float64) Cell {
	return Cell{kind: FloatCell, num: v}
}

// IdentifierValue wraps a variable name.
func IdentifierValue(name string) Cell {
	return Cell{kind: IdentifierCell, ident: name}
}

// Kind returns the cell's tag.
func (c Cell) Kind() CellKind {
	return c.kind
}

// Float returns the number held by a float cell.
func (c Cell) Float() (float64, bool) {
	return c.num, c.kind == FloatCell
}

// Identifier returns the name held by an identifier cell.
func (c Cell) Identifier() (string, bool) {
	return c.ident, c.kind == IdentifierCell
}

func (c Cell) String() string {
	switch c.kind {
	case FloatCell:
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case IdentifierCell:
		return "#" + c.ident
	}
	return "<invalid>"
}
