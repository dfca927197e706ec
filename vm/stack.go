package vm

// Stack is the operand stack of a Machine. It grows as needed; depth is
// bounded only by the length of the program.
type Stack struct {
	cells []Cell
}

// Len returns the number of cells on the stack.
func (s *Stack) Len() int {
	return len(s.cells)
}

// Push adds a cell on top.
func (s *Stack) Push(c Cell) {
	s.cells = append(s.cells, c)
}

// PushFloat pushes a number.
func (s *Stack) PushFloat(v float64) {
	s.Push(FloatValue(v))
}

// Pop removes and returns the top cell.
func (s *Stack) Pop() (Cell, bool) {
	if len(s.cells) == 0 {
		return Cell{}, false
	}
	c := s.cells[len(s.cells)-1]
	s.cells = s.cells[:len(s.cells)-1]
	return c, true
}

// Peek returns the top cell without removing it.
func (s *Stack) Peek() (Cell, bool) {
	if len(s.cells) == 0 {
		return Cell{}, false
	}
	return s.cells[len(s.cells)-1], true
}

// Cells returns a copy of the stack contents, bottom first.
func (s *Stack) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}
