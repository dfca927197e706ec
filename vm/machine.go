package vm

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Machine: Bytecode execution engine
// ---------------------------------------------------------------------------

// Machine executes one walc bytecode program. It owns its program counter,
// operand stack, binding table and fault log; nothing is shared between
// machines, so separate machines may run on separate goroutines.
//
// Recoverable faults are logged and execution continues with the next
// instruction. Fatal faults (a truncated operand, a corrupt identifier or
// an unknown opcode) stop decoding immediately.
type Machine struct {
	code     []byte
	reader   *BytecodeReader
	stack    Stack
	bindings *Bindings
	faults   []Fault
	halted   bool
}

// New creates a machine for the given bytecode.
func New(code []byte) *Machine {
	return &Machine{code: code}
}

// Execute runs code on a fresh machine and returns the value left on top of
// the stack, or an *Error listing every fault detected.
func Execute(code []byte) (float64, error) {
	return New(code).Run()
}

// Run executes the program from the start. Each call begins with an empty
// stack and an empty binding table.
func (m *Machine) Run() (float64, error) {
	m.reader = NewBytecodeReader(m.code)
	m.stack = Stack{}
	m.bindings = NewBindings(nil)
	m.faults = nil
	m.halted = false

	for !m.halted && m.reader.HasMore() {
		m.step()
	}

	if m.stack.Len() == 0 {
		m.fault(NoResult, -1, "No result.")
	}
	if len(m.faults) > 0 {
		return 0, &Error{Faults: m.Faults()}
	}

	top, _ := m.stack.Peek()
	v, ok := top.Float()
	if !ok {
		m.fault(TypeMismatchOnStack, -1, fmt.Sprintf("Result is an %s, not a number.", top.Kind()))
		return 0, &Error{Faults: m.Faults()}
	}
	return v, nil
}

// Bindings returns the binding table of the last run.
func (m *Machine) Bindings() *Bindings {
	if m.bindings == nil {
		return NewBindings(nil)
	}
	return m.bindings
}

// Stack returns the operand stack contents after the last run, bottom first.
func (m *Machine) Stack() []Cell {
	return m.stack.Cells()
}

// Faults returns a copy of the fault log of the last run.
func (m *Machine) Faults() []Fault {
	out := make([]Fault, len(m.faults))
	copy(out, m.faults)
	return out
}

func (m *Machine) fault(kind FaultKind, pc int, msg string) {
	m.faults = append(m.faults, Fault{Kind: kind, PC: pc, Message: msg})
	if kind.Fatal() {
		m.halted = true
	}
}

// step decodes and executes one instruction.
func (m *Machine) step() {
	pc := m.reader.Position()
	op, _ := m.reader.ReadOpcode()

	switch {
	case op == OpPush:
		v, ok := m.reader.ReadFloat64()
		if !ok {
			m.fault(TruncatedOperand, pc, fmt.Sprintf(
				"Not enough bytes to convert static code into float: PUSH at %d needs %d, %d remain.",
				pc, FloatOperandLen, m.reader.Remaining()))
			return
		}
		m.stack.PushFloat(v)

	case op == OpIdentifier:
		m.identifier(pc)

	case op == OpVarWrite:
		m.varWrite(pc)

	case op.IsBinary():
		m.binary(op, pc)

	default:
		m.fault(UnknownOpcode, pc, fmt.Sprintf("Unknown opcode 0x%02X at %d.", byte(op), pc))
	}
}

// identifier decodes a length-prefixed UTF-8 name and pushes it.
func (m *Machine) identifier(pc int) {
	n, ok := m.reader.ReadUint8()
	if !ok {
		m.fault(TruncatedOperand, pc, fmt.Sprintf("IDENTIFIER at %d is missing its length byte.", pc))
		return
	}
	raw, ok := m.reader.ReadBytes(int(n))
	if !ok {
		m.fault(TruncatedOperand, pc, fmt.Sprintf(
			"IDENTIFIER at %d declares %d name bytes, %d remain.", pc, n, m.reader.Remaining()))
		return
	}
	if !utf8.Valid(raw) {
		m.fault(CorruptIdentifier, pc, fmt.Sprintf(
			"Bytecode UTF conversion error at %d. Expected: stream of valid UTF8 bytes for identifier.", pc))
		return
	}
	m.stack.Push(IdentifierValue(string(raw)))
}

// varWrite pops a value and the name beneath it, binds them and pushes the
// value back. On a mismatch the cells already popped stay popped.
func (m *Machine) varWrite(pc int) {
	valueCell, ok := m.stack.Pop()
	if !ok {
		m.fault(InsufficientOperands, pc, fmt.Sprintf("VARWRITE at %d attempted on an empty stack.", pc))
		return
	}
	value, ok := valueCell.Float()
	if !ok {
		m.fault(TypeMismatchOnStack, pc, fmt.Sprintf(
			"VARWRITE at %d expected a float on top of the stack, found %s.", pc, valueCell.Kind()))
		return
	}

	nameCell, ok := m.stack.Pop()
	if !ok {
		m.fault(InsufficientOperands, pc, fmt.Sprintf(
			"VARWRITE at %d expected an identifier below the value, found nothing.", pc))
		return
	}
	name, ok := nameCell.Identifier()
	if !ok {
		m.fault(TypeMismatchOnStack, pc, fmt.Sprintf(
			"VARWRITE at %d expected an identifier below the value, found %s.", pc, nameCell.Kind()))
		return
	}

	m.bindings.Set(name, value)
	m.stack.PushFloat(value)
}

// binary applies an arithmetic opcode. Operands are popped right first.
func (m *Machine) binary(op Opcode, pc int) {
	if m.stack.Len() < 2 {
		m.fault(InsufficientOperands, pc, fmt.Sprintf(
			"Binary operation %s at %d attempted with insufficient operands!", op, pc))
		return
	}
	rightCell, _ := m.stack.Pop()
	leftCell, _ := m.stack.Pop()
	right, rightOK := rightCell.Float()
	left, leftOK := leftCell.Float()
	if !rightOK || !leftOK {
		m.fault(TypeMismatchOnStack, pc, fmt.Sprintf(
			"Binary operation %s at %d expected two floats, found %s and %s.",
			op, pc, leftCell.Kind(), rightCell.Kind()))
		return
	}

	switch op {
	case OpAdd:
		m.stack.PushFloat(left + right)
	case OpSubtract:
		m.stack.PushFloat(left - right)
	case OpMultiply:
		m.stack.PushFloat(left * right)
	case OpDivide:
		if right == 0 {
			m.fault(DivisionByZero, pc, "Cannot divide by zero.")
			return
		}
		m.stack.PushFloat(left / right)
	case OpExponentiate:
		m.stack.PushFloat(math.Pow(left, right))
	}
}
