package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction. The byte values are part
// of the wire format and must not change.
type Opcode byte

const (
	OpPush         Opcode = 0 // push inline float64 (8 bytes, little-endian)
	OpAdd          Opcode = 1 // pop right, pop left, push left + right
	OpSubtract     Opcode = 2 // pop right, pop left, push left - right
	OpMultiply     Opcode = 3 // pop right, pop left, push left * right
	OpDivide       Opcode = 4 // pop right, pop left, push left / right
	OpExponentiate Opcode = 5 // pop right, pop left, push left ** right
	OpIdentifier   Opcode = 6 // push name (1 length byte + UTF-8 bytes)
	OpVarWrite     Opcode = 7 // pop value, pop name, bind, push value
)

// FloatOperandLen is the size of a PUSH operand.
const FloatOperandLen = 8

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name         string // human-readable name
	OperandBytes int    // number of operand bytes (-1 = length-prefixed)
	StackEffect  int    // net effect on stack
}

var opcodeTable = [...]OpcodeInfo{
	OpPush:         {"PUSH", FloatOperandLen, 1},
	OpAdd:          {"ADD", 0, -1},
	OpSubtract:     {"SUBTRACT", 0, -1},
	OpMultiply:     {"MULTIPLY", 0, -1},
	OpDivide:       {"DIVIDE", 0, -1},
	OpExponentiate: {"EXPONENTIATE", 0, -1},
	OpIdentifier:   {"IDENTIFIER", -1, 1},
	OpVarWrite:     {"VARWRITE", 0, -1},
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodeTable)
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if op.Valid() {
		return opcodeTable[op]
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// IsBinary reports whether op pops two floats and pushes one.
func (op Opcode) IsBinary() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpExponentiate:
		return true
	}
	return false
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// ---------------------------------------------------------------------------
// BytecodeBuilder: Helper for constructing bytecode
// ---------------------------------------------------------------------------

// BytecodeBuilder helps construct bytecode sequences.
type BytecodeBuilder struct {
	bytes []byte
}

// NewBytecodeBuilder creates a new bytecode builder.
func NewBytecodeBuilder() *BytecodeBuilder {
	return &BytecodeBuilder{
		bytes: make([]byte, 0, 64),
	}
}

// Bytes returns the constructed bytecode.
func (b *BytecodeBuilder) Bytes() []byte {
	return b.bytes
}

// Len returns the current length.
func (b *BytecodeBuilder) Len() int {
	return len(b.bytes)
}

// Emit appends an opcode with no operands.
func (b *BytecodeBuilder) Emit(op Opcode) {
	b.bytes = append(b.bytes, byte(op))
}

// EmitRaw appends a raw byte to the bytecode.
func (b *BytecodeBuilder) EmitRaw(data ...byte) {
	b.bytes = append(b.bytes, data...)
}

// EmitPush appends a PUSH with its 64-bit float operand.
func (b *BytecodeBuilder) EmitPush(value float64) {
	b.bytes = append(b.bytes, byte(OpPush))
	var buf [FloatOperandLen]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	b.bytes = append(b.bytes, buf[:]...)
}

// EmitIdentifier appends an IDENTIFIER with its length-prefixed name.
// Names longer than 255 bytes cannot be encoded; the lexer never produces
// them, so a longer name here is a bug in the caller.
func (b *BytecodeBuilder) EmitIdentifier(name string) {
	if len(name) > math.MaxUint8 {
		panic(fmt.Sprintf("identifier %q... is %d bytes, cannot exceed %d", name[:16], len(name), math.MaxUint8))
	}
	b.bytes = append(b.bytes, byte(OpIdentifier), byte(len(name)))
	b.bytes = append(b.bytes, name...)
}

// ---------------------------------------------------------------------------
// BytecodeReader: sequential decoding
// ---------------------------------------------------------------------------

// BytecodeReader reads bytecode for interpretation or disassembly. Reads
// past the end report false instead of panicking, since streams may come
// from untrusted files.
type BytecodeReader struct {
	bytes []byte
	pos   int
}

// NewBytecodeReader creates a reader for bytecode.
func NewBytecodeReader(bc []byte) *BytecodeReader {
	return &BytecodeReader{bytes: bc}
}

// Position returns the current read position.
func (r *BytecodeReader) Position() int {
	return r.pos
}

// HasMore returns true if there are more bytes to read.
func (r *BytecodeReader) HasMore() bool {
	return r.pos < len(r.bytes)
}

// Remaining returns the number of unread bytes.
func (r *BytecodeReader) Remaining() int {
	return len(r.bytes) - r.pos
}

// ReadOpcode reads the next opcode byte.
func (r *BytecodeReader) ReadOpcode() (Opcode, bool) {
	v, ok := r.ReadUint8()
	return Opcode(v), ok
}

// ReadUint8 reads a single byte operand.
func (r *BytecodeReader) ReadUint8() (uint8, bool) {
	if r.pos >= len(r.bytes) {
		return 0, false
	}
	v := r.bytes[r.pos]
	r.pos++
	return v, true
}

// ReadBytes reads n bytes. On a short read nothing is consumed.
func (r *BytecodeReader) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.bytes) {
		return nil, false
	}
	v := r.bytes[r.pos : r.pos+n]
	r.pos += n
	return v, true
}

// ReadFloat64 reads a little-endian IEEE-754 float operand.
func (r *BytecodeReader) ReadFloat64() (float64, bool) {
	buf, ok := r.ReadBytes(FloatOperandLen)
	if !ok {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), true
}

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction disassembles a single instruction at the reader's
// position and advances the reader. The boolean is false when the
// instruction could not be decoded; the reader should not be used further.
func DisassembleInstruction(r *BytecodeReader) (string, bool) {
	pos := r.Position()
	op, ok := r.ReadOpcode()
	if !ok {
		return "", false
	}
	name := op.Name()

	switch {
	case op == OpPush:
		v, ok := r.ReadFloat64()
		if !ok {
			return fmt.Sprintf("%04d  %s <truncated>", pos, name), false
		}
		return fmt.Sprintf("%04d  %s %s", pos, name, strconv.FormatFloat(v, 'g', -1, 64)), true

	case op == OpIdentifier:
		n, ok := r.ReadUint8()
		if !ok {
			return fmt.Sprintf("%04d  %s <truncated>", pos, name), false
		}
		raw, ok := r.ReadBytes(int(n))
		if !ok {
			return fmt.Sprintf("%04d  %s <truncated>", pos, name), false
		}
		if !utf8.Valid(raw) {
			return fmt.Sprintf("%04d  %s <invalid utf-8 % x>", pos, name, raw), false
		}
		return fmt.Sprintf("%04d  %s %s", pos, name, raw), true

	case op.Valid():
		return fmt.Sprintf("%04d  %s", pos, name), true

	default:
		return fmt.Sprintf("%04d  %s", pos, name), false
	}
}

// Disassemble returns a listing of bytecode, one instruction per line.
// Listing stops at the first instruction that cannot be decoded.
func Disassemble(bc []byte) string {
	r := NewBytecodeReader(bc)
	var lines []string
	for r.HasMore() {
		line, ok := DisassembleInstruction(r)
		lines = append(lines, line)
		if !ok {
			break
		}
	}
	return strings.Join(lines, "\n")
}
