// Package vm implements the walc stack machine.
//
// This package contains:
//   - The bytecode format, builder, reader and disassembler
//   - Tagged operand stack cells (numbers and assignment targets)
//   - The flat binding table written by assignments
//   - The Machine, which executes a stream and logs faults
//
// Bytecode layout, one opcode byte per instruction:
//
//	PUSH         0x00  f64 little-endian (8 bytes)
//	ADD          0x01
//	SUBTRACT     0x02
//	MULTIPLY     0x03
//	DIVIDE       0x04
//	EXPONENTIATE 0x05
//	IDENTIFIER   0x06  u8 length, then that many UTF-8 bytes
//	VARWRITE     0x07
package vm
