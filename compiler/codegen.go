package compiler

import (
	"fmt"

	"github.com/chazu/walc/vm"
)

// ---------------------------------------------------------------------------
// Codegen: Compile expression trees to bytecode
// ---------------------------------------------------------------------------

// Compiler turns an expression tree into a bytecode stream with a single
// postorder walk: operands are always emitted before their operator.
type Compiler struct {
	builder *vm.BytecodeBuilder
}

// NewCompiler creates a new compiler.
func NewCompiler() *Compiler {
	return &Compiler{builder: vm.NewBytecodeBuilder()}
}

// Compile translates a tree into bytecode. A nil tree yields an empty
// stream. The tree must be well formed; Compile reports no user errors.
func Compile(expr Expr) []byte {
	c := NewCompiler()
	if expr != nil {
		c.compileExpr(expr)
	}
	return c.builder.Bytes()
}

func (c *Compiler) compileExpr(expr Expr) {
	switch n := expr.(type) {
	case *NumberLiteral:
		c.builder.EmitPush(n.Value)

	case *Assignment:
		// The name goes first so it sits beneath the value when VARWRITE runs.
		c.builder.EmitIdentifier(n.Name)
		c.compileExpr(n.Value)
		c.builder.Emit(vm.OpVarWrite)

	case *BinaryOp:
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		c.builder.Emit(binaryOpcode(n.Op))

	default:
		panic(fmt.Sprintf("compiler: unexpected node %T", expr))
	}
}

func binaryOpcode(op BinaryOperator) vm.Opcode {
	switch op {
	case OpAdd:
		return vm.OpAdd
	case OpSubtract:
		return vm.OpSubtract
	case OpMultiply:
		return vm.OpMultiply
	case OpDivide:
		return vm.OpDivide
	case OpExponentiate:
		return vm.OpExponentiate
	}
	panic(fmt.Sprintf("compiler: unknown operator %d", int(op)))
}
