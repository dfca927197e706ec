package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// AST: Expression tree for walc
// ---------------------------------------------------------------------------

// Expr is the interface implemented by all expression nodes. Each node owns
// its children; every leaf is a NumberLiteral.
type Expr interface {
	Line() int // line of the lexeme that started the node
	expr()     // marker method
}

// NumberLiteral is a numeric constant. All numbers are float64.
type NumberLiteral struct {
	LineVal int
	Value   float64
}

func (n *NumberLiteral) Line() int { return n.LineVal }
func (n *NumberLiteral) expr()     {}

// Assignment binds the value of an expression to a name (x = expr).
// It evaluates to the assigned value.
type Assignment struct {
	LineVal int
	Name    string
	Value   Expr
}

func (n *Assignment) Line() int { return n.LineVal }
func (n *Assignment) expr()     {}

// BinaryOperator identifies the operation of a BinaryOp.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpExponentiate
)

var operatorSymbols = [...]string{
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpExponentiate: "**",
}

func (op BinaryOperator) String() string {
	if int(op) >= 0 && int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

// BinaryOp applies an arithmetic operator to two operands.
type BinaryOp struct {
	LineVal int
	Op      BinaryOperator
	Left    Expr
	Right   Expr
}

func (n *BinaryOp) Line() int { return n.LineVal }
func (n *BinaryOp) expr()     {}

// Postorder calls visit for every node of the tree rooted at e, children
// before their parent and left before right.
func Postorder(e Expr, visit func(Expr)) {
	switch n := e.(type) {
	case *BinaryOp:
		Postorder(n.Left, visit)
		Postorder(n.Right, visit)
	case *Assignment:
		Postorder(n.Value, visit)
	}
	visit(e)
}

// Format renders a tree as a parenthesised prefix expression, e.g.
// "(= x (- 3 2))". It is meant for debugging output.
func Format(e Expr) string {
	var sb strings.Builder
	format(&sb, e)
	return sb.String()
}

func format(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *NumberLiteral:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *Assignment:
		sb.WriteString("(= ")
		sb.WriteString(n.Name)
		sb.WriteByte(' ')
		format(sb, n.Value)
		sb.WriteByte(')')
	case *BinaryOp:
		sb.WriteByte('(')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		format(sb, n.Left)
		sb.WriteByte(' ')
		format(sb, n.Right)
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<empty>")
	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}
