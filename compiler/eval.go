package compiler

import (
	"math"

	"github.com/chazu/walc/vm"
)

// Binder receives the bindings made by assignments. *vm.Bindings
// satisfies it.
type Binder interface {
	Set(name string, value float64)
}

// Evaluate computes the value of a tree directly, without compiling it.
// It is the reference the bytecode machine is checked against.
//
// Division by zero is reported like the machine reports it; evaluation of
// sibling subtrees continues so that every such fault is found. env may be
// nil when assignments need not be observed.
func Evaluate(expr Expr, env Binder) (float64, error) {
	ev := &evaluator{env: env}
	v, ok := ev.eval(expr)
	if len(ev.faults) > 0 || !ok {
		if len(ev.faults) == 0 {
			ev.faults = append(ev.faults, vm.Fault{Kind: vm.NoResult, PC: -1, Message: "No result."})
		}
		return 0, &vm.Error{Faults: ev.faults}
	}
	return v, nil
}

type evaluator struct {
	env    Binder
	faults []vm.Fault
}

func (ev *evaluator) eval(expr Expr) (float64, bool) {
	switch n := expr.(type) {
	case *NumberLiteral:
		return n.Value, true

	case *Assignment:
		v, ok := ev.eval(n.Value)
		if ok && ev.env != nil {
			ev.env.Set(n.Name, v)
		}
		return v, ok

	case *BinaryOp:
		left, leftOK := ev.eval(n.Left)
		right, rightOK := ev.eval(n.Right)
		if !leftOK || !rightOK {
			return 0, false
		}
		switch n.Op {
		case OpAdd:
			return left + right, true
		case OpSubtract:
			return left - right, true
		case OpMultiply:
			return left * right, true
		case OpDivide:
			if right == 0 {
				ev.faults = append(ev.faults, vm.Fault{Kind: vm.DivisionByZero, PC: -1, Message: "Cannot divide by zero."})
				return 0, false
			}
			return left / right, true
		case OpExponentiate:
			return math.Pow(left, right), true
		}
	}
	return 0, false
}
