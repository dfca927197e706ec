// Package interp wires the walc stages together: source text is lexed,
// parsed, compiled to bytecode and executed on a fresh machine.
package interp

import (
	"strconv"

	"github.com/chazu/walc/compiler"
	"github.com/chazu/walc/vm"
)

// Program is the output of the front end for one source text.
type Program struct {
	Source string
	Expr   compiler.Expr // nil for empty source
	Code   []byte
}

// Compile runs the front end. The error, if any, comes from the first stage
// that failed and carries all of that stage's diagnostics.
func Compile(source string) (*Program, error) {
	lexemes, err := compiler.Lex(source)
	if err != nil {
		return nil, err
	}
	expr, err := compiler.Parse(lexemes)
	if err != nil {
		return nil, err
	}
	return &Program{
		Source: source,
		Expr:   expr,
		Code:   compiler.Compile(expr),
	}, nil
}

// Result is the outcome of a successful run.
type Result struct {
	Value    float64
	Bindings *vm.Bindings
}

// Run executes the program's bytecode on a new machine.
func (p *Program) Run() (*Result, error) {
	m := vm.New(p.Code)
	v, err := m.Run()
	if err != nil {
		return nil, err
	}
	return &Result{Value: v, Bindings: m.Bindings()}, nil
}

// Eval compiles and runs source.
func Eval(source string) (*Result, error) {
	prog, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return prog.Run()
}

// Interpret compiles and runs source and renders the value as a decimal
// string. Errors carry the newline-joined messages of the failing stage.
func Interpret(source string) (string, error) {
	res, err := Eval(source)
	if err != nil {
		return "", err
	}
	return FormatValue(res.Value), nil
}

// FormatValue renders a result the way Interpret does.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
