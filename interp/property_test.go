package interp

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/chazu/walc/compiler"
	"github.com/chazu/walc/vm"
)

// randomExpr builds a tree of the given depth from seed. Binary
// subexpressions are always parenthesised when rendered, so the tree and
// its source text describe the same computation.
func randomExpr(rng *rand.Rand, depth int) compiler.Expr {
	if depth <= 0 || rng.Intn(4) == 0 {
		v := float64(rng.Intn(10))
		if rng.Intn(3) == 0 {
			v += 0.5
		}
		if rng.Intn(4) == 0 {
			v = -v - 1
		}
		return &compiler.NumberLiteral{LineVal: 1, Value: v}
	}
	return &compiler.BinaryOp{
		LineVal: 1,
		Op:      compiler.BinaryOperator(rng.Intn(5)),
		Left:    randomExpr(rng, depth-1),
		Right:   randomExpr(rng, depth-1),
	}
}

func randomProgram(seed int64, depth int) compiler.Expr {
	rng := rand.New(rand.NewSource(seed))
	expr := randomExpr(rng, depth)
	if rng.Intn(3) == 0 {
		return &compiler.Assignment{LineVal: 1, Name: "x", Value: expr}
	}
	return expr
}

func render(e compiler.Expr) string {
	var sb strings.Builder
	renderTo(&sb, e)
	return sb.String()
}

func renderTo(sb *strings.Builder, e compiler.Expr) {
	switch n := e.(type) {
	case *compiler.NumberLiteral:
		sb.WriteString(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *compiler.Assignment:
		sb.WriteString(n.Name)
		sb.WriteString(" = ")
		renderTo(sb, n.Value)
	case *compiler.BinaryOp:
		sb.WriteByte('(')
		renderTo(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		renderTo(sb, n.Right)
		sb.WriteByte(')')
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

func TestPipelineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rendered source parses back to the same tree", prop.ForAll(
		func(seed int64, depth int) bool {
			want := randomProgram(seed, depth)
			prog, err := Compile(render(want))
			if err != nil {
				return false
			}
			return compiler.Format(prog.Expr) == compiler.Format(want)
		},
		gen.Int64(),
		gen.IntRange(0, 6),
	))

	properties.Property("machine agrees with tree evaluation", prop.ForAll(
		func(seed int64, depth int) bool {
			prog, err := Compile(render(randomProgram(seed, depth)))
			if err != nil {
				return false
			}
			want, wantErr := compiler.Evaluate(prog.Expr, nil)
			res, gotErr := prog.Run()
			if (wantErr == nil) != (gotErr == nil) {
				return false
			}
			if gotErr != nil {
				return true
			}
			return sameFloat(res.Value, want)
		},
		gen.Int64(),
		gen.IntRange(0, 6),
	))

	properties.Property("compiled trees never fault fatally", prop.ForAll(
		func(seed int64, depth int) bool {
			code := compiler.Compile(randomProgram(seed, depth))
			m := vm.New(code)
			m.Run()
			for _, f := range m.Faults() {
				if f.Kind.Fatal() {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 6),
	))

	properties.Property("assignment binds the result", prop.ForAll(
		func(seed int64, depth int) bool {
			rng := rand.New(rand.NewSource(seed))
			expr := &compiler.Assignment{LineVal: 1, Name: "x", Value: randomExpr(rng, depth)}
			m := vm.New(compiler.Compile(expr))
			v, err := m.Run()
			if err != nil {
				return len(vm.Faults(err)) > 0
			}
			bound, ok := m.Bindings().Get("x")
			return ok && sameFloat(bound, v)
		},
		gen.Int64(),
		gen.IntRange(0, 6),
	))

	properties.Property("a second run gives the same answer", prop.ForAll(
		func(seed int64, depth int) bool {
			m := vm.New(compiler.Compile(randomProgram(seed, depth)))
			first, firstErr := m.Run()
			second, secondErr := m.Run()
			if (firstErr == nil) != (secondErr == nil) {
				return false
			}
			if firstErr != nil {
				return firstErr.Error() == secondErr.Error()
			}
			return sameFloat(first, second)
		},
		gen.Int64(),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}
