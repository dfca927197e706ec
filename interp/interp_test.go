package interp

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/walc/compiler"
	"github.com/chazu/walc/vm"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"(3 + 5) * 3 / -2", "-12"},
		{"2**3**2", "512"},
		{"x = 3 - 2", "1"},
		{"1 + 2 * 3", "7"},
		{"10 / 4", "2.5"},
		{"0.1 + 0.2", "0.30000000000000004"},
		{"-0.5 * 4", "-2"},
		{"1\n+\n2", "3"},
		{"1" + strings.Repeat("0", 400), "+Inf"},
	}

	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			got, err := Interpret(tc.source)
			if err != nil {
				t.Fatalf("Interpret: %v", err)
			}
			if got != tc.want {
				t.Errorf("Interpret = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInterpretErrors(t *testing.T) {
	tests := []struct {
		source string
		want   string
		stage  error
	}{
		{"1 / 0", "Cannot divide by zero.\nNo result.", vm.ErrRuntime},
		{"", "No result.", vm.ErrRuntime},
		{"3 * +", "line 1: expected number, got '+'\nline 1: expected number, got end of input", compiler.ErrParse},
		{"3 -2", "line 1: unexpected number -2 after expression", compiler.ErrParse},
		{"2 $ 3", "line 1: unexpected character '$'", compiler.ErrLex},
		{"1 $ (", "line 1: unexpected character '$'", compiler.ErrLex},
	}

	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			_, err := Interpret(tc.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.want {
				t.Errorf("error = %q, want %q", err.Error(), tc.want)
			}
			if !errors.Is(err, tc.stage) {
				t.Errorf("error should wrap %v", tc.stage)
			}
		})
	}
}

func TestEvalBindings(t *testing.T) {
	res, err := Eval("x = 3 - 2")
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := res.Bindings.Get("x"); !ok || v != 1 {
		t.Errorf("x = %v, %v; want 1, true", v, ok)
	}
	if res.Value != 1 {
		t.Errorf("Value = %v, want 1", res.Value)
	}
}

func TestCompileProgram(t *testing.T) {
	prog, err := Compile("1 + 2")
	if err != nil {
		t.Fatal(err)
	}
	if prog.Source != "1 + 2" {
		t.Errorf("Source = %q", prog.Source)
	}
	if compiler.Format(prog.Expr) != "(+ 1 2)" {
		t.Errorf("Expr = %s", compiler.Format(prog.Expr))
	}
	if len(prog.Code) != 19 {
		t.Errorf("len(Code) = %d, want 19", len(prog.Code))
	}

	empty, err := Compile("  ")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Expr != nil || len(empty.Code) != 0 {
		t.Errorf("empty program = %+v", empty)
	}
}

// Running the same program twice gives the same answer.
func TestProgramRunIsRepeatable(t *testing.T) {
	prog, err := Compile("y = (2 + 3) ** 2")
	if err != nil {
		t.Fatal(err)
	}
	a, err := prog.Run()
	if err != nil {
		t.Fatal(err)
	}
	b, err := prog.Run()
	if err != nil {
		t.Fatal(err)
	}
	if a.Value != b.Value || a.Value != 25 {
		t.Errorf("runs gave %v and %v, want 25", a.Value, b.Value)
	}
	if a.Bindings == b.Bindings {
		t.Error("each run should get its own binding table")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{-12, "-12"},
		{512, "512"},
		{0.25, "0.25"},
		{1e21, "1000000000000000000000"},
	}
	for _, tc := range tests {
		if got := FormatValue(tc.v); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}
