package compiler

import (
	"bytes"
	"testing"

	"github.com/chazu/walc/vm"
)

func compileString(t *testing.T, input string) []byte {
	t.Helper()
	expr, err := Parse(mustLex(t, input))
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return Compile(expr)
}

var (
	pushOne   = []byte{0x00, 0, 0, 0, 0, 0, 0, 0xf0, 0x3f} // PUSH 1.0
	pushTwo   = []byte{0x00, 0, 0, 0, 0, 0, 0, 0x00, 0x40} // PUSH 2.0
	pushThree = []byte{0x00, 0, 0, 0, 0, 0, 0, 0x08, 0x40} // PUSH 3.0
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestCompileBytes(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		{"1", pushOne},
		{"1 + 2", concat(pushOne, pushTwo, []byte{byte(vm.OpAdd)})},
		{"1 - 2", concat(pushOne, pushTwo, []byte{byte(vm.OpSubtract)})},
		{"1 * 2", concat(pushOne, pushTwo, []byte{byte(vm.OpMultiply)})},
		{"1 / 2", concat(pushOne, pushTwo, []byte{byte(vm.OpDivide)})},
		{"1 ** 2", concat(pushOne, pushTwo, []byte{byte(vm.OpExponentiate)})},
		{"1 + 2 * 3", concat(pushOne, pushTwo, pushThree, []byte{byte(vm.OpMultiply), byte(vm.OpAdd)})},
		{"x = 3 - 2", concat(
			[]byte{byte(vm.OpIdentifier), 1, 'x'},
			pushThree, pushTwo, []byte{byte(vm.OpSubtract)},
			[]byte{byte(vm.OpVarWrite)},
		)},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := compileString(t, tc.input); !bytes.Equal(got, tc.want) {
				t.Errorf("Compile = % x, want % x", got, tc.want)
			}
		})
	}
}

func TestCompileNilTree(t *testing.T) {
	if got := Compile(nil); len(got) != 0 {
		t.Errorf("Compile(nil) = % x, want empty", got)
	}
}

func TestCompileUnicodeIdentifier(t *testing.T) {
	code := compileString(t, "größe = 1")
	name := []byte("größe")
	if code[0] != byte(vm.OpIdentifier) || int(code[1]) != len(name) {
		t.Fatalf("prefix = % x, want IDENTIFIER with length %d", code[:2], len(name))
	}
	if !bytes.Equal(code[2:2+len(name)], name) {
		t.Errorf("name bytes = % x, want % x", code[2:2+len(name)], name)
	}
}

// Every compiled program leaves exactly one cell on the stack.
func TestCompileStackEffect(t *testing.T) {
	for _, input := range []string{"1", "1 + 2 * 3 - 4", "x = (1 + 2) ** 3 / 4", "2 ** 3 ** 2"} {
		code := compileString(t, input)
		r := vm.NewBytecodeReader(code)
		depth := 0
		for r.HasMore() {
			op, _ := r.ReadOpcode()
			switch op {
			case vm.OpPush:
				r.ReadFloat64()
			case vm.OpIdentifier:
				n, _ := r.ReadUint8()
				r.ReadBytes(int(n))
			}
			depth += op.Info().StackEffect
		}
		if depth != 1 {
			t.Errorf("%q: net stack effect = %d, want 1", input, depth)
		}
	}
}
