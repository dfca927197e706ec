package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/walc/history"
)

func newTestRunner() (*runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &runner{out: &out, err: &errOut}, &out, &errOut
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		source  string
		wantOut string
		wantErr string
		ok      bool
	}{
		{"(3 + 5) * 3 / -2", "-12\n", "", true},
		{"2**3**2", "512\n", "", true},
		{"x = 3 - 2", "1\n", "", true},
		{"1 / 0", "", "Cannot divide by zero.\nNo result.\n", false},
		{"3 $ 4", "", "line 1: unexpected character '$'\n", false},
		{"", "", "No result.\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			r, out, errOut := newTestRunner()
			if ok := r.run(context.Background(), tt.source); ok != tt.ok {
				t.Errorf("run() = %v, want %v", ok, tt.ok)
			}
			if out.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", out.String(), tt.wantOut)
			}
			if errOut.String() != tt.wantErr {
				t.Errorf("stderr = %q, want %q", errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestRunner_TreeWalkMatchesMachine(t *testing.T) {
	for _, src := range []string{"1 + 2 * 3", "2 ** 0.5", "(1 - 4) / 8", "y = 10 ** -1"} {
		vmRunner, vmOut, _ := newTestRunner()
		treeRunner, treeOut, _ := newTestRunner()
		treeRunner.treeWalk = true

		vmRunner.run(context.Background(), src)
		treeRunner.run(context.Background(), src)
		if vmOut.String() != treeOut.String() {
			t.Errorf("%q: machine printed %q, tree walk printed %q", src, vmOut.String(), treeOut.String())
		}
	}
}

func TestRunner_DisassembleAndAST(t *testing.T) {
	r, out, _ := newTestRunner()
	r.disassemble = true
	r.showAST = true
	if !r.run(context.Background(), "x = 1 + 2") {
		t.Fatal("run failed")
	}
	text := out.String()
	if !strings.HasPrefix(text, "(= x (+ 1 2))\n") {
		t.Errorf("output should start with the tree:\n%s", text)
	}
	for _, name := range []string{"IDENTIFIER", "PUSH", "ADD", "VARWRITE"} {
		if !strings.Contains(text, name) {
			t.Errorf("listing missing %s:\n%s", name, text)
		}
	}
	if strings.Contains(text, "\n3\n") {
		t.Error("disassembly mode should not run the program")
	}
}

func TestRunner_ChunkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.walcc")

	writer, _, errOut := newTestRunner()
	writer.chunkPath = path
	writer.includeSource = true
	if !writer.run(context.Background(), "(3 + 5) * 3 / -2") {
		t.Fatalf("writing chunk failed: %s", errOut.String())
	}

	reader, out, errOut := newTestRunner()
	if !reader.runChunk(path) {
		t.Fatalf("runChunk failed: %s", errOut.String())
	}
	if out.String() != "-12\n" {
		t.Errorf("stdout = %q, want -12", out.String())
	}
}

func TestRunner_ChunkTampered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.walcc")

	writer, _, _ := newTestRunner()
	writer.chunkPath = path
	if !writer.run(context.Background(), "1 + 2") {
		t.Fatal("writing chunk failed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	reader, _, errOut := newTestRunner()
	if reader.runChunk(path) {
		t.Fatal("tampered chunk should be rejected")
	}
	if errOut.Len() == 0 {
		t.Error("expected an error message")
	}
}

func TestRunner_RecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	r, out, _ := newTestRunner()
	r.store = store
	r.run(context.Background(), "6 * 7")
	r.run(context.Background(), "1 / 0")

	out.Reset()
	r.printHistory(context.Background(), 10)
	text := out.String()
	if !strings.Contains(text, `"6 * 7" => 42`) {
		t.Errorf("history missing success:\n%s", text)
	}
	if !strings.Contains(text, `"1 / 0" => error: Cannot divide by zero.`) {
		t.Errorf("history missing failure:\n%s", text)
	}
}

func TestREPL(t *testing.T) {
	r, out, _ := newTestRunner()
	in := strings.NewReader("1 + 1\n:dis\n2 * 3\n:bogus\nexit\n4\n")
	runREPL(context.Background(), r, in)

	text := out.String()
	if !strings.Contains(text, "2\n") {
		t.Errorf("missing first result:\n%s", text)
	}
	if !strings.Contains(text, "MULTIPLY") {
		t.Errorf(":dis should switch to listings:\n%s", text)
	}
	if !strings.Contains(text, "Unknown command: :bogus") {
		t.Errorf("missing unknown-command message:\n%s", text)
	}
	if strings.Contains(text, "PUSH 4") {
		t.Error("input after exit should not run")
	}
}

func TestServeAddr(t *testing.T) {
	tests := []struct {
		configured string
		port       int
		want       string
	}{
		{"localhost:4567", 0, "localhost:4567"},
		{"localhost:4567", 8080, "localhost:8080"},
		{":4567", 9000, ":9000"},
	}
	for _, tt := range tests {
		got, err := serveAddr(tt.configured, tt.port)
		if err != nil {
			t.Fatalf("serveAddr(%q, %d): %v", tt.configured, tt.port, err)
		}
		if got != tt.want {
			t.Errorf("serveAddr(%q, %d) = %q, want %q", tt.configured, tt.port, got, tt.want)
		}
	}
	if _, err := serveAddr("nonsense", 1); err == nil {
		t.Error("expected error for address without port")
	}
}
