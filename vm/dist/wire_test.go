package dist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/walc/interp"
)

func compileSource(source string) ([]byte, error) {
	prog, err := interp.Compile(source)
	if err != nil {
		return nil, err
	}
	return prog.Code, nil
}

func mustCompile(t *testing.T, source string) []byte {
	t.Helper()
	code, err := compileSource(source)
	if err != nil {
		t.Fatalf("compile %q: %v", source, err)
	}
	return code
}

func TestChunk_CBORRoundTrip(t *testing.T) {
	src := "x = (3 + 5) * 2"
	code := mustCompile(t, src)
	c := NewChunk(src, code, true)

	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatalf("MarshalChunk: %v", err)
	}

	got, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("UnmarshalChunk: %v", err)
	}

	if got.Version != ChunkVersion {
		t.Errorf("Version = %d, want %d", got.Version, ChunkVersion)
	}
	if got.Hash != c.Hash {
		t.Error("Hash mismatch")
	}
	if !bytes.Equal(got.Bytecode, code) {
		t.Errorf("Bytecode = % x, want % x", got.Bytecode, code)
	}
	if got.Source != src {
		t.Errorf("Source = %q, want %q", got.Source, src)
	}
}

func TestChunk_CanonicalEncoding(t *testing.T) {
	code := mustCompile(t, "1 + 2")
	a, err := MarshalChunk(NewChunk("1 + 2", code, true))
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalChunk(NewChunk("1 + 2", code, true))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("equal chunks should encode to equal bytes")
	}
}

func TestNewChunk_WithoutSource(t *testing.T) {
	c := NewChunk("1 + 2", mustCompile(t, "1 + 2"), false)
	if c.Source != "" {
		t.Errorf("Source = %q, want empty", c.Source)
	}
}

func TestUnmarshalChunk_Garbage(t *testing.T) {
	if _, err := UnmarshalChunk([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestUnmarshalChunk_UnsupportedVersion(t *testing.T) {
	c := NewChunk("1", mustCompile(t, "1"), false)
	c.Version = 99
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	_, err = UnmarshalChunk(data)
	if err == nil || !strings.Contains(err.Error(), "unsupported chunk version") {
		t.Errorf("err = %v, want unsupported version", err)
	}
}

func TestVerifyChunk(t *testing.T) {
	src := "2 ** 3 ** 2"
	c := NewChunk(src, mustCompile(t, src), true)
	if err := VerifyChunk(c, compileSource); err != nil {
		t.Errorf("VerifyChunk: %v", err)
	}
}

func TestVerifyChunk_HashMismatch(t *testing.T) {
	c := NewChunk("1 + 2", mustCompile(t, "1 + 2"), false)
	c.Bytecode = append([]byte(nil), c.Bytecode...)
	c.Bytecode[1] ^= 0xff

	err := VerifyChunk(c, compileSource)
	if err == nil || !strings.Contains(err.Error(), "hash mismatch") {
		t.Errorf("err = %v, want hash mismatch", err)
	}
}

func TestVerifyChunk_SourceMismatch(t *testing.T) {
	c := NewChunk("1 + 2", mustCompile(t, "1 + 2"), true)
	c.Source = "1 + 3"

	err := VerifyChunk(c, compileSource)
	if err == nil || !strings.Contains(err.Error(), "does not compile") {
		t.Errorf("err = %v, want source mismatch", err)
	}
}

func TestVerifyChunk_SourceDoesNotCompile(t *testing.T) {
	code := mustCompile(t, "1")
	c := NewChunk("", code, false)
	c.Source = "3 * +"

	err := VerifyChunk(c, compileSource)
	if err == nil || !strings.Contains(err.Error(), "compile failed") {
		t.Errorf("err = %v, want compile failure", err)
	}
}

func TestMarshal_GenericValue(t *testing.T) {
	type pair struct {
		A string  `cbor:"1,keyasint"`
		B float64 `cbor:"2,keyasint"`
	}
	data, err := Marshal(pair{A: "x", B: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	var got pair
	if err := Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.A != "x" || got.B != 1.5 {
		t.Errorf("got %+v", got)
	}
}
