package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestDecodeSource_UTF8(t *testing.T) {
	got, err := decodeSource(strings.NewReader("größe = 2 ** 3"), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	if got != "größe = 2 ** 3" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeSource_ShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("値 = 6 * 7")
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeSource(strings.NewReader(encoded), "shift_jis")
	if err != nil {
		t.Fatal(err)
	}
	if got != "値 = 6 * 7" {
		t.Errorf("got %q, want %q", got, "値 = 6 * 7")
	}
}

func TestDecodeSource_UnknownEncoding(t *testing.T) {
	if _, err := decodeSource(strings.NewReader("1"), "klingon"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestReadSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.walc")
	encoded, err := japanese.ShiftJIS.NewEncoder().String("値 = 1")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(encoded), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := readSourceFile(path, "sjis")
	if err != nil {
		t.Fatalf("readSourceFile: %v", err)
	}
	if got != "値 = 1" {
		t.Errorf("got %q", got)
	}

	if _, err := readSourceFile(filepath.Join(t.TempDir(), "missing.walc"), "utf-8"); err == nil {
		t.Error("expected error for missing file")
	}
}
