package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeSource reads r as text in the named WHATWG encoding and returns
// it as UTF-8.
func decodeSource(r io.Reader, encoding string) (string, error) {
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", fmt.Errorf("unknown source encoding %q: %w", encoding, err)
	}
	data, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decoding %s source: %w", encoding, err)
	}
	return string(data), nil
}

// readSourceFile reads and decodes a source file.
func readSourceFile(path, encoding string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	source, err := decodeSource(f, encoding)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return source, nil
}
