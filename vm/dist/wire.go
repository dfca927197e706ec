package dist

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so equal chunks encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal encodes any value as canonical CBOR.
func Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// Unmarshal decodes CBOR into v.
func Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// MarshalChunk serializes a Chunk to CBOR bytes.
func MarshalChunk(c *Chunk) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalChunk deserializes a Chunk from CBOR bytes.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var c Chunk
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("dist: unmarshal chunk: %w", err)
	}
	if c.Version != ChunkVersion {
		return nil, fmt.Errorf("dist: unsupported chunk version %d", c.Version)
	}
	return &c, nil
}

// VerifyChunk checks that a chunk's bytecode matches its declared hash and,
// when the chunk carries source, that compiling the source reproduces the
// same bytecode.
//
// The compile function is injected to avoid the dist package depending on
// the compiler package.
func VerifyChunk(c *Chunk, compile func(source string) ([]byte, error)) error {
	if computed := HashBytecode(c.Bytecode); computed != c.Hash {
		return fmt.Errorf("dist: hash mismatch: declared %x, computed %x", c.Hash, computed)
	}
	if c.Source == "" || compile == nil {
		return nil
	}
	code, err := compile(c.Source)
	if err != nil {
		return fmt.Errorf("dist: compile failed: %w", err)
	}
	if !bytes.Equal(code, c.Bytecode) {
		return fmt.Errorf("dist: source does not compile to the chunk's bytecode")
	}
	return nil
}
