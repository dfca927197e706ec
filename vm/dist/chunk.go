// Package dist packages compiled walc programs for storage and transfer.
// A Chunk carries bytecode, its content hash and optionally the source it
// was compiled from, encoded as canonical CBOR.
package dist

import "crypto/sha256"

// ChunkVersion is the current chunk format version.
const ChunkVersion uint8 = 1

// Chunk is a compiled program. Hash is the SHA-256 of Bytecode.
type Chunk struct {
	Version  uint8    `cbor:"1,keyasint"`
	Hash     [32]byte `cbor:"2,keyasint"`
	Bytecode []byte   `cbor:"3,keyasint"`
	Source   string   `cbor:"4,keyasint,omitempty"`
}

// NewChunk wraps bytecode in a chunk. The source is kept only when
// includeSource is set.
func NewChunk(source string, code []byte, includeSource bool) *Chunk {
	c := &Chunk{
		Version:  ChunkVersion,
		Hash:     HashBytecode(code),
		Bytecode: code,
	}
	if includeSource {
		c.Source = source
	}
	return c
}

// HashBytecode computes the content hash of a bytecode stream.
func HashBytecode(code []byte) [32]byte {
	return sha256.Sum256(code)
}
