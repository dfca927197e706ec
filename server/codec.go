package server

import (
	"connectrpc.com/connect"

	"github.com/chazu/walc/vm/dist"
)

// codecName is the Connect codec name; requests travel as application/cbor
// (unary) or application/connect+cbor (streaming).
const codecName = "cbor"

// cborCodec carries the service messages as canonical CBOR, the same
// encoding used for program chunks.
type cborCodec struct{}

var _ connect.Codec = cborCodec{}

func (cborCodec) Name() string { return codecName }

func (cborCodec) Marshal(msg any) ([]byte, error) {
	return dist.Marshal(msg)
}

func (cborCodec) Unmarshal(data []byte, msg any) error {
	return dist.Unmarshal(data, msg)
}
