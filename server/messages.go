package server

// Service and procedure names of the evaluation service.
const (
	EvaluationServiceName = "walc.v1.EvaluationService"

	EvaluateProcedure    = "/walc.v1.EvaluationService/Evaluate"
	CheckSyntaxProcedure = "/walc.v1.EvaluationService/CheckSyntax"
	CompileProcedure     = "/walc.v1.EvaluationService/Compile"
	DisassembleProcedure = "/walc.v1.EvaluationService/Disassemble"
	HistoryProcedure     = "/walc.v1.EvaluationService/History"
)

// Severity of a Diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Diagnostic is one compile or run-time problem. Line is 1-based; 0 means
// the problem has no source position (run-time faults).
type Diagnostic struct {
	Severity Severity `cbor:"1,keyasint"`
	Line     int      `cbor:"2,keyasint,omitempty"`
	Kind     string   `cbor:"3,keyasint"`
	Message  string   `cbor:"4,keyasint"`
}

type EvaluateRequest struct {
	Source string `cbor:"1,keyasint"`
}

type EvaluateResponse struct {
	Success      bool               `cbor:"1,keyasint"`
	Result       string             `cbor:"2,keyasint,omitempty"`
	Value        float64            `cbor:"3,keyasint"`
	ErrorMessage string             `cbor:"4,keyasint,omitempty"`
	Diagnostics  []Diagnostic       `cbor:"5,keyasint,omitempty"`
	Bindings     map[string]float64 `cbor:"6,keyasint,omitempty"`
	RunID        string             `cbor:"7,keyasint,omitempty"`
}

type CheckSyntaxRequest struct {
	Source string `cbor:"1,keyasint"`
}

type CheckSyntaxResponse struct {
	Valid       bool         `cbor:"1,keyasint"`
	Diagnostics []Diagnostic `cbor:"2,keyasint,omitempty"`
}

type CompileRequest struct {
	Source        string `cbor:"1,keyasint"`
	IncludeSource bool   `cbor:"2,keyasint,omitempty"`
}

// CompileResponse carries the program as an encoded dist.Chunk.
type CompileResponse struct {
	Success     bool         `cbor:"1,keyasint"`
	Chunk       []byte       `cbor:"2,keyasint,omitempty"`
	Hash        string       `cbor:"3,keyasint,omitempty"`
	Diagnostics []Diagnostic `cbor:"4,keyasint,omitempty"`
}

// DisassembleRequest takes either source or raw bytecode; source wins when
// both are set.
type DisassembleRequest struct {
	Source   string `cbor:"1,keyasint,omitempty"`
	Bytecode []byte `cbor:"2,keyasint,omitempty"`
}

type DisassembleResponse struct {
	Success     bool         `cbor:"1,keyasint"`
	Listing     string       `cbor:"2,keyasint,omitempty"`
	Diagnostics []Diagnostic `cbor:"3,keyasint,omitempty"`
}

// HistoryRequest fetches one run by ID, or the latest Limit runs.
type HistoryRequest struct {
	ID    string `cbor:"1,keyasint,omitempty"`
	Limit int    `cbor:"2,keyasint,omitempty"`
}

type HistoryEntry struct {
	ID           string `cbor:"1,keyasint"`
	Source       string `cbor:"2,keyasint"`
	Result       string `cbor:"3,keyasint,omitempty"`
	ErrorMessage string `cbor:"4,keyasint,omitempty"`
	CreatedAt    int64  `cbor:"5,keyasint"` // unix nanoseconds
}

type HistoryResponse struct {
	Runs []HistoryEntry `cbor:"1,keyasint,omitempty"`
}
