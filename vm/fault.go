package vm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRuntime is wrapped by every error returned from executing bytecode.
var ErrRuntime = errors.New("runtime error")

// FaultKind classifies a problem detected while executing bytecode.
type FaultKind int

const (
	InsufficientOperands FaultKind = iota + 1
	DivisionByZero
	TruncatedOperand
	CorruptIdentifier
	UnknownOpcode
	TypeMismatchOnStack
	NoResult
)

var faultNames = map[FaultKind]string{
	InsufficientOperands: "InsufficientOperands",
	DivisionByZero:       "DivisionByZero",
	TruncatedOperand:     "TruncatedOperand",
	CorruptIdentifier:    "CorruptIdentifier",
	UnknownOpcode:        "UnknownOpcode",
	TypeMismatchOnStack:  "TypeMismatchOnStack",
	NoResult:             "NoResult",
}

func (k FaultKind) String() string {
	if name, ok := faultNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Fatal reports whether a fault of this kind stops execution. Fatal faults
// mean the stream itself cannot be trusted past that point.
func (k FaultKind) Fatal() bool {
	switch k {
	case TruncatedOperand, CorruptIdentifier, UnknownOpcode:
		return true
	}
	return false
}

// Fault is one entry of a machine's error log.
type Fault struct {
	Kind    FaultKind
	PC      int // offset of the instruction that faulted; -1 for end of program
	Message string
}

func (f Fault) String() string {
	return f.Message
}

// Error carries the fault log of a failed run, in detection order.
type Error struct {
	Faults []Fault
}

// Error joins the fault messages with newlines.
func (e *Error) Error() string {
	msgs := make([]string, len(e.Faults))
	for i, f := range e.Faults {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "\n")
}

func (e *Error) Unwrap() error {
	return ErrRuntime
}

// Has reports whether the log contains a fault of the given kind.
func (e *Error) Has(kind FaultKind) bool {
	for _, f := range e.Faults {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Faults extracts the fault log carried by err, if any.
func Faults(err error) []Fault {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Faults
	}
	return nil
}
