package compiler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLex indicates a lexer failure.
	ErrLex = errors.New("lex error")

	// ErrParse indicates a parser failure.
	ErrParse = errors.New("parse error")
)

// DiagnosticKind classifies a lex-time or parse-time problem.
type DiagnosticKind int

const (
	// Lex-time
	UnexpectedCharacter DiagnosticKind = iota + 1
	UnterminatedFloat
	IdentifierTooLong

	// Parse-time
	ExpectedNumber
	ExpectedEquals
	UnterminatedParen
	UnexpectedTrailingInput
)

var diagnosticNames = map[DiagnosticKind]string{
	UnexpectedCharacter:     "UnexpectedCharacter",
	UnterminatedFloat:       "UnterminatedFloat",
	IdentifierTooLong:       "IdentifierTooLong",
	ExpectedNumber:          "ExpectedNumber",
	ExpectedEquals:          "ExpectedEquals",
	UnterminatedParen:       "UnterminatedParen",
	UnexpectedTrailingInput: "UnexpectedTrailingInput",
}

func (k DiagnosticKind) String() string {
	if name, ok := diagnosticNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Diagnostic(%d)", int(k))
}

// Diagnostic is a single problem found in source text.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int // 1-based
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Error carries every diagnostic collected by one lexing or parsing pass.
// Stage is ErrLex or ErrParse.
type Error struct {
	Stage       error
	Diagnostics []Diagnostic
}

// Error joins the diagnostics with newlines, in the order they were found.
func (e *Error) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

func (e *Error) Unwrap() error {
	return e.Stage
}

// Diagnostics extracts the diagnostics carried by err, if any.
func Diagnostics(err error) []Diagnostic {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Diagnostics
	}
	return nil
}
