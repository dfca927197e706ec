package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Lexeme kinds for the walc lexer
// ---------------------------------------------------------------------------

// LexemeKind classifies a lexeme.
type LexemeKind int

const (
	LexemeEOF LexemeKind = iota

	// Literals
	LexemeNumber     // 42, 3.14, -2
	LexemeIdentifier // x, value_a

	// Delimiters
	LexemeOpenParen  // (
	LexemeCloseParen // )

	// Operators
	LexemePlus       // +
	LexemeMinus      // -
	LexemeStar       // *
	LexemeDoubleStar // **
	LexemeSlash      // /
	LexemeEquals     // =
)

var lexemeNames = map[LexemeKind]string{
	LexemeEOF:        "end of input",
	LexemeNumber:     "number",
	LexemeIdentifier: "identifier",
	LexemeOpenParen:  "'('",
	LexemeCloseParen: "')'",
	LexemePlus:       "'+'",
	LexemeMinus:      "'-'",
	LexemeStar:       "'*'",
	LexemeDoubleStar: "'**'",
	LexemeSlash:      "'/'",
	LexemeEquals:     "'='",
}

func (k LexemeKind) String() string {
	if name, ok := lexemeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Lexeme(%d)", k)
}

// eofText is the text carried by the terminating lexeme.
const eofText = "end of file"

// Lexeme is a classified unit of source text.
type Lexeme struct {
	Kind LexemeKind
	Line int    // 1-based
	Text string // the raw text
}

func (l Lexeme) String() string {
	switch l.Kind {
	case LexemeEOF:
		return "EOF"
	case LexemeNumber, LexemeIdentifier:
		if len(l.Text) > 20 {
			return fmt.Sprintf("%s(%q...)", l.Kind, l.Text[:20])
		}
		return fmt.Sprintf("%s(%q)", l.Kind, l.Text)
	}
	return l.Kind.String()
}

// describe renders a lexeme for error messages.
func (l Lexeme) describe() string {
	switch l.Kind {
	case LexemeEOF:
		return l.Kind.String()
	case LexemeNumber, LexemeIdentifier:
		return fmt.Sprintf("%s %s", l.Kind, l.Text)
	}
	return l.Kind.String()
}

// MaxIdentifierLen is the longest identifier, in bytes, that fits the
// one-byte length prefix of an IDENTIFIER operand.
const MaxIdentifierLen = 255
