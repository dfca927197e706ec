package compiler

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for walc expressions
// ---------------------------------------------------------------------------

// Lexer splits walc source text into lexemes. Errors do not stop it; each
// bad lexeme is recorded as a diagnostic and scanning resumes after it.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)

	diagnostics []Diagnostic
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// Lex converts source text into lexemes terminated by a single EOF lexeme.
// If any lexeme was malformed, every diagnostic from the whole input is
// returned instead, as an *Error wrapping ErrLex.
func Lex(source string) ([]Lexeme, error) {
	l := NewLexer(source)
	var lexemes []Lexeme
	for {
		lex, ok := l.Next()
		if !ok {
			continue
		}
		lexemes = append(lexemes, lex)
		if lex.Kind == LexemeEOF {
			break
		}
	}
	if len(l.diagnostics) > 0 {
		return nil, &Error{Stage: ErrLex, Diagnostics: l.diagnostics}
	}
	return lexemes, nil
}

// Diagnostics returns the problems recorded so far.
func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size

	if r == '\n' {
		l.line++
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// atEOF distinguishes the end of input from a literal NUL character.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) errorf(line int, kind DiagnosticKind, format string, args ...interface{}) {
	l.diagnostics = append(l.diagnostics, Diagnostic{
		Kind:    kind,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// Next returns the next lexeme. The boolean is false when the characters
// just consumed did not form a valid lexeme; the problem is recorded and
// the caller should simply ask again.
func (l *Lexer) Next() (Lexeme, bool) {
	l.skipWhitespace()

	line := l.line
	if l.atEOF() {
		return Lexeme{Kind: LexemeEOF, Line: line, Text: eofText}, true
	}

	switch {
	case l.ch == '(':
		l.readChar()
		return Lexeme{Kind: LexemeOpenParen, Line: line, Text: "("}, true

	case l.ch == ')':
		l.readChar()
		return Lexeme{Kind: LexemeCloseParen, Line: line, Text: ")"}, true

	case l.ch == '*':
		l.readChar()
		if l.ch == '*' {
			l.readChar()
			return Lexeme{Kind: LexemeDoubleStar, Line: line, Text: "**"}, true
		}
		return Lexeme{Kind: LexemeStar, Line: line, Text: "*"}, true

	case l.ch == '/':
		l.readChar()
		return Lexeme{Kind: LexemeSlash, Line: line, Text: "/"}, true

	case l.ch == '+':
		l.readChar()
		return Lexeme{Kind: LexemePlus, Line: line, Text: "+"}, true

	// A minus directly followed by a digit always starts a negative
	// literal, even after an operand: "3 -2" is two numbers.
	case l.ch == '-' && isDigit(l.peekChar()):
		return l.readNumber(line)

	case l.ch == '-':
		l.readChar()
		return Lexeme{Kind: LexemeMinus, Line: line, Text: "-"}, true

	case l.ch == '=':
		l.readChar()
		return Lexeme{Kind: LexemeEquals, Line: line, Text: "="}, true

	case isDigit(l.ch):
		return l.readNumber(line)

	case unicode.IsLetter(l.ch):
		return l.readIdentifier(line)

	default:
		ch := l.ch
		l.readChar()
		l.errorf(line, UnexpectedCharacter, "unexpected character %q", ch)
		return Lexeme{}, false
	}
}

// skipWhitespace skips whitespace; newlines are counted by readChar.
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readNumber reads an optionally negative integer or decimal literal.
func (l *Lexer) readNumber(line int) (Lexeme, bool) {
	start := l.pos
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch != '.' {
		return Lexeme{Kind: LexemeNumber, Line: line, Text: l.input[start:l.pos]}, true
	}

	l.readChar() // consume '.'
	if !isDigit(l.ch) {
		l.errorf(line, UnterminatedFloat, "unterminated float %q", l.input[start:l.pos])
		return Lexeme{}, false
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return Lexeme{Kind: LexemeNumber, Line: line, Text: l.input[start:l.pos]}, true
}

// readIdentifier reads a letter followed by letters, digits or underscores.
func (l *Lexer) readIdentifier(line int) (Lexeme, bool) {
	start := l.pos
	for !l.atEOF() && isIdentChar(l.ch) {
		l.readChar()
	}
	name := l.input[start:l.pos]
	if len(name) > MaxIdentifierLen {
		l.errorf(line, IdentifierTooLong, "identifier %q... is %d bytes long, the limit is %d",
			name[:16], len(name), MaxIdentifierLen)
		return Lexeme{}, false
	}
	return Lexeme{Kind: LexemeIdentifier, Line: line, Text: name}, true
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsNumber(ch) || ch == '_'
}
