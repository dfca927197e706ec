package compiler

import (
	"errors"
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for walc expressions
// ---------------------------------------------------------------------------
//
//	assignment     := Identifier '=' additive | additive
//	additive       := multiplicative (('+'|'-') multiplicative)*
//	multiplicative := exponent (('*'|'/') exponent)*
//	exponent       := atom ('**' exponent)?
//	atom           := '(' additive ')' | Number
//
// Every parse method returns the node it built and whether it succeeded.
// A failure is recorded as a diagnostic and the caller keeps going, so one
// pass reports every problem it can find. A binary node is only built when
// both of its operands parsed.

// Parser builds an expression tree from lexemes.
type Parser struct {
	lexemes     []Lexeme
	pos         int
	diagnostics []Diagnostic
}

// NewParser creates a parser over lexemes produced by Lex.
func NewParser(lexemes []Lexeme) *Parser {
	return &Parser{lexemes: lexemes}
}

// Parse builds an expression tree from lexemes. It returns (nil, nil) when
// the input holds no expression at all. Otherwise it returns the tree, or an
// *Error wrapping ErrParse with every diagnostic found.
func Parse(lexemes []Lexeme) (Expr, error) {
	if len(lexemes) == 0 || lexemes[0].Kind == LexemeEOF {
		return nil, nil
	}
	p := NewParser(lexemes)
	expr := p.ParseProgram()
	if len(p.diagnostics) > 0 {
		return nil, &Error{Stage: ErrParse, Diagnostics: p.diagnostics}
	}
	return expr, nil
}

// Diagnostics returns accumulated parse problems.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.diagnostics
}

// cur returns the current lexeme. Running off the end of a sequence that
// lacks a terminator behaves like reaching EOF.
func (p *Parser) cur() Lexeme {
	if p.pos < len(p.lexemes) {
		return p.lexemes[p.pos]
	}
	line := 1
	if n := len(p.lexemes); n > 0 {
		line = p.lexemes[n-1].Line
	}
	return Lexeme{Kind: LexemeEOF, Line: line, Text: eofText}
}

func (p *Parser) curIs(k LexemeKind) bool {
	return p.cur().Kind == k
}

func (p *Parser) next() {
	if p.pos < len(p.lexemes) {
		p.pos++
	}
}

// errorf records a diagnostic at the current lexeme's line.
func (p *Parser) errorf(kind DiagnosticKind, format string, args ...interface{}) {
	p.diagnostics = append(p.diagnostics, Diagnostic{
		Kind:    kind,
		Line:    p.cur().Line,
		Message: fmt.Sprintf(format, args...),
	})
}

// ParseProgram parses one top-level expression and requires the input to
// end right after it. The result is nil if any diagnostic was recorded.
func (p *Parser) ParseProgram() Expr {
	expr, ok := p.parseAssignment()
	if !p.curIs(LexemeEOF) {
		p.errorf(UnexpectedTrailingInput, "unexpected %s after expression", p.cur().describe())
		ok = false
	}
	if !ok || len(p.diagnostics) > 0 {
		return nil
	}
	return expr
}

// parseAssignment parses `name = additive` or a bare additive expression.
func (p *Parser) parseAssignment() (Expr, bool) {
	if !p.curIs(LexemeIdentifier) {
		return p.parseAdditive()
	}

	target := p.cur()
	p.next()
	if !p.curIs(LexemeEquals) {
		p.errorf(ExpectedEquals, "expected '=' after %s, got %s", target.describe(), p.cur().describe())
		if !p.curIs(LexemeEOF) {
			// Keep scanning the rest to report anything else that is wrong.
			p.parseAdditive()
		}
		return nil, false
	}
	p.next()

	value, ok := p.parseAdditive()
	if !ok {
		return nil, false
	}
	return &Assignment{LineVal: target.Line, Name: target.Text, Value: value}, true
}

// parseAdditive parses a left-associative chain of + and -.
func (p *Parser) parseAdditive() (Expr, bool) {
	left, ok := p.parseMultiplicative()
	for {
		var op BinaryOperator
		switch p.cur().Kind {
		case LexemePlus:
			op = OpAdd
		case LexemeMinus:
			op = OpSubtract
		default:
			return left, ok
		}
		line := p.cur().Line
		p.next()

		right, rightOK := p.parseMultiplicative()
		if ok && rightOK {
			left = &BinaryOp{LineVal: line, Op: op, Left: left, Right: right}
		} else {
			left, ok = nil, false
		}
	}
}

// parseMultiplicative parses a left-associative chain of * and /.
func (p *Parser) parseMultiplicative() (Expr, bool) {
	left, ok := p.parseExponent()
	for {
		var op BinaryOperator
		switch p.cur().Kind {
		case LexemeStar:
			op = OpMultiply
		case LexemeSlash:
			op = OpDivide
		default:
			return left, ok
		}
		line := p.cur().Line
		p.next()

		right, rightOK := p.parseExponent()
		if ok && rightOK {
			left = &BinaryOp{LineVal: line, Op: op, Left: left, Right: right}
		} else {
			left, ok = nil, false
		}
	}
}

// parseExponent parses a right-associative chain of **.
func (p *Parser) parseExponent() (Expr, bool) {
	base, ok := p.parseAtom()
	if !p.curIs(LexemeDoubleStar) {
		return base, ok
	}
	line := p.cur().Line
	p.next()

	exponent, expOK := p.parseExponent()
	if !ok || !expOK {
		return nil, false
	}
	return &BinaryOp{LineVal: line, Op: OpExponentiate, Left: base, Right: exponent}, true
}

// parseAtom parses a number or a parenthesised expression. On failure the
// offending lexeme is left in place for the enclosing level to resume on.
func (p *Parser) parseAtom() (Expr, bool) {
	switch p.cur().Kind {
	case LexemeOpenParen:
		open := p.cur()
		p.next()
		inner, ok := p.parseAdditive()
		if !p.curIs(LexemeCloseParen) {
			p.errorf(UnterminatedParen, "expected ')' to close '(' opened on line %d, got %s",
				open.Line, p.cur().describe())
			return nil, false
		}
		p.next()
		return inner, ok

	case LexemeNumber:
		return p.parseNumber()

	default:
		p.errorf(ExpectedNumber, "expected number, got %s", p.cur().describe())
		return nil, false
	}
}

// parseNumber converts the current number lexeme to a literal.
func (p *Parser) parseNumber() (Expr, bool) {
	lex := p.cur()
	value, err := strconv.ParseFloat(lex.Text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.errorf(ExpectedNumber, "invalid number %q", lex.Text)
		p.next()
		return nil, false
	}
	p.next()
	// Out-of-range literals saturate to ±Inf, as IEEE-754 parsing does.
	return &NumberLiteral{LineVal: lex.Line, Value: value}, true
}
