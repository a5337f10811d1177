// Package expr implements the arithmetic expression engine: a tokenizer that
// splits a line into numbers, operators and parentheses, and a recursive
// descent evaluator that computes a float64 result with +, -, *, / and ^.
package expr

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenNumber   TokenType = iota // number literal (digits with at most one '.')
	TokenOperator                  // + - * / ^
	TokenLParen                    // (
	TokenRParen                    // )
	TokenOther                     // any other non-whitespace character

	TokenEOF // end of input; never produced by the lexer
)

// Token represents a single lexical token.
type Token struct {
	Type   TokenType
	Value  string  // raw source text
	Number float64 // parsed value (for TokenNumber)
	Pos    int     // byte offset in the source line
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenOther:
		return "OTHER"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// is reports whether the token is the single-character symbol s.
func (t Token) is(s string) bool {
	return t.Type != TokenNumber && t.Value == s
}

// isNumeric reports whether the token starts with a digit or a decimal point.
func (t Token) isNumeric() bool {
	if t.Value == "" {
		return false
	}
	ch := t.Value[0]
	return isDigit(ch) || ch == '.'
}
