package expr

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a single expression line.
type Lexer struct {
	input  string
	pos    int
	tokens []Token

	// pending numeric run
	numStart int
	numLen   int
	dotSeen  bool
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is shorthand for NewLexer(line).Tokenize().
func Tokenize(line string) []Token {
	return NewLexer(line).Tokenize()
}

// Tokenize scans the entire input and returns all tokens. It never fails:
// characters outside the alphabet become TokenOther and are rejected later
// by the evaluator.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if isDigit(ch) || (ch == '.' && !l.dotSeen) {
			if l.numLen == 0 {
				l.numStart = l.pos
			}
			if ch == '.' {
				l.dotSeen = true
			}
			l.numLen++
			l.pos++
			continue
		}

		l.flushNumber()

		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			l.tokens = append(l.tokens, symbolToken(l.input[l.pos:l.pos+size], l.pos))
		}
		l.pos += size
	}
	l.flushNumber()

	return l.tokens
}

// flushNumber emits the pending numeric run, if any.
func (l *Lexer) flushNumber() {
	if l.numLen == 0 {
		return
	}
	raw := l.input[l.numStart : l.numStart+l.numLen]
	l.tokens = append(l.tokens, Token{
		Type:   TokenNumber,
		Value:  raw,
		Number: parseNumber(raw),
		Pos:    l.numStart,
	})
	l.numLen = 0
	l.dotSeen = false
}

// parseNumber converts a run of digits with at most one '.' to a float64.
// A bare "." has no digits and reads as zero.
// Out-of-range runs come back from ParseFloat as ±Inf with ErrRange, which
// is the floating-point behaviour we want, so the error is dropped.
func parseNumber(raw string) float64 {
	f, _ := strconv.ParseFloat(raw, 64)
	return f
}

func symbolToken(s string, pos int) Token {
	tt := TokenOther
	switch s {
	case "+", "-", "*", "/", "^":
		tt = TokenOperator
	case "(":
		tt = TokenLParen
	case ")":
		tt = TokenRParen
	}
	return Token{Type: tt, Value: s, Pos: pos}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
