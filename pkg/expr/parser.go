package expr

import "math"

// Parser is a recursive descent evaluator over an immutable token slice.
// The grammar, tightest binding first:
//
//	primary := NUMBER [ '^' primary ]
//	         | '(' expr ')' [ '^' primary ]
//	         | '-' primary
//	term    := primary (('*' | '/') primary)*
//	expr    := term (('+' | '-') term)*
//
// '^' is right-associative because its exponent recurses into primary.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser positioned at the first token.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Eval tokenizes and evaluates a single line.
func Eval(line string) (float64, error) {
	return Evaluate(Tokenize(line))
}

// Evaluate computes the value of a complete token sequence. It fails with an
// *Error of kind KindUnbalancedParens, KindInvalidInput or KindDivideByZero.
// The slice is not modified, so the same tokens can be evaluated again.
func Evaluate(tokens []Token) (float64, error) {
	return NewParser(tokens).Run()
}

// Run evaluates the whole expression and rejects leftover tokens.
func (p *Parser) Run() (float64, error) {
	res, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	if !p.done() {
		tok := p.current()
		if tok.Type == TokenLParen || tok.Type == TokenRParen {
			return 0, newUnbalancedParensError(tok)
		}
		return 0, newInvalidInputError(tok)
	}

	return res, nil
}

// current returns the current token, or an EOF token once exhausted.
func (p *Parser) current() Token {
	if p.done() {
		return Token{Type: TokenEOF, Pos: -1}
	}
	return p.tokens[p.pos]
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.current()
	if !p.done() {
		p.pos++
	}
	return tok
}

func (p *Parser) done() bool {
	return p.pos >= len(p.tokens)
}

// parseExpr handles binary + and -, folding left to right.
func (p *Parser) parseExpr() (float64, error) {
	res, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		tok := p.current()
		switch {
		case tok.is("+"):
			p.advance()
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			res += rhs
		case tok.is("-"):
			p.advance()
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			res -= rhs
		default:
			return res, nil
		}
	}
}

// parseTerm handles * and /, folding left to right.
func (p *Parser) parseTerm() (float64, error) {
	res, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	for {
		tok := p.current()
		switch {
		case tok.is("*"):
			p.advance()
			rhs, err := p.parsePrimary()
			if err != nil {
				return 0, err
			}
			res *= rhs
		case tok.is("/"):
			p.advance()
			denom, err := p.parsePrimary()
			if err != nil {
				return 0, err
			}
			if denom == 0 {
				return 0, newDivideByZeroError(tok)
			}
			res /= denom
		default:
			return res, nil
		}
	}
}

// parsePrimary handles numbers, parenthesized groups, unary minus and the
// optional '^' suffix on numbers and groups.
func (p *Parser) parsePrimary() (float64, error) {
	tok := p.current()

	switch {
	case tok.Type == TokenLParen:
		p.advance()
		res, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.current().Type != TokenRParen {
			return 0, newUnbalancedParensError(p.current())
		}
		p.advance()
		return p.parsePower(res)

	case tok.is("-"):
		p.advance()
		res, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		return -res, nil

	case tok.isNumeric():
		p.advance()
		return p.parsePower(tok.Number)

	default:
		return 0, newInvalidInputError(tok)
	}
}

// parsePower raises base to the following primary when the current token
// is '^', and returns base unchanged otherwise.
func (p *Parser) parsePower(base float64) (float64, error) {
	if !p.current().is("^") {
		return base, nil
	}
	p.advance()
	exp, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}
