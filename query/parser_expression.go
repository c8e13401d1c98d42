package query

import (
	"fmt"
	"strconv"
	"strings"
)

// aggregateNames lists the supported aggregate functions. Any other
// identifier followed by a parenthesis is treated as a scalar function.
var aggregateNames = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// parseExpr parses an expression, handling operator precedence:
// OR < AND < NOT < comparison < additive < multiplicative < unary minus.
func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.current().Type == TokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Operator: TokenNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	switch p.current().Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		op := p.current().Type
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Operator: op, Right: right}, nil
	case TokenIs:
		// IS [NOT] NULL postfix.
		p.advance()
		negate := false
		if p.current().Type == TokenNot {
			negate = true
			p.advance()
		}
		if p.current().Type != TokenNull {
			return nil, fmt.Errorf("expected NULL after IS, got %q", p.current().Value)
		}
		p.advance()
		return &IsNullExpr{Operand: left, Negate: negate}, nil
	}

	return left, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.current().Type
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenStar || p.current().Type == TokenSlash {
		op := p.current().Type
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.current().Type == TokenMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Operator: TokenMinus, Operand: operand}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses literals, column references, function calls and
// parenthesized expressions.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return &Literal{Value: parseNumber(tok.Value)}, nil

	case TokenString:
		p.advance()
		return &Literal{Value: tok.Value}, nil

	case TokenBool:
		p.advance()
		return &Literal{Value: strings.EqualFold(tok.Value, "true")}, nil

	case TokenNull:
		p.advance()
		return &Literal{Value: nil}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenIdent:
		p.advance()
		if p.current().Type == TokenLeftParen {
			return p.parseCall(tok.Value)
		}
		return &ColumnRef{Name: tok.Value}, nil

	default:
		return nil, &UnsupportedSyntaxError{Token: tok.Value}
	}
}

// parseCall parses the argument list of a function call. The opening
// parenthesis is the current token.
func (p *Parser) parseCall(name string) (Expr, error) {
	p.advance() // consume (

	lower := strings.ToLower(name)

	if aggregateNames[lower] {
		return p.parseAggregate(lower)
	}

	var args []Expr
	if p.current().Type != TokenRightParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	if _, ok := scalarFuncs[lower]; !ok {
		return nil, &UnsupportedSyntaxError{Token: name}
	}

	return &FunctionCall{Name: lower, Args: args}, nil
}

// parseAggregate parses the single argument of an aggregate call.
// COUNT additionally accepts a bare star.
func (p *Parser) parseAggregate(name string) (Expr, error) {
	agg := &AggregateExpr{Function: name}

	if p.current().Type == TokenStar {
		if name != "count" {
			return nil, &UnsupportedSyntaxError{Token: "*"}
		}
		agg.Star = true
		p.advance()
	} else {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		agg.Arg = arg
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseNumber converts a numeric token into an int64 or float64 value.
// A decimal point or exponent makes it a float.
func parseNumber(s string) interface{} {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
