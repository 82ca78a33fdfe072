package expr

import (
	"strings"
)

// Binary operator precedence, lowest first. Unary operators bind tighter than
// any of these and are handled separately.
var binaryPrecedence = map[TokenKind]int{
	TokenLogicalOr:    1,
	TokenLogicalAnd:   2,
	TokenBitOr:        3,
	TokenBitXor:       4,
	TokenBitAnd:       5,
	TokenEqual:        6,
	TokenNotEqual:     6,
	TokenLess:         7,
	TokenLessEqual:    7,
	TokenGreater:      7,
	TokenGreaterEqual: 7,
	TokenShiftLeft:    8,
	TokenShiftRight:   8,
	TokenPlus:         9,
	TokenMinus:        9,
	TokenMultiply:     10,
	TokenDivide:       10,
	TokenModulo:       10,
}

// EvaluateTokens folds a whole token sequence into a value.
func (e *Evaluator) EvaluateTokens(tokens TokenSequence) (uint32, error) {
	if tokens.Len() == 0 {
		return 0, Errors.Malformed()
	}
	if !balanced(tokens) {
		return 0, Errors.Malformed()
	}
	return e.eval(tokens, 0, tokens.Len()-1)
}

func balanced(tokens TokenSequence) bool {
	depth := 0
	for i := 0; i < tokens.Len(); i++ {
		switch tokens.At(i).Kind {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// eval evaluates the inclusive token range [p, q]. Every recursive call works
// on a strictly smaller range.
func (e *Evaluator) eval(tokens TokenSequence, p, q int) (uint32, error) {
	if p > q {
		return 0, Errors.Malformed()
	}

	if p == q {
		return e.primary(tokens.At(p))
	}

	if wrappedInParens(tokens, p, q) {
		return e.eval(tokens, p+1, q-1)
	}

	op, err := splitPoint(tokens, p, q)
	if err != nil {
		return 0, err
	}
	if op >= 0 {
		left, err := e.eval(tokens, p, op-1)
		if err != nil {
			return 0, err
		}
		right, err := e.eval(tokens, op+1, q)
		if err != nil {
			return 0, err
		}
		return applyBinary(tokens.At(op).Kind, left, right)
	}

	switch tokens.At(p).Kind {
	case TokenNegate, TokenLogicalNot, TokenBitNot, TokenDeref:
		operand, err := e.eval(tokens, p+1, q)
		if err != nil {
			return 0, err
		}
		return e.applyUnary(tokens.At(p).Kind, operand)
	}

	return 0, Errors.Malformed()
}

// wrappedInParens reports whether tokens p and q are a matching pair of
// parentheses enclosing the whole range.
func wrappedInParens(tokens TokenSequence, p, q int) bool {
	if tokens.At(p).Kind != TokenLeftParen || tokens.At(q).Kind != TokenRightParen {
		return false
	}

	depth := 0
	for i := p; i < q; i++ {
		switch tokens.At(i).Kind {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
		}
		if depth == 0 {
			return false
		}
	}
	return true
}

// splitPoint finds the main operator of the range: the lowest precedence
// binary operator outside any parentheses, taking the rightmost one on ties so
// that chains of equal precedence evaluate left to right. It returns -1 if
// there is none.
func splitPoint(tokens TokenSequence, p, q int) (int, error) {
	op := -1
	opPrecedence := 0
	depth := 0

	for i := p; i <= q; i++ {
		kind := tokens.At(i).Kind
		switch kind {
		case TokenLeftParen:
			depth++
			continue
		case TokenRightParen:
			depth--
			if depth < 0 {
				return -1, Errors.Malformed()
			}
			continue
		}

		if depth > 0 {
			continue
		}

		precedence, ok := binaryPrecedence[kind]
		if !ok {
			continue
		}
		if op < 0 || precedence <= opPrecedence {
			op = i
			opPrecedence = precedence
		}
	}

	return op, nil
}

func boolValue(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func applyBinary(kind TokenKind, left, right uint32) (uint32, error) {
	switch kind {
	case TokenPlus:
		return left + right, nil
	case TokenMinus:
		return left - right, nil
	case TokenMultiply:
		return left * right, nil
	case TokenDivide:
		if right == 0 {
			return 0, Errors.DivisionByZero()
		}
		return left / right, nil
	case TokenModulo:
		if right == 0 {
			return 0, Errors.DivisionByZero()
		}
		return left % right, nil
	case TokenShiftLeft:
		return left << (right & 31), nil
	case TokenShiftRight:
		return left >> (right & 31), nil
	case TokenBitAnd:
		return left & right, nil
	case TokenBitOr:
		return left | right, nil
	case TokenBitXor:
		return left ^ right, nil
	case TokenEqual:
		return boolValue(left == right), nil
	case TokenNotEqual:
		return boolValue(left != right), nil
	case TokenLess:
		return boolValue(left < right), nil
	case TokenLessEqual:
		return boolValue(left <= right), nil
	case TokenGreater:
		return boolValue(left > right), nil
	case TokenGreaterEqual:
		return boolValue(left >= right), nil
	case TokenLogicalAnd:
		// both sides are always evaluated
		return boolValue(left != 0 && right != 0), nil
	case TokenLogicalOr:
		return boolValue(left != 0 || right != 0), nil
	}
	return 0, Errors.Malformed()
}

func (e *Evaluator) applyUnary(kind TokenKind, operand uint32) (uint32, error) {
	switch kind {
	case TokenNegate:
		return -operand, nil
	case TokenLogicalNot:
		return boolValue(operand == 0), nil
	case TokenBitNot:
		return ^operand, nil
	case TokenDeref:
		if e.env.Memory == nil {
			return 0, Errors.MemoryFault(operand, nil)
		}
		value, err := e.env.Memory.ReadMemoryU32(operand)
		if err != nil {
			return 0, Errors.MemoryFault(operand, err)
		}
		return value, nil
	}
	return 0, Errors.Malformed()
}

func (e *Evaluator) primary(tok Token) (uint32, error) {
	switch tok.Kind {
	case TokenDecimal:
		return parseLiteral(tok.Text, 10), nil
	case TokenHex:
		return parseLiteral(tok.Text[2:], 16), nil
	case TokenBinary:
		return parseLiteral(tok.Text[2:], 2), nil
	case TokenRegister:
		name := strings.TrimPrefix(tok.Text, "$")
		if e.env.Registers == nil {
			return 0, Errors.UnknownRegister(name, nil)
		}
		value, err := e.env.Registers.ReadRegister(name)
		if err != nil {
			return 0, Errors.UnknownRegister(name, err)
		}
		return value, nil
	case TokenVariable:
		if e.env.Symbols == nil {
			return 0, Errors.UnknownSymbol(tok.Text, nil)
		}
		value, err := e.env.Symbols.ResolveSymbol(tok.Text)
		if err != nil {
			return 0, Errors.UnknownSymbol(tok.Text, err)
		}
		return value, nil
	}
	return 0, Errors.Malformed()
}

// parseLiteral converts digits already validated by the lexicon. Values that
// do not fit in 32 bits wrap modulo 2^32.
func parseLiteral(digits string, base uint32) uint32 {
	value := uint32(0)
	for i := 0; i < len(digits); i++ {
		value = value*base + digitValue(digits[i])
	}
	return value
}

func digitValue(c byte) uint32 {
	switch {
	case c >= '0' && c <= '9':
		return uint32(c - '0')
	case c >= 'a' && c <= 'f':
		return uint32(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return uint32(c-'A') + 10
	}
	return 0
}
