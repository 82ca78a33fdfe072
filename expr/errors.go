package expr

import (
	"errors"
	"fmt"
)

type LexErrorKind int

const (
	LexNoMatch LexErrorKind = iota
	LexTokenTooLong
	LexTooManyTokens
)

func (k LexErrorKind) String() string {
	switch k {
	case LexNoMatch:
		return "no match"
	case LexTokenTooLong:
		return "token too long"
	case LexTooManyTokens:
		return "too many tokens"
	}
	return "unknown lex error"
}

// LexError reports where tokenizing stopped. Position is a byte offset into
// the expression.
type LexError struct {
	Kind     LexErrorKind
	Position int
	Limit    int // the exceeded bound for LexTokenTooLong and LexTooManyTokens
}

func (e *LexError) Error() string {
	switch e.Kind {
	case LexTokenTooLong:
		return fmt.Sprintf("token at position %d is longer than %d characters", e.Position, e.Limit)
	case LexTooManyTokens:
		return fmt.Sprintf("expression has more than %d tokens (at position %d)", e.Limit, e.Position)
	}
	return fmt.Sprintf("no match at position %d", e.Position)
}

type EvalErrorKind int

const (
	EvalMalformedExpression EvalErrorKind = iota
	EvalDivisionByZero
	EvalUnknownRegister
	EvalUnknownSymbol
	EvalMemoryFault
)

func (k EvalErrorKind) String() string {
	switch k {
	case EvalMalformedExpression:
		return "malformed expression"
	case EvalDivisionByZero:
		return "division by zero"
	case EvalUnknownRegister:
		return "unknown register"
	case EvalUnknownSymbol:
		return "unknown symbol"
	case EvalMemoryFault:
		return "memory fault"
	}
	return "unknown evaluation error"
}

type EvalError struct {
	Kind    EvalErrorKind
	Name    string // register or symbol name
	Address uint32 // faulting address for EvalMemoryFault
	Err     error  // collaborator error, if any
}

func (e *EvalError) Error() string {
	switch e.Kind {
	case EvalUnknownRegister:
		return "unknown register: $" + e.Name
	case EvalUnknownSymbol:
		return "unknown symbol: " + e.Name
	case EvalMemoryFault:
		return fmt.Sprintf("cannot read memory at 0x%08x", e.Address)
	}
	return e.Kind.String()
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Error is what EvaluateExpression returns. It wraps a *LexError or an
// *EvalError together with the expression that produced it.
type Error struct {
	Expression string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Expression, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Position returns the byte offset a lexer failure points at.
func (e *Error) Position() (int, bool) {
	var lexErr *LexError
	if errors.As(e.Err, &lexErr) {
		return lexErr.Position, true
	}
	return 0, false
}

// LexiconError means a built-in lexical rule does not compile. It is never
// caused by user input.
type LexiconError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *LexiconError) Error() string {
	return fmt.Sprintf("lexicon rule %d %q does not compile: %v", e.Index, e.Pattern, e.Err)
}

func (e *LexiconError) Unwrap() error {
	return e.Err
}

type exprErrors struct{}

var Errors exprErrors

func (exprErrors) NoMatch(position int) *LexError {
	return &LexError{Kind: LexNoMatch, Position: position}
}

func (exprErrors) TokenTooLong(position, limit int) *LexError {
	return &LexError{Kind: LexTokenTooLong, Position: position, Limit: limit}
}

func (exprErrors) TooManyTokens(position, limit int) *LexError {
	return &LexError{Kind: LexTooManyTokens, Position: position, Limit: limit}
}

func (exprErrors) Malformed() *EvalError {
	return &EvalError{Kind: EvalMalformedExpression}
}

func (exprErrors) DivisionByZero() *EvalError {
	return &EvalError{Kind: EvalDivisionByZero}
}

func (exprErrors) UnknownRegister(name string, cause error) *EvalError {
	return &EvalError{Kind: EvalUnknownRegister, Name: name, Err: cause}
}

func (exprErrors) UnknownSymbol(name string, cause error) *EvalError {
	return &EvalError{Kind: EvalUnknownSymbol, Name: name, Err: cause}
}

func (exprErrors) MemoryFault(addr uint32, cause error) *EvalError {
	return &EvalError{Kind: EvalMemoryFault, Address: addr, Err: cause}
}

func (exprErrors) lexKind(err error) (LexErrorKind, bool) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Kind, true
	}
	return 0, false
}

func (exprErrors) evalKind(err error) (EvalErrorKind, bool) {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Kind, true
	}
	return 0, false
}

func (e exprErrors) IsNoMatch(err error) bool {
	k, ok := e.lexKind(err)
	return ok && k == LexNoMatch
}

func (e exprErrors) IsTokenTooLong(err error) bool {
	k, ok := e.lexKind(err)
	return ok && k == LexTokenTooLong
}

func (e exprErrors) IsTooManyTokens(err error) bool {
	k, ok := e.lexKind(err)
	return ok && k == LexTooManyTokens
}

func (e exprErrors) IsMalformed(err error) bool {
	k, ok := e.evalKind(err)
	return ok && k == EvalMalformedExpression
}

func (e exprErrors) IsDivisionByZero(err error) bool {
	k, ok := e.evalKind(err)
	return ok && k == EvalDivisionByZero
}

func (e exprErrors) IsUnknownRegister(err error) bool {
	k, ok := e.evalKind(err)
	return ok && k == EvalUnknownRegister
}

func (e exprErrors) IsUnknownSymbol(err error) bool {
	k, ok := e.evalKind(err)
	return ok && k == EvalUnknownSymbol
}

func (e exprErrors) IsMemoryFault(err error) bool {
	k, ok := e.evalKind(err)
	return ok && k == EvalMemoryFault
}
