// Package expr evaluates debugger expressions such as "*($sp + 8) == 0x2a"
// against live machine state. Text is first split into tokens by an ordered
// lexicon of regular expressions, then folded into a single uint32 by a
// recursive evaluator that splits each token range at its lowest precedence
// operator.
package expr

import (
	"go.uber.org/zap"
)

type RegisterReader interface {
	ReadRegister(name string) (uint32, error)
}

type MemoryReader interface {
	ReadMemoryU32(addr uint32) (uint32, error)
}

type SymbolResolver interface {
	ResolveSymbol(name string) (uint32, error)
}

// Environment holds the machine state an expression can refer to. A nil
// member makes every lookup through it fail.
type Environment struct {
	Registers RegisterReader
	Memory    MemoryReader
	Symbols   SymbolResolver
}

type Evaluator struct {
	env    Environment
	limits Limits
	logger *zap.Logger
}

func NewEvaluator(env Environment, limits Limits, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	loadLexicon()
	return &Evaluator{
		env:    env,
		limits: limits.withDefaults(),
		logger: logger,
	}
}

func (e *Evaluator) Limits() Limits {
	return e.limits
}

func (e *Evaluator) Tokenize(text string) (TokenSequence, error) {
	return tokenize(text, e.limits, e.logger)
}

// EvaluateExpression tokenizes and evaluates text. Failures are returned as
// *Error wrapping a *LexError or an *EvalError.
func (e *Evaluator) EvaluateExpression(text string) (uint32, error) {
	tokens, err := e.Tokenize(text)
	if err != nil {
		return 0, &Error{Expression: text, Err: err}
	}

	value, err := e.EvaluateTokens(tokens)
	if err != nil {
		return 0, &Error{Expression: text, Err: err}
	}

	e.logger.Debug("evaluated expression", zap.String("expression", text), zap.Uint32("value", value))
	return value, nil
}
