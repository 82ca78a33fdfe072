package expr

import (
	"go.uber.org/zap"
)

// Tokenize splits text into tokens using the package lexicon.
func Tokenize(text string, limits Limits) (TokenSequence, error) {
	return tokenize(text, limits.withDefaults(), zap.NewNop())
}

func tokenize(text string, limits Limits, logger *zap.Logger) (TokenSequence, error) {
	rules := loadLexicon()
	tokens := newTokenSequence(limits.MaxTokens)

	position := 0
	for position < len(text) {
		matched := false
		for i, rule := range rules {
			length := rule.matchAt(text[position:])
			if length < 0 {
				continue
			}

			substr := text[position : position+length]
			logger.Debug("lexicon match",
				zap.Int("rule", i),
				zap.String("pattern", rule.Pattern),
				zap.Int("position", position),
				zap.Int("length", length),
				zap.String("text", substr))

			tok := Token{Kind: rule.Kind, Pos: position}
			switch {
			case rule.Kind == TokenNone:
				// whitespace
			case rule.Kind == TokenMinus || rule.Kind == TokenMultiply:
				tok.Kind = reclassify(rule.Kind, tokens)
			case rule.Kind.carriesText():
				if length > limits.MaxTokenText {
					return TokenSequence{}, Errors.TokenTooLong(position, limits.MaxTokenText)
				}
				tok.Text = substr
			}

			if tok.Kind != TokenNone {
				if err := tokens.push(tok); err != nil {
					return TokenSequence{}, err
				}
			}

			position += length
			matched = true
			break
		}

		if !matched {
			return TokenSequence{}, Errors.NoMatch(position)
		}
	}

	return tokens, nil
}

// reclassify decides whether '-' or '*' is a binary operator or a unary one
// from the token accepted just before it.
func reclassify(kind TokenKind, tokens TokenSequence) TokenKind {
	prev, ok := tokens.last()
	binary := ok && prev.Kind.isOperand()

	if kind == TokenMinus {
		if binary {
			return TokenMinus
		}
		return TokenNegate
	}

	if binary {
		return TokenMultiply
	}
	return TokenDeref
}
