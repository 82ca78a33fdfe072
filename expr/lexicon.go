package expr

import (
	"regexp"
	"sync"
)

type LexRule struct {
	Pattern string
	Kind    TokenKind
}

// Rules are tried in order and the first one matching at the cursor wins, so
// two-character operators must come before their one-character prefixes and
// prefixed literals before plain decimals.
var lexRules = []LexRule{
	{`[ \t\r\n]+`, TokenNone},
	{`==`, TokenEqual},
	{`!=`, TokenNotEqual},
	{`<<`, TokenShiftLeft},
	{`>>`, TokenShiftRight},
	{`<=`, TokenLessEqual},
	{`>=`, TokenGreaterEqual},
	{`&&`, TokenLogicalAnd},
	{`\|\|`, TokenLogicalOr},
	{`\+`, TokenPlus},
	{`-`, TokenMinus},
	{`\*`, TokenMultiply},
	{`/`, TokenDivide},
	{`%`, TokenModulo},
	{`\(`, TokenLeftParen},
	{`\)`, TokenRightParen},
	{`!`, TokenLogicalNot},
	{`\^`, TokenBitXor},
	{`&`, TokenBitAnd},
	{`\|`, TokenBitOr},
	{`~`, TokenBitNot},
	{`<`, TokenLess},
	{`>`, TokenGreater},
	{`0[xX][0-9a-fA-F]+`, TokenHex},
	{`0[bB][01]+`, TokenBinary},
	{`[0-9]+`, TokenDecimal},
	{`\$[a-zA-Z_][a-zA-Z0-9_]*`, TokenRegister},
	{`[a-zA-Z_][a-zA-Z0-9_]*`, TokenVariable},
}

type compiledRule struct {
	LexRule
	re *regexp.Regexp
}

var (
	lexiconOnce sync.Once
	lexicon     []compiledRule
)

// Rules returns a copy of the lexicon in match order.
func Rules() []LexRule {
	out := make([]LexRule, len(lexRules))
	copy(out, lexRules)
	return out
}

func compileLexicon(rules []LexRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		re, err := regexp.Compile(`\A(?:` + rule.Pattern + `)`)
		if err != nil {
			return nil, &LexiconError{Index: i, Pattern: rule.Pattern, Err: err}
		}
		compiled = append(compiled, compiledRule{LexRule: rule, re: re})
	}
	return compiled, nil
}

// loadLexicon compiles the rules the first time it is called. A bad pattern
// is a programming error, so it panics instead of returning.
func loadLexicon() []compiledRule {
	lexiconOnce.Do(func() {
		compiled, err := compileLexicon(lexRules)
		if err != nil {
			panic(err)
		}
		lexicon = compiled
	})
	return lexicon
}

// matchAt returns the length of the match of rule at the start of str, or -1
// if the rule does not match there. Patterns are compiled anchored at \A.
func (r compiledRule) matchAt(str string) int {
	loc := r.re.FindStringIndex(str)
	if loc == nil || loc[0] != 0 || loc[1] == 0 {
		return -1
	}
	return loc[1]
}
