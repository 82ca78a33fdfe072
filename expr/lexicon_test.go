package expr

import (
	"errors"
	"strings"
	"testing"
)

func TestCompileLexiconReportsBadPattern(t *testing.T) {
	rules := []LexRule{
		{`\+`, TokenPlus},
		{`(`, TokenLeftParen},
	}

	_, err := compileLexicon(rules)
	var lexiconErr *LexiconError
	if !errors.As(err, &lexiconErr) {
		t.Fatalf("Expected *LexiconError, got %v", err)
	}
	if lexiconErr.Index != 1 || lexiconErr.Pattern != `(` {
		t.Errorf("Expected rule 1 %q to be reported, got rule %d %q", `(`, lexiconErr.Index, lexiconErr.Pattern)
	}
	if !strings.Contains(err.Error(), `"("`) {
		t.Errorf("Expected error message to name the pattern, got %q", err.Error())
	}
}

func TestBuiltinLexiconCompiles(t *testing.T) {
	compiled, err := compileLexicon(lexRules)
	if err != nil {
		t.Fatalf("Built in lexicon does not compile: %v", err)
	}
	if len(compiled) != len(Rules()) {
		t.Errorf("Expected %d compiled rules, got %d", len(Rules()), len(compiled))
	}
}

// Every operator glyph must be recognized by the rule for its own kind, which
// only holds if longer operators come before their prefixes.
func TestLexiconOperatorOrder(t *testing.T) {
	rules := loadLexicon()
	glyphs := map[string]TokenKind{
		"==": TokenEqual, "!=": TokenNotEqual, "<<": TokenShiftLeft, ">>": TokenShiftRight,
		"<=": TokenLessEqual, ">=": TokenGreaterEqual, "&&": TokenLogicalAnd, "||": TokenLogicalOr,
		"!": TokenLogicalNot, "&": TokenBitAnd, "|": TokenBitOr, "<": TokenLess, ">": TokenGreater,
		"0x1f": TokenHex, "0b10": TokenBinary, "10": TokenDecimal, "$t0": TokenRegister, "x0": TokenVariable,
	}

	for glyph, kind := range glyphs {
		for _, rule := range rules {
			length := rule.matchAt(glyph)
			if length < 0 {
				continue
			}
			if rule.Kind != kind || length != len(glyph) {
				t.Errorf("Expected %q to lex as %s, first rule matching is %q (%s, %d chars)", glyph, kind, rule.Pattern, rule.Kind, length)
			}
			break
		}
	}
}

func TestMatchAtAnchorsToCursor(t *testing.T) {
	rules := loadLexicon()
	for _, rule := range rules {
		if rule.Kind != TokenDecimal {
			continue
		}
		if n := rule.matchAt("abc123"); n != -1 {
			t.Errorf("Expected no match for a number later in the input, got %d", n)
		}
		if n := rule.matchAt("123abc"); n != 3 {
			t.Errorf("Expected a 3 character match, got %d", n)
		}
	}
}

func TestCompiledRulesAreAnchored(t *testing.T) {
	for i, rule := range loadLexicon() {
		if want := `\A(?:` + lexRules[i].Pattern + `)`; rule.re.String() != want {
			t.Errorf("Expected rule %d to compile as %q, got %q", i, want, rule.re.String())
		}
		if rule.Pattern != lexRules[i].Pattern {
			t.Errorf("Expected rule %d to keep pattern %q, got %q", i, lexRules[i].Pattern, rule.Pattern)
		}
	}

	// a later match is never found, even far into the input
	long := strings.Repeat("@", 4096) + "1"
	for _, rule := range loadLexicon() {
		if rule.re.FindStringIndex(long) != nil {
			t.Errorf("Expected %q to only match at the start of the input", rule.Pattern)
		}
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0].Pattern = "changed"
	if lexRules[0].Pattern == "changed" {
		t.Errorf("Rules exposed the package lexicon")
	}
}
