package expr_test

import (
	"fmt"
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expr"
)

func evaluate(t *rapid.T, e *expr.Evaluator, text string) uint32 {
	v, err := e.EvaluateExpression(text)
	if err != nil {
		t.Fatalf("EvaluateExpression(%q) returned error: %v", text, err)
	}
	return v
}

func TestPropertyLiteralsRoundTrip(t *testing.T) {
	e := expr.NewEvaluator(expr.Environment{}, expr.DefaultLimits, nil)
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint32().Draw(t, "n")
		texts := []string{
			strconv.FormatUint(uint64(n), 10),
			fmt.Sprintf("0x%x", n),
			fmt.Sprintf("0X%X", n),
		}
		// wide binary literals exceed the token text limit
		if bin := "0b" + strconv.FormatUint(uint64(n), 2); len(bin) <= expr.DefaultLimits.MaxTokenText {
			texts = append(texts, bin)
		}
		for _, text := range texts {
			if got := evaluate(t, e, text); got != n {
				t.Fatalf("Expected %q to evaluate to %d, got %d", text, n, got)
			}
		}
	})
}

func TestPropertyDecimalLiteralsWrap(t *testing.T) {
	e := expr.NewEvaluator(expr.Environment{}, expr.DefaultLimits, nil)
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint64().Draw(t, "n")
		text := strconv.FormatUint(n, 10)
		if got := evaluate(t, e, text); got != uint32(n) {
			t.Fatalf("Expected %q to wrap to %d, got %d", text, uint32(n), got)
		}
	})
}

func TestPropertyArithmetic(t *testing.T) {
	e := expr.NewEvaluator(expr.Environment{}, expr.DefaultLimits, nil)
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint32().Draw(t, "a")
		b := rapid.Uint32().Draw(t, "b")
		c := rapid.Uint32().Draw(t, "c")

		if got := evaluate(t, e, fmt.Sprintf("%d - %d - %d", a, b, c)); got != a-b-c {
			t.Fatalf("Expected left associative subtraction to give %d, got %d", a-b-c, got)
		}
		if got := evaluate(t, e, fmt.Sprintf("%d + %d * %d", a, b, c)); got != a+b*c {
			t.Fatalf("Expected multiplication to bind tighter, want %d got %d", a+b*c, got)
		}
		if got := evaluate(t, e, fmt.Sprintf("(%d + %d) * %d", a, b, c)); got != (a+b)*c {
			t.Fatalf("Expected parentheses to override precedence, want %d got %d", (a+b)*c, got)
		}
		if got := evaluate(t, e, fmt.Sprintf("-%d", a)); got != -a {
			t.Fatalf("Expected negation of %d to be %d, got %d", a, -a, got)
		}
		if got := evaluate(t, e, fmt.Sprintf("%d << %d", a, b)); got != a<<(b%32) {
			t.Fatalf("Expected shift amount mod 32, want %d got %d", a<<(b%32), got)
		}
	})
}

func TestPropertyDivision(t *testing.T) {
	e := expr.NewEvaluator(expr.Environment{}, expr.DefaultLimits, nil)
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint32().Draw(t, "a")
		b := rapid.Uint32Min(1).Draw(t, "b")

		if got := evaluate(t, e, fmt.Sprintf("%d / %d", a, b)); got != a/b {
			t.Fatalf("Expected %d / %d = %d, got %d", a, b, a/b, got)
		}
		if got := evaluate(t, e, fmt.Sprintf("%d %% %d", a, b)); got != a%b {
			t.Fatalf("Expected %d %% %d = %d, got %d", a, b, a%b, got)
		}

		_, err := e.EvaluateExpression(fmt.Sprintf("%d / 0", a))
		if !expr.Errors.IsDivisionByZero(err) {
			t.Fatalf("Expected division by zero, got %v", err)
		}
	})
}

func TestPropertyComparisonsAreBoolean(t *testing.T) {
	e := expr.NewEvaluator(expr.Environment{}, expr.DefaultLimits, nil)
	ops := []string{"==", "!=", "<", "<=", ">", ">=", "&&", "||"}
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint32().Draw(t, "a")
		b := rapid.Uint32().Draw(t, "b")
		op := rapid.SampledFrom(ops).Draw(t, "op")

		got := evaluate(t, e, fmt.Sprintf("%d %s %d", a, op, b))
		if got > 1 {
			t.Fatalf("Expected %d %s %d to be 0 or 1, got %d", a, op, b, got)
		}
	})
}
