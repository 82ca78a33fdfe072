package expr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expr"
)

var errNotFound = errors.New("not found")

type fakeRegisters map[string]uint32

func (r fakeRegisters) ReadRegister(name string) (uint32, error) {
	v, ok := r[name]
	if !ok {
		return 0, errNotFound
	}
	return v, nil
}

type fakeMemory map[uint32]uint32

func (m fakeMemory) ReadMemoryU32(addr uint32) (uint32, error) {
	v, ok := m[addr]
	if !ok {
		return 0, errNotFound
	}
	return v, nil
}

type fakeSymbols map[string]uint32

func (s fakeSymbols) ResolveSymbol(name string) (uint32, error) {
	v, ok := s[name]
	if !ok {
		return 0, errNotFound
	}
	return v, nil
}

func newTestEvaluator() *expr.Evaluator {
	return expr.NewEvaluator(expr.Environment{
		Registers: fakeRegisters{"a0": 41, "sp": 0x7FFFFFF0, "pc": 0x1000, "zero": 0},
		Memory:    fakeMemory{0x1000: 0xDEADBEEF, 0x7FFFFFF0: 0x2000, 0x2000: 7, 0x2004: 0x1000},
		Symbols:   fakeSymbols{"main": 0x1000, "counter": 0x2000},
	}, expr.DefaultLimits, nil)
}

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		input    string
		expected uint32
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"((1 + 2)) * (3)", 9},
		{"-1", 0xFFFFFFFF},
		{"- - 5", 5},
		{"-(2 + 3)", 0xFFFFFFFB},
		{"10 - 4 - 3", 3},
		{"100 / 10 / 5", 2},
		{"2 * 3 % 4", 2},
		{"7 / 2", 3},
		{"0xFFFFFFFF + 2", 1},
		{"0 - 1", 0xFFFFFFFF},
		{"0x10000 * 0x10000", 0},
		{"1 - -1", 2},
		{"4*3", 12},
		{"1-1", 0},
		{"-2 * 3", 0xFFFFFFFA},
	}

	e := newTestEvaluator()
	for _, c := range cases {
		got, err := e.EvaluateExpression(c.input)
		if err != nil {
			t.Errorf("EvaluateExpression(%q) returned error: %v", c.input, err)
			continue
		}
		if got != c.expected {
			t.Errorf("Expected %q to evaluate to 0x%08x, got 0x%08x", c.input, c.expected, got)
		}
	}
}

func TestEvaluateBitwiseAndLogical(t *testing.T) {
	cases := []struct {
		input    string
		expected uint32
	}{
		{"2 << 3", 16},
		{"1 << 33", 2},
		{"0x80000000 >> 31", 1},
		{"0x80000000 >> 63", 1},
		{"1 << 2 + 1", 8},
		{"0b101 | 0x10", 0x15},
		{"6 & 3 ^ 1", 3},
		{"1 | 2 ^ 3", 1},
		{"0xF0 & 0x3C", 0x30},
		{"~0", 0xFFFFFFFF},
		{"~0x0F & 0xFF", 0xF0},
		{"!0", 1},
		{"!5", 0},
		{"!!7", 1},
		{"1 == 1", 1},
		{"1 != 1", 0},
		{"1 + 1 == 2", 1},
		{"3 > 2 == 1", 1},
		{"2 < 3", 1},
		{"3 <= 3", 1},
		{"2 >= 3", 0},
		{"-1 > 0", 1},
		{"0 && 1", 0},
		{"2 && 3", 1},
		{"2 || 0", 1},
		{"0 || 0", 0},
		{"1 || 0 && 0", 1},
		{"1 == 2 || 3 == 3", 1},
		{"4 & 1 == 1", 0},
	}

	e := newTestEvaluator()
	for _, c := range cases {
		got, err := e.EvaluateExpression(c.input)
		if err != nil {
			t.Errorf("EvaluateExpression(%q) returned error: %v", c.input, err)
			continue
		}
		if got != c.expected {
			t.Errorf("Expected %q to evaluate to 0x%08x, got 0x%08x", c.input, c.expected, got)
		}
	}
}

func TestEvaluateLiterals(t *testing.T) {
	cases := []struct {
		input    string
		expected uint32
	}{
		{"0", 0},
		{"42", 42},
		{"4294967295", 0xFFFFFFFF},
		{"0x2a", 42},
		{"0X2A", 42},
		{"0b101010", 42},
		{"0B11", 3},
		// values wider than 32 bits wrap
		{"4294967296", 0},
		{"4294967297", 1},
		{"0x100000001", 1},
		{"0x123456789", 0x23456789},
	}

	e := newTestEvaluator()
	for _, c := range cases {
		got, err := e.EvaluateExpression(c.input)
		if err != nil {
			t.Errorf("EvaluateExpression(%q) returned error: %v", c.input, err)
			continue
		}
		if got != c.expected {
			t.Errorf("Expected %q to evaluate to 0x%08x, got 0x%08x", c.input, c.expected, got)
		}
	}
}

func TestEvaluateMachineState(t *testing.T) {
	cases := []struct {
		input    string
		expected uint32
	}{
		{"$a0 + 1", 42},
		{"$pc", 0x1000},
		{"$zero == 0", 1},
		{"main", 0x1000},
		{"main + 4", 0x1004},
		{"*main", 0xDEADBEEF},
		{"*0x1000", 0xDEADBEEF},
		{"*$sp", 0x2000},
		{"**$sp", 7},
		{"*($sp) + 1", 0x2001},
		{"*(counter + 4)", 0x1000},
		{"*counter * 2", 14},
		{"-*counter", 0xFFFFFFF9},
		{"*counter == 7 && $a0 > 40", 1},
	}

	e := newTestEvaluator()
	for _, c := range cases {
		got, err := e.EvaluateExpression(c.input)
		if err != nil {
			t.Errorf("EvaluateExpression(%q) returned error: %v", c.input, err)
			continue
		}
		if got != c.expected {
			t.Errorf("Expected %q to evaluate to 0x%08x, got 0x%08x", c.input, c.expected, got)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	e := newTestEvaluator()

	_, err := e.EvaluateExpression("1 / 0")
	assert.True(t, expr.Errors.IsDivisionByZero(err), "1 / 0: %v", err)

	_, err = e.EvaluateExpression("5 % (2 - 2)")
	assert.True(t, expr.Errors.IsDivisionByZero(err), "modulo by zero: %v", err)

	_, err = e.EvaluateExpression("*0")
	require.True(t, expr.Errors.IsMemoryFault(err), "*0: %v", err)
	var evalErr *expr.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, uint32(0), evalErr.Address)
	assert.ErrorIs(t, err, errNotFound)

	_, err = e.EvaluateExpression("*(main + 2)")
	require.True(t, expr.Errors.IsMemoryFault(err))
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, uint32(0x1002), evalErr.Address)

	_, err = e.EvaluateExpression("$xx")
	require.True(t, expr.Errors.IsUnknownRegister(err), "$xx: %v", err)
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "xx", evalErr.Name)

	_, err = e.EvaluateExpression("missing + 1")
	require.True(t, expr.Errors.IsUnknownSymbol(err), "missing: %v", err)
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "missing", evalErr.Name)

	// both sides of && are evaluated
	_, err = e.EvaluateExpression("0 && 1 / 0")
	assert.True(t, expr.Errors.IsDivisionByZero(err))
	_, err = e.EvaluateExpression("1 || *0")
	assert.True(t, expr.Errors.IsMemoryFault(err))
}

func TestEvaluateMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"()",
		"(1 + 2",
		"1 + 2)",
		")1(",
		"1 +",
		"+ 1",
		"1 + 2 *",
		"1 2",
		"1 !",
		"1 ~ 2",
		"(1)(2)",
		"$a0 main",
		"* ",
		"-",
	}

	e := newTestEvaluator()
	for _, input := range inputs {
		_, err := e.EvaluateExpression(input)
		if !expr.Errors.IsMalformed(err) {
			t.Errorf("Expected %q to be malformed, got %v", input, err)
		}
	}
}

func TestEvaluateErrorPosition(t *testing.T) {
	e := newTestEvaluator()

	_, err := e.EvaluateExpression("$a0 + #")
	var exprErr *expr.Error
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, "$a0 + #", exprErr.Expression)
	pos, ok := exprErr.Position()
	require.True(t, ok)
	assert.Equal(t, 6, pos)

	_, err = e.EvaluateExpression("1 / 0")
	require.ErrorAs(t, err, &exprErr)
	_, ok = exprErr.Position()
	assert.False(t, ok)
}

func TestEvaluateWithoutCollaborators(t *testing.T) {
	e := expr.NewEvaluator(expr.Environment{}, expr.Limits{}, nil)
	assert.Equal(t, expr.DefaultLimits, e.Limits())

	_, err := e.EvaluateExpression("$a0")
	assert.True(t, expr.Errors.IsUnknownRegister(err))
	_, err = e.EvaluateExpression("main")
	assert.True(t, expr.Errors.IsUnknownSymbol(err))
	_, err = e.EvaluateExpression("*4")
	assert.True(t, expr.Errors.IsMemoryFault(err))

	v, err := e.EvaluateExpression("1 + 1")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v)
}

func TestEvaluateTokensDoesNotMutate(t *testing.T) {
	e := newTestEvaluator()
	tokens, err := e.Tokenize("(1 + 2) * -3")
	require.NoError(t, err)
	before := tokens.Kinds()

	v, err := e.EvaluateTokens(tokens)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFF7), v)
	assert.Equal(t, before, tokens.Kinds())

	v, err = e.EvaluateTokens(tokens)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFF7), v)
}
