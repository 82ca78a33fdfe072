package emulator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
)

func TestReadRegister(t *testing.T) {
	inst := emulator.NewEmulator(emulator.EmulatorConfig{StackStartAddress: 0x7FFFFFF0})
	inst.SetRegister(10, 42)
	inst.SetRegister(8, 0x100)
	inst.SetPC(0x1234)

	cases := []struct {
		name     string
		expected uint32
	}{
		{"a0", 42},
		{"A0", 42},
		{"x10", 42},
		{"s0", 0x100},
		{"fp", 0x100},
		{"sp", 0x7FFFFFF0},
		{"x2", 0x7FFFFFF0},
		{"zero", 0},
		{"pc", 0x1234},
		{"PC", 0x1234},
	}
	for _, c := range cases {
		got, err := inst.ReadRegister(c.name)
		if err != nil {
			t.Errorf("ReadRegister(%q) returned error: %v", c.name, err)
			continue
		}
		if got != c.expected {
			t.Errorf("Expected %s to be 0x%x, got 0x%x", c.name, c.expected, got)
		}
	}

	for _, name := range []string{"x32", "a8", "", "eax"} {
		_, err := inst.ReadRegister(name)
		var unknown *emulator.UnknownRegisterError
		if !errors.As(err, &unknown) || unknown.Name != name {
			t.Errorf("Expected unknown register error for %q, got %v", name, err)
		}
	}
}

func TestSetRegisterIgnoresZero(t *testing.T) {
	inst := emulator.NewEmulator(emulator.EmulatorConfig{})
	inst.SetRegister(0, 5)
	assert.Equal(t, uint32(0), inst.Register(0))
}

func TestRegisterNames(t *testing.T) {
	assert.Len(t, emulator.ABINames, 32)
	for i, name := range emulator.ABINames {
		assert.Equal(t, uint32(i), emulator.RegisterNameMap[name], name)
	}
}

func TestSymbolTable(t *testing.T) {
	symbols := emulator.SymbolTable{"main": 0x1000, "helper": 0x1040, "counter": 0x2000, "_start": 0x1000}

	addr, err := symbols.ResolveSymbol("counter")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2000), addr)

	_, err = symbols.ResolveSymbol("missing")
	var unknown *emulator.UnknownSymbolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)

	assert.Equal(t, "_start", symbols.Locate(0x1000))
	assert.Equal(t, "_start+8", symbols.Locate(0x1008))
	assert.Equal(t, "helper+4", symbols.Locate(0x1044))
	assert.Equal(t, "", symbols.Locate(0x10))

	assert.Equal(t, []string{"_start", "main", "helper", "counter"}, symbols.Names())
}
