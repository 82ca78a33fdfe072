package emulator

import (
	"fmt"
	"strings"
)

// RegisterNameMap maps every accepted register name, numeric and ABI, to its
// index in the register file.
var RegisterNameMap = map[string]uint32{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// ABINames is the preferred name of each register, used for dumps.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func init() {
	for i := uint32(0); i < 32; i++ {
		RegisterNameMap[fmt.Sprintf("x%d", i)] = i
	}
}

type UnknownRegisterError struct {
	Name string
}

func (e *UnknownRegisterError) Error() string {
	return fmt.Sprintf("no register named %q", e.Name)
}

// ReadRegister looks a register up by name, ignoring case. "pc" reads the
// program counter.
func (inst *EmulatorInstance) ReadRegister(name string) (uint32, error) {
	lower := strings.ToLower(name)
	if lower == "pc" {
		return inst.pc, nil
	}
	reg, ok := RegisterNameMap[lower]
	if !ok {
		return 0, &UnknownRegisterError{Name: name}
	}
	return inst.registers[reg], nil
}

func (inst *EmulatorInstance) Register(reg uint32) uint32 {
	return inst.registers[reg&0x1F]
}

// SetRegister changes a register from outside the program, marking it
// initialized. Writes to x0 are ignored.
func (inst *EmulatorInstance) SetRegister(reg uint32, value uint32) {
	reg &= 0x1F
	if reg == 0 {
		return
	}
	inst.registers[reg] = value
	inst.regInit |= 1 << reg
}

func (inst *EmulatorInstance) Registers() [32]uint32 {
	return inst.registers
}

func (inst *EmulatorInstance) PC() uint32 {
	return inst.pc
}

func (inst *EmulatorInstance) SetPC(addr uint32) {
	inst.pc = addr
}

func (inst *EmulatorInstance) regRead(reg uint32) uint32 {
	if inst.regInit&(1<<reg) == 0 {
		inst.newRegisterAccessedBeforeInitializedException(reg)
		return 0
	}
	return inst.registers[reg]
}

func (inst *EmulatorInstance) regWrite(reg uint32, value uint32) {
	if reg == 0 || inst.pending != nil {
		// x0 is hardwired to zero, and a faulting instruction writes nothing
		return
	}
	if inst.regInit&(1<<reg) == 0 {
		inst.regUsage++
	}
	inst.regInit |= 1 << reg
	inst.registers[reg] = value
}
