package emulator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

var (
	ErrHalted       = errors.New("program has exited")
	ErrRuntimeLimit = errors.New("runtime limit reached")
)

func (e *RuntimeException) Error() string {
	return fmt.Sprintf("%s (pc=0x%08X)", e.Message, e.PC)
}

func (inst *EmulatorInstance) newException(format string, args ...interface{}) *RuntimeException {
	regs := inst.registers

	callStack := make([]uint32, len(inst.callStack), len(inst.callStack)+1)
	copy(callStack, inst.callStack)
	callStack = append(callStack, inst.pc)

	exception := &RuntimeException{
		Registers: regs,
		PC:        inst.pc,
		CallStack: callStack,
		Message:   fmt.Sprintf(format, args...),
	}

	inst.reportException(exception)
	return exception
}

func (inst *EmulatorInstance) reportException(exception *RuntimeException) {
	// only the first exception of an instruction stops it
	if inst.pending == nil {
		inst.pending = exception
	}
	inst.errors = append(inst.errors, exception)
	util.L().Debug("runtime exception", zap.Uint32("pc", exception.PC), zap.String("message", exception.Message))
	if inst.runtimeErrorCallback != nil && !inst.terminated {
		inst.runtimeErrorCallback(exception)
	}
}

func (inst *EmulatorInstance) newMemoryAccessedBeforeInitializedException(addr uint32) *RuntimeException {
	return inst.newException("Memory accessed before initialized at 0x%08X", addr)
}

func (inst *EmulatorInstance) newMemoryAccessNotAlignedException(addr uint32, accessType string) *RuntimeException {
	return inst.newException("Memory access not aligned at 0x%08X for type %s", addr, accessType)
}

func (inst *EmulatorInstance) newRegisterAccessedBeforeInitializedException(register uint32) *RuntimeException {
	return inst.newException("Register accessed before initialized: %s", ABINames[register])
}

func (inst *EmulatorInstance) newUnsupportedInstructionException(kind string, instruction uint32) *RuntimeException {
	return inst.newException("Unsupported %s instruction 0x%08X", kind, instruction)
}
