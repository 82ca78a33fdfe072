package emulator

import (
	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

// The return address main is entered with. Returning to it ends the program.
const haltAddress = 0x20352035

func NewEmulator(config EmulatorConfig) *EmulatorInstance {
	if config.Memory == nil {
		config.Memory = NewMemoryImage()
	}

	// in case the program tries to read from the stack
	config.Memory.WriteWord(config.StackStartAddress, haltAddress)

	inst := &EmulatorInstance{
		memory:               config.Memory,
		runtimeLimit:         config.RuntimeLimit,
		heapPointer:          config.HeapStartAddress,
		errors:               []*RuntimeException{},
		stdOutCallback:       config.StdOutCallback,
		runtimeErrorCallback: config.RuntimeErrorCallback,
	}
	inst.ResetRegisters(config)
	return inst
}

func (inst *EmulatorInstance) ResetRegisters(config EmulatorConfig) {
	inst.registers = [32]uint32{}
	inst.registers[1] = haltAddress
	inst.registers[2] = config.StackStartAddress
	inst.registers[3] = config.GlobalDataAddress
	inst.registers[8] = config.StackStartAddress // frame pointer
	inst.regInit = 0x10F
	inst.callStack = []uint32{}
	inst.halted = false
	inst.pending = nil
}

// Step executes the instruction at the program counter. If the instruction
// raises a runtime exception it is returned and the program counter is left
// on the faulting instruction.
func (inst *EmulatorInstance) Step() error {
	if inst.halted {
		return ErrHalted
	}

	inst.pending = nil
	inst.nextPC = inst.pc + 4

	instruction := inst.memReadWord(inst.pc)
	if inst.pending == nil {
		util.LogF("pc=0x%08X instruction=0x%08X", inst.pc, instruction)
		inst.execute(instruction)
	}
	if inst.pending != nil {
		return inst.pending
	}

	inst.pc = inst.nextPC
	inst.di++
	if inst.pc == haltAddress || inst.pc == haltAddress&^1 {
		inst.halted = true
	}
	return nil
}

// Emulate runs from startAddr until the program exits, raises an exception or
// uses up its runtime limit.
func (inst *EmulatorInstance) Emulate(startAddr uint32) error {
	inst.pc = startAddr
	for !inst.halted && !inst.terminated {
		if inst.LimitReached() {
			util.L().Warn("runtime limit reached, infinite loop?", zap.Uint32("di", inst.di))
			return ErrRuntimeLimit
		}
		if err := inst.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (inst *EmulatorInstance) execute(instruction uint32) {
	switch GetOpCode(instruction) {
	case OPCODE_LUI:
		inst.executeLUI(instruction)
	case OPCODE_AUIPC:
		inst.executeAUIPC(instruction)
	case OPCODE_JAL:
		inst.executeJAL(instruction)
	case OPCODE_JALR:
		inst.executeJALR(instruction)
	case OPCODE_BTYPE:
		inst.executeBType(instruction)
	case OPCODE_MEMITYPE:
		inst.executeMemIType(instruction)
	case OPCODE_ITYPE:
		inst.executeIType(instruction)
	case OPCODE_RTYPE:
		inst.executeRType(instruction)
	case OPCODE_STYPE:
		inst.executeSType(instruction)
	case OPCODE_ENV:
		inst.executeEnv(instruction)
	default:
		inst.newException("Unsupported opcode exception: %d", GetOpCode(instruction))
	}
}

func (inst *EmulatorInstance) LimitReached() bool {
	return inst.runtimeLimit != 0 && inst.di >= inst.runtimeLimit
}

func (inst *EmulatorInstance) Halted() bool {
	return inst.halted
}

func (inst *EmulatorInstance) Terminate() {
	inst.terminated = true
}

func (inst *EmulatorInstance) GetExitCode() int {
	return inst.exitCode
}

func (inst *EmulatorInstance) GetMemoryUsage() uint32 {
	return inst.memUsage
}

func (inst *EmulatorInstance) GetRegisterUsage() uint32 {
	return inst.regUsage
}

func (inst *EmulatorInstance) GetDynamicInstructionCount() uint32 {
	return inst.di
}

func (inst *EmulatorInstance) GetErrors() []*RuntimeException {
	return inst.errors
}

// CallStack returns the addresses of the calls currently in progress,
// outermost first.
func (inst *EmulatorInstance) CallStack() []uint32 {
	out := make([]uint32, len(inst.callStack))
	copy(out, inst.callStack)
	return out
}

func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

func (inst *EmulatorInstance) executeLUI(instruction uint32) {
	_, rd, imm := DecodeUTypeInstruction(instruction)
	inst.regWrite(rd, imm<<12)
}

func (inst *EmulatorInstance) executeAUIPC(instruction uint32) {
	_, rd, imm := DecodeUTypeInstruction(instruction)
	inst.regWrite(rd, (imm<<12)+inst.pc)
}

func (inst *EmulatorInstance) executeJAL(instruction uint32) {
	_, rd, imm := DecodeJTypeInstruction(instruction)

	if rd != 0 {
		inst.regWrite(rd, inst.pc+4)
		if rd == 1 {
			inst.callStack = append(inst.callStack, inst.pc)
		}
	}

	inst.nextPC = uint32(int32(inst.pc) + signExtend(imm, 21))
}

func (inst *EmulatorInstance) executeJALR(instruction uint32) {
	_, rd, rs1, imm, _ := DecodeITypeInstruction(instruction)

	// read rs1 before rd is written, they may be the same register
	target := uint32(int32(inst.regRead(rs1))+signExtend(imm, 12)) & 0xFFFFFFFE

	if rs1 == 1 && rd == 0 {
		if len(inst.callStack) > 0 {
			inst.callStack = inst.callStack[:len(inst.callStack)-1]
		}
	} else if rd == 1 {
		inst.callStack = append(inst.callStack, inst.pc)
	}

	if rd != 0 {
		inst.regWrite(rd, inst.pc+4)
	}
	inst.nextPC = target
}

func (inst *EmulatorInstance) executeBType(instruction uint32) {
	_, rs1, rs2, imm, func3 := DecodeBTypeInstruction(instruction)
	a, b := inst.regRead(rs1), inst.regRead(rs2)

	var taken bool
	switch func3 {
	case 0b000:
		// BEQ
		taken = a == b
	case 0b001:
		// BNE
		taken = a != b
	case 0b100:
		// BLT
		taken = int32(a) < int32(b)
	case 0b101:
		// BGE
		taken = int32(a) >= int32(b)
	case 0b110:
		// BLTU
		taken = a < b
	case 0b111:
		// BGEU
		taken = a >= b
	default:
		inst.newUnsupportedInstructionException("B-Type", instruction)
		return
	}

	if taken {
		inst.nextPC = uint32(int32(inst.pc) + signExtend(imm, 13))
	}
}

func (inst *EmulatorInstance) executeMemIType(instruction uint32) {
	_, rd, rs1, imm, func3 := DecodeITypeInstruction(instruction)
	addr := uint32(int32(inst.regRead(rs1)) + signExtend(imm, 12))

	var value uint32
	switch func3 {
	case 0b000:
		// LB
		value = uint32(int8(inst.memReadByte(addr)))
	case 0b001:
		// LH
		value = uint32(int16(inst.memReadHalf(addr)))
	case 0b010:
		// LW
		value = inst.memReadWord(addr)
	case 0b100:
		// LBU
		value = inst.memReadByte(addr)
	case 0b101:
		// LHU
		value = inst.memReadHalf(addr)
	default:
		inst.newUnsupportedInstructionException("Mem I-Type", instruction)
		return
	}

	if inst.pending == nil {
		inst.regWrite(rd, value)
	}
}

func (inst *EmulatorInstance) executeIType(instruction uint32) {
	_, rd, rs1, imm, func3 := DecodeITypeInstruction(instruction)
	a := inst.regRead(rs1)
	immInt := signExtend(imm, 12)

	switch func3 {
	case 0b000:
		// ADDI
		inst.regWrite(rd, uint32(int32(a)+immInt))
	case 0b010:
		// SLTI
		inst.regWrite(rd, boolToWord(int32(a) < immInt))
	case 0b011:
		// SLTIU
		inst.regWrite(rd, boolToWord(a < uint32(immInt)))
	case 0b100:
		// XORI
		inst.regWrite(rd, a^uint32(immInt))
	case 0b110:
		// ORI
		inst.regWrite(rd, a|uint32(immInt))
	case 0b111:
		// ANDI
		inst.regWrite(rd, a&uint32(immInt))
	case 0b001:
		// SLLI
		inst.regWrite(rd, a<<(imm&0b11111))
	case 0b101:
		switch imm >> 5 {
		case 0b0000000:
			// SRLI
			inst.regWrite(rd, a>>(imm&0b11111))
		case 0b0100000:
			// SRAI
			inst.regWrite(rd, uint32(int32(a)>>(imm&0b11111)))
		default:
			inst.newUnsupportedInstructionException("I-Type", instruction)
		}
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (inst *EmulatorInstance) executeRType(instruction uint32) {
	_, rd, rs1, rs2, func7, func3 := DecodeRTypeInstruction(instruction)
	a, b := inst.regRead(rs1), inst.regRead(rs2)

	switch func7 {
	case 0b0000000, 0b0100000:
		switch func3 {
		case 0b000:
			if func7 == 0b0000000 {
				// ADD
				inst.regWrite(rd, a+b)
			} else {
				// SUB
				inst.regWrite(rd, a-b)
			}
		case 0b001:
			// SLL
			inst.regWrite(rd, a<<(b&0b11111))
		case 0b010:
			// SLT
			inst.regWrite(rd, boolToWord(int32(a) < int32(b)))
		case 0b011:
			// SLTU
			inst.regWrite(rd, boolToWord(a < b))
		case 0b100:
			// XOR
			inst.regWrite(rd, a^b)
		case 0b101:
			if func7 == 0b0000000 {
				// SRL
				inst.regWrite(rd, a>>(b&0b11111))
			} else {
				// SRA
				inst.regWrite(rd, uint32(int32(a)>>(b&0b11111)))
			}
		case 0b110:
			// OR
			inst.regWrite(rd, a|b)
		case 0b111:
			// AND
			inst.regWrite(rd, a&b)
		}
	case 0b0000001:
		switch func3 {
		case 0b000:
			// MUL
			inst.regWrite(rd, a*b)
		case 0b001:
			// MULH
			inst.regWrite(rd, uint32((int64(int32(a))*int64(int32(b)))>>32))
		case 0b010:
			// MULHSU
			inst.regWrite(rd, uint32((int64(int32(a))*int64(b))>>32))
		case 0b011:
			// MULHU
			inst.regWrite(rd, uint32((uint64(a)*uint64(b))>>32))
		case 0b100, 0b101, 0b110, 0b111:
			if b == 0 {
				inst.newException("divide by zero")
				return
			}
			switch func3 {
			case 0b100:
				// DIV
				inst.regWrite(rd, uint32(int32(a)/int32(b)))
			case 0b101:
				// DIVU
				inst.regWrite(rd, a/b)
			case 0b110:
				// REM
				inst.regWrite(rd, uint32(int32(a)%int32(b)))
			case 0b111:
				// REMU
				inst.regWrite(rd, a%b)
			}
		}
	default:
		inst.newUnsupportedInstructionException("R-Type", instruction)
	}
}

func (inst *EmulatorInstance) executeSType(instruction uint32) {
	_, rs1, rs2, imm, func3 := DecodeSTypeInstruction(instruction)
	addr := uint32(int32(inst.regRead(rs1)) + signExtend(imm, 12))
	value := inst.regRead(rs2)
	if inst.pending != nil {
		return
	}

	switch func3 {
	case 0b000:
		// SB
		inst.memWriteByte(addr, value)
	case 0b001:
		// SH
		inst.memWriteHalf(addr, value)
	case 0b010:
		// SW
		inst.memWriteWord(addr, value)
	default:
		inst.newUnsupportedInstructionException("S-Type", instruction)
	}
}

// Environment calls follow the Linux numbering, see
// https://marcin.juszkiewicz.com.pl/download/tables/syscalls.html
const (
	syscallWrite = 64
	syscallExit  = 93
	syscallSbrk  = 214
)

func (inst *EmulatorInstance) executeEnv(instruction uint32) {
	_, _, _, imm, func3 := DecodeITypeInstruction(instruction)
	if func3 != 0 {
		inst.newUnsupportedInstructionException("Env-Type", instruction)
		return
	}

	switch imm {
	case 0b000000000000:
		inst.executeEcall()
	case 0b000000000001:
		inst.newException("EBREAK instruction exception")
	default:
		inst.newUnsupportedInstructionException("Env-Type", instruction)
	}
}

func (inst *EmulatorInstance) executeEcall() {
	switch inst.registers[17] {
	case syscallExit:
		inst.exitCode = int(int32(inst.registers[10]))
		inst.halted = true
	case syscallWrite:
		// a0 is the file descriptor, a1 the buffer and a2 its length
		buf, length := inst.registers[11], inst.registers[12]
		written := uint32(0)
		for ; written < length; written++ {
			b := inst.memReadByte(buf + written)
			if inst.pending != nil {
				return
			}
			if inst.stdOutCallback != nil {
				inst.stdOutCallback(byte(b))
			}
		}
		inst.regWrite(10, written)
	case syscallSbrk:
		// a0 is the increment, the old break is returned in a0
		old := inst.heapPointer
		inst.heapPointer = uint32(int32(inst.heapPointer) + int32(inst.registers[10]))
		inst.regWrite(10, old)
	default:
		inst.newException("Unsupported ECALL %d", inst.registers[17])
	}
}
