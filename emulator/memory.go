package emulator

import "fmt"

// MemoryFault is returned when a debugger read touches memory the program
// never wrote.
type MemoryFault struct {
	Address uint32
}

func (e *MemoryFault) Error() string {
	return fmt.Sprintf("memory at 0x%08X is not initialized", e.Address)
}

func NewMemoryImage() *MemoryImage {
	return &MemoryImage{Blocks: map[uint32]*MemoryPage{}}
}

func (m *MemoryImage) getOrCreatePage(addr uint32) *MemoryPage {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		page = &MemoryPage{Block: [1024]uint32{}, StartAddr: addr & 0xFFFFF000}
		m.Blocks[addr>>12] = page
	}
	return page
}

func (m *MemoryImage) WriteWord(addr uint32, value uint32) {
	page := m.getOrCreatePage(addr)
	page.Block[(addr&0xFFF)>>2] = value
	page.Initialized[(addr&0xFFF)>>2] = true
}

func (m *MemoryImage) WriteHalfWord(addr uint32, value uint16) {
	page := m.getOrCreatePage(addr)
	shift := (addr & 0x2) * 8
	page.Block[(addr&0xFFF)>>2] = (page.Block[(addr&0xFFF)>>2] & ^(0xFFFF << shift)) | (uint32(value) << shift)
	page.Initialized[(addr&0xFFF)>>2] = true
}

func (m *MemoryImage) WriteByte(addr uint32, value byte) {
	page := m.getOrCreatePage(addr)
	shift := (addr & 0x3) * 8
	page.Block[(addr&0xFFF)>>2] = (page.Block[(addr&0xFFF)>>2] & ^(0xFF << shift)) | (uint32(value) << shift)
	page.Initialized[(addr&0xFFF)>>2] = true
}

// ReadWord reads the aligned word containing addr. The bool is false if the
// word was never written.
func (m *MemoryImage) ReadWord(addr uint32) (uint32, bool) {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		return 0, false
	}
	return page.Block[(addr&0xFFF)>>2], page.Initialized[(addr&0xFFF)>>2]
}

func (m *MemoryImage) ReadByte(addr uint32) (byte, bool) {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		return 0, false
	}
	return byte((page.Block[(addr&0xFFF)>>2] >> ((addr & 0x3) * 8)) & 0xFF), page.Initialized[(addr&0xFFF)>>2]
}

func (m *MemoryImage) ReadHalfWord(addr uint32) (uint16, bool) {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		return 0, false
	}
	return uint16((page.Block[(addr&0xFFF)>>2] >> ((addr & 0x2) * 8)) & 0xFFFF), page.Initialized[(addr&0xFFF)>>2]
}

// ReadMemoryU32 reads four bytes at addr as a little-endian word. Unaligned
// addresses are allowed and the address wraps at the top of memory.
func (m *MemoryImage) ReadMemoryU32(addr uint32) (uint32, error) {
	if addr&0x3 == 0 {
		value, ok := m.ReadWord(addr)
		if !ok {
			return 0, &MemoryFault{Address: addr}
		}
		return value, nil
	}

	value := uint32(0)
	for i := uint32(0); i < 4; i++ {
		b, ok := m.ReadByte(addr + i)
		if !ok {
			return 0, &MemoryFault{Address: addr + i}
		}
		value |= uint32(b) << (i * 8)
	}
	return value, nil
}

func (inst *EmulatorInstance) memReadByte(addr uint32) uint32 {
	value, ok := inst.memory.ReadByte(addr)
	if !ok {
		inst.newMemoryAccessedBeforeInitializedException(addr)
		return 0
	}
	return uint32(value)
}

func (inst *EmulatorInstance) memReadHalf(addr uint32) uint32 {
	if addr&0x1 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "halfword")
		return 0
	}

	value, ok := inst.memory.ReadHalfWord(addr)
	if !ok {
		inst.newMemoryAccessedBeforeInitializedException(addr)
		return 0
	}
	return uint32(value)
}

func (inst *EmulatorInstance) memReadWord(addr uint32) uint32 {
	if addr&0x3 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "word")
		return 0
	}

	value, ok := inst.memory.ReadWord(addr)
	if !ok {
		inst.newMemoryAccessedBeforeInitializedException(addr)
		return 0
	}
	return value
}

// countWrite tracks how many distinct words the program has touched.
func (inst *EmulatorInstance) countWrite(addr uint32) {
	if _, ok := inst.memory.ReadWord(addr); !ok {
		inst.memUsage++
	}
}

func (inst *EmulatorInstance) memWriteByte(addr, value uint32) {
	inst.countWrite(addr)
	inst.memory.WriteByte(addr, byte(value))
}

func (inst *EmulatorInstance) memWriteHalf(addr, value uint32) {
	if addr&0x1 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "halfword")
		return
	}
	inst.countWrite(addr)
	inst.memory.WriteHalfWord(addr, uint16(value))
}

func (inst *EmulatorInstance) memWriteWord(addr, value uint32) {
	if addr&0x3 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "word")
		return
	}
	inst.countWrite(addr)
	inst.memory.WriteWord(addr, value)
}

// ReadMemoryU32 reads the instance's memory for the debugger without raising
// a runtime exception.
func (inst *EmulatorInstance) ReadMemoryU32(addr uint32) (uint32, error) {
	return inst.memory.ReadMemoryU32(addr)
}

func (inst *EmulatorInstance) Memory() *MemoryImage {
	return inst.memory
}
