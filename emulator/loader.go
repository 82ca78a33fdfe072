package emulator

import (
	"debug/elf"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

// Program is an ELF executable loaded into a fresh emulator.
type Program struct {
	Emulator *EmulatorInstance
	Symbols  SymbolTable
	Entry    uint32
}

// LoadELF loads the allocated sections of a 32-bit RISC-V executable into
// memory and collects its function and object symbols. The program counter
// is set to the entry point. config.Memory and config.GlobalDataAddress are
// replaced.
func LoadELF(path string, config EmulatorConfig) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open elf file %s: %w", path, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 || f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%s is not a 32-bit RISC-V executable (%v, %v)", path, f.Class, f.Machine)
	}

	memoryImage := NewMemoryImage()
	for _, section := range f.Sections {
		if section.Flags&elf.SHF_ALLOC == 0 || section.Addr == 0 {
			continue
		}

		if section.Type == elf.SHT_NOBITS {
			// .bss and friends start zeroed
			for i := uint64(0); i < section.Size; i++ {
				memoryImage.WriteByte(uint32(section.Addr+i), 0)
			}
			continue
		}

		b, err := section.Data()
		if err != nil {
			return nil, fmt.Errorf("could not read section %s: %w", section.Name, err)
		}
		for i, v := range b {
			memoryImage.WriteByte(uint32(section.Addr)+uint32(i), v)
		}
	}

	symbols := SymbolTable{}
	elfSymbols, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("could not read symbols: %w", err)
	}
	for _, symbol := range elfSymbols {
		if symbol.Name == "" {
			continue
		}
		switch elf.ST_TYPE(symbol.Info) {
		case elf.STT_FUNC, elf.STT_OBJECT, elf.STT_NOTYPE:
			symbols[symbol.Name] = uint32(symbol.Value)
		}
	}

	config.Memory = memoryImage
	if gp, ok := symbols["__global_pointer$"]; ok {
		config.GlobalDataAddress = gp
	}

	entry := uint32(f.Entry)
	if start, ok := symbols["_start"]; ok && entry == 0 {
		entry = start
	}

	inst := NewEmulator(config)
	inst.SetPC(entry)

	util.L().Info("loaded elf",
		zap.String("path", path),
		zap.Uint32("entry", entry),
		zap.Int("symbols", len(symbols)),
		zap.Int("pages", len(memoryImage.Blocks)))

	return &Program{Emulator: inst, Symbols: symbols, Entry: entry}, nil
}
