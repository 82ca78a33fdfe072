package emulator

import (
	"fmt"
	"sort"
)

// SymbolTable maps program symbols to their addresses.
type SymbolTable map[string]uint32

type UnknownSymbolError struct {
	Name string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("no symbol named %q", e.Name)
}

func (s SymbolTable) ResolveSymbol(name string) (uint32, error) {
	addr, ok := s[name]
	if !ok {
		return 0, &UnknownSymbolError{Name: name}
	}
	return addr, nil
}

// Locate names addr as the closest symbol at or below it plus an offset, e.g.
// "main+8". It returns an empty string if no symbol precedes addr.
func (s SymbolTable) Locate(addr uint32) string {
	best := ""
	bestAddr := uint32(0)
	for name, symAddr := range s {
		if symAddr > addr {
			continue
		}
		if best == "" || symAddr > bestAddr || (symAddr == bestAddr && name < best) {
			best = name
			bestAddr = symAddr
		}
	}
	if best == "" {
		return ""
	}
	if addr == bestAddr {
		return best
	}
	return fmt.Sprintf("%s+%d", best, addr-bestAddr)
}

// Names returns the symbol names in address order.
func (s SymbolTable) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s[names[i]] != s[names[j]] {
			return s[names[i]] < s[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
