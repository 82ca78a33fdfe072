package emulator

type MemoryPage struct {
	Block       [1024]uint32
	StartAddr   uint32
	Initialized [1024]bool
}

type MemoryImage struct {
	Blocks map[uint32]*MemoryPage
}

type EmulatorConfig struct {
	GlobalDataAddress    uint32
	StackStartAddress    uint32
	HeapStartAddress     uint32
	Memory               *MemoryImage
	RuntimeLimit         uint32 // 0 means unlimited
	RuntimeErrorCallback func(*RuntimeException)
	StdOutCallback       func(byte)
}

// RuntimeException is raised by the program being emulated, e.g. a load from
// uninitialized memory. The registers and call stack are copies taken at the
// faulting instruction.
type RuntimeException struct {
	Registers [32]uint32
	PC        uint32
	CallStack []uint32
	Message   string
}

type EmulatorInstance struct {
	registers    [32]uint32
	memory       *MemoryImage
	pc           uint32
	nextPC       uint32
	regInit      uint32
	runtimeLimit uint32
	exitCode     int
	heapPointer  uint32

	// statistics
	di       uint32
	memUsage uint32
	regUsage uint32
	errors   []*RuntimeException

	// debugging
	callStack            []uint32
	pending              *RuntimeException // raised by the instruction being executed
	halted               bool
	terminated           bool
	stdOutCallback       func(byte)
	runtimeErrorCallback func(*RuntimeException)
}
