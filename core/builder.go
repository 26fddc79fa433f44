package core

import (
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	emu      *Emulator
	memSize  uint64
	maxInsts uint64
}

func NewBuilder() Builder {
	return Builder{
		freq:    1 * sim.GHz,
		memSize: 64 * mem.KB,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithEmulator sets the execution unit. Cores built with the same
// Emulator share its summon counter.
func (b Builder) WithEmulator(emu *Emulator) Builder {
	b.emu = emu
	return b
}

// WithMemorySize sets the bytes of memory each core owns.
func (b Builder) WithMemorySize(size uint64) Builder {
	if size < 4 {
		panic("memory must hold at least one word")
	}
	b.memSize = size
	return b
}

// WithMaxInstructions stops the core after n instructions. Zero means no
// limit.
func (b Builder) WithMaxInstructions(n uint64) Builder {
	b.maxInsts = n
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.engine == nil {
		panic("core needs an engine")
	}

	emu := b.emu
	if emu == nil {
		emu = NewEmulator(MustNewCatalog())
	}

	c := &Core{emu: emu}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.state = coreState{
		Regs:     NewRegisterFile(),
		Memory:   NewMemory(b.memSize),
		MaxInsts: b.maxInsts,
	}

	return c
}
