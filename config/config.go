// Package config assembles cores into platforms.
package config

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
)

// PlatformBuilder can build platforms.
type PlatformBuilder struct {
	engine        sim.Engine
	freq          sim.Freq
	catalog       *instr.Catalog
	monitor       *monitoring.Monitor
	numCores      int
	memSize       uint64
	maxInsts      uint64
	sharedCounter bool
}

func NewPlatformBuilder() PlatformBuilder {
	return PlatformBuilder{
		freq:          1 * sim.GHz,
		numCores:      1,
		memSize:       64 * mem.KB,
		sharedCounter: true,
	}
}

// WithEngine sets the engine that drives the platform simulation.
func (b PlatformBuilder) WithEngine(engine sim.Engine) PlatformBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of every core.
func (b PlatformBuilder) WithFreq(freq sim.Freq) PlatformBuilder {
	b.freq = freq
	return b
}

// WithMonitor sets the monitor that watches every core.
func (b PlatformBuilder) WithMonitor(monitor *monitoring.Monitor) PlatformBuilder {
	b.monitor = monitor
	return b
}

// WithCatalog sets the instruction set. The default is core.NewCatalog.
func (b PlatformBuilder) WithCatalog(catalog *instr.Catalog) PlatformBuilder {
	b.catalog = catalog
	return b
}

// WithNumCores sets how many cores the platform has.
func (b PlatformBuilder) WithNumCores(n int) PlatformBuilder {
	if n < 1 {
		panic("platform needs at least one core")
	}
	b.numCores = n
	return b
}

// WithMemorySize sets the bytes of memory per core.
func (b PlatformBuilder) WithMemorySize(size uint64) PlatformBuilder {
	b.memSize = size
	return b
}

// WithMaxInstructions limits how many instructions each core retires.
func (b PlatformBuilder) WithMaxInstructions(n uint64) PlatformBuilder {
	b.maxInsts = n
	return b
}

// WithSharedCounter decides whether all cores share one summon counter
// or each core counts on its own.
func (b PlatformBuilder) WithSharedCounter(shared bool) PlatformBuilder {
	b.sharedCounter = shared
	return b
}

// Build creates a platform.
func (b PlatformBuilder) Build(name string) *Platform {
	if b.engine == nil {
		panic("platform needs an engine")
	}

	catalog := b.catalog
	if catalog == nil {
		catalog = core.MustNewCatalog()
	}

	p := &Platform{
		Name:    name,
		Engine:  b.engine,
		Catalog: catalog,
		Cores:   make([]*core.Core, b.numCores),
	}

	shared := core.NewEmulator(catalog)

	for i := range p.Cores {
		emu := shared
		if !b.sharedCounter {
			emu = core.NewEmulator(catalog)
		}

		p.Cores[i] = core.NewBuilder().
			WithEngine(b.engine).
			WithFreq(b.freq).
			WithEmulator(emu).
			WithMemorySize(b.memSize).
			WithMaxInstructions(b.maxInsts).
			Build(fmt.Sprintf("%s.Core[%d]", name, i))

		if b.monitor != nil {
			b.monitor.RegisterComponent(p.Cores[i])
		}
	}

	return p
}
