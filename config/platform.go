package config

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
)

// A Platform is a set of cores driven by one engine. Every core has its
// own registers, memory and PC; all of them decode against one catalog.
type Platform struct {
	Name    string
	Engine  sim.Engine
	Catalog *instr.Catalog
	Cores   []*core.Core
}

// NumCores returns the number of cores.
func (p *Platform) NumCores() int {
	return len(p.Cores)
}

// GetCore returns the core with the given index.
func (p *Platform) GetCore(i int) (*core.Core, error) {
	if i < 0 || i >= len(p.Cores) {
		return nil, fmt.Errorf("platform %s has no core %d", p.Name, i)
	}

	return p.Cores[i], nil
}
