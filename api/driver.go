// Package api defines the driver API for running programs on a platform.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/craftsim/config"
	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/program"
)

var (
	ErrNoPlatform = errors.New("no platform registered")
	ErrCoreBusy   = errors.New("core already has a program")
	ErrMismatch   = errors.New("program missed its expectation")
)

// Driver provides the interface to control a platform.
type Driver interface {
	// RegisterPlatform registers the platform whose cores the driver
	// drives. The driver hooks every core to watch retirements and faults.
	RegisterPlatform(p *config.Platform)

	// MapProgram maps the program to the core with the given index.
	MapProgram(p *program.Program, core int) error

	// PreloadMemory writes words into a core's memory before the run. It
	// is applied after the program and its own preloads.
	PreloadMemory(core int, addr uint32, words []int32) error

	// Run runs the engine until every mapped core halts and reports one
	// result per mapped core, ordered by core index.
	Run() ([]Result, error)
}

// Result is how one core finished.
type Result struct {
	Index      int
	Core       string
	Program    string
	Retired    uint64
	Halt       core.HaltReason
	Fault      *core.Fault
	Mismatches []string
}

// Passed reports whether the program met its expectation.
func (r Result) Passed() bool {
	return len(r.Mismatches) == 0
}

type preload struct {
	addr  uint32
	words []int32
}

type mapTask struct {
	program  *program.Program
	preloads []preload
}

type driverImpl struct {
	name       string
	platform   *config.Platform
	stateOut   io.Writer
	failOnMiss bool

	tasks map[int]*mapTask

	mu      sync.Mutex
	retired map[string]uint64
	faults  []*core.Fault
}

func (d *driverImpl) RegisterPlatform(p *config.Platform) {
	d.platform = p

	for _, c := range p.Cores {
		c.AcceptHook(d)
	}
}

func (d *driverImpl) MapProgram(p *program.Program, index int) error {
	if _, err := d.core(index); err != nil {
		return err
	}

	if t, ok := d.tasks[index]; ok && t.program != nil {
		return fmt.Errorf("%w: core %d runs %q", ErrCoreBusy, index, t.program.Name)
	}

	d.task(index).program = p

	return nil
}

func (d *driverImpl) PreloadMemory(index int, addr uint32, words []int32) error {
	if _, err := d.core(index); err != nil {
		return err
	}

	t := d.task(index)
	t.preloads = append(t.preloads, preload{addr: addr, words: words})

	return nil
}

func (d *driverImpl) Run() ([]Result, error) {
	if d.platform == nil {
		return nil, ErrNoPlatform
	}

	indices := d.mappedCores()
	for _, i := range indices {
		if err := d.load(i); err != nil {
			return nil, err
		}
	}

	if err := d.platform.Engine.Run(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(indices))
	failed := false

	for _, i := range indices {
		r := d.collect(i)
		failed = failed || !r.Passed()
		results = append(results, r)
	}

	if failed && d.failOnMiss {
		return results, ErrMismatch
	}

	return results, nil
}

// Func receives the hooks of every registered core.
func (d *driverImpl) Func(ctx sim.HookCtx) {
	c, ok := ctx.Domain.(*core.Core)
	if !ok {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch ctx.Pos {
	case core.HookPosInstRetired:
		d.retired[c.Name()]++
	case core.HookPosFault:
		f := ctx.Item.(*core.Fault)
		d.faults = append(d.faults, f)

		slog.Warn("Fault",
			"Driver", d.name,
			"Core", c.Name(),
			"Kind", f.Kind.String(),
			"PC", fmt.Sprintf("0x%08x", f.PC),
			"Error", f.Error(),
		)
	}
}

// Faults returns every fault observed so far, in arrival order.
func (d *driverImpl) Faults() []*core.Fault {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*core.Fault(nil), d.faults...)
}

func (d *driverImpl) core(index int) (*core.Core, error) {
	if d.platform == nil {
		return nil, ErrNoPlatform
	}

	return d.platform.GetCore(index)
}

func (d *driverImpl) task(index int) *mapTask {
	t, ok := d.tasks[index]
	if !ok {
		t = &mapTask{}
		d.tasks[index] = t
	}

	return t
}

func (d *driverImpl) mappedCores() []int {
	var indices []int

	for i, t := range d.tasks {
		if t.program != nil {
			indices = append(indices, i)
		}
	}

	sort.Ints(indices)

	return indices
}

func (d *driverImpl) load(index int) error {
	c := d.platform.Cores[index]
	t := d.tasks[index]

	if err := t.program.Load(c); err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}

	for _, p := range t.preloads {
		if err := c.Memory().LoadWords(p.addr, p.words); err != nil {
			return fmt.Errorf("%s: preload: %w", c.Name(), err)
		}
	}

	return nil
}

func (d *driverImpl) collect(index int) Result {
	c := d.platform.Cores[index]
	p := d.tasks[index].program

	d.mu.Lock()
	retired := d.retired[c.Name()]
	d.mu.Unlock()

	r := Result{
		Index:      index,
		Core:       c.Name(),
		Program:    p.Name,
		Retired:    retired,
		Halt:       c.HaltReason(),
		Fault:      c.Fault(),
		Mismatches: p.Expect.Check(c),
	}

	if d.stateOut != nil {
		core.PrintState(d.stateOut, c)
	}

	core.LogState(c)

	return r
}
