package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosInstRetired marks an instruction that completed. The hook item is
// an InstRecord.
var HookPosInstRetired = &sim.HookPos{Name: "Inst Retired"}

// HookPosFault marks an instruction that faulted. The hook item is the
// *Fault.
var HookPosFault = &sim.HookPos{Name: "Inst Fault"}

// HaltReason tells why a core stopped fetching.
type HaltReason int

const (
	Running HaltReason = iota
	HaltEndOfText
	HaltFault
	HaltInstLimit
)

func (r HaltReason) String() string {
	switch r {
	case Running:
		return "running"
	case HaltEndOfText:
		return "end-of-text"
	case HaltFault:
		return "fault"
	case HaltInstLimit:
		return "instruction-limit"
	default:
		return fmt.Sprintf("HaltReason(%d)", int(r))
	}
}

// InstRecord describes one retired instruction.
type InstRecord struct {
	PC     uint32
	Word   uint32
	Inst   string
	NextPC uint32
}

// Core is one execution context: a register file, a memory and a PC,
// fetching from its own memory and running every word through a shared
// Emulator, one instruction per cycle.
type Core struct {
	*sim.TickingComponent

	state coreState
	emu   *Emulator
}

type coreState struct {
	PC       uint32
	TextBase uint32
	TextEnd  uint32

	Regs   *RegisterFile
	Memory *Memory

	Retired  uint64
	MaxInsts uint64
	Halt     HaltReason
	Fault    *Fault
}

// pcHandle is the PC as seen by one instruction. Current is already the
// sequential successor, as on MIPS.
type pcHandle struct {
	next   uint32
	target uint32
	jumped bool
}

func (p *pcHandle) Current() uint32 {
	return p.next
}

func (p *pcHandle) SetTarget(addr uint32) {
	p.target = addr
	p.jumped = true
}

func (p *pcHandle) resolve() uint32 {
	if p.jumped {
		return p.target
	}

	return p.next
}

func (c *Core) PC() uint32 { return c.state.PC }
func (c *Core) Registers() *RegisterFile { return c.state.Regs }
func (c *Core) Memory() *Memory { return c.state.Memory }
func (c *Core) Emulator() *Emulator { return c.emu }
func (c *Core) Retired() uint64 { return c.state.Retired }
func (c *Core) HaltReason() HaltReason { return c.state.Halt }
func (c *Core) Halted() bool { return c.state.Halt != Running }
func (c *Core) Fault() *Fault { return c.state.Fault }
func (c *Core) SetMaxInstructions(n uint64) { c.state.MaxInsts = n }

// MapProgram loads the image into the core's memory, points the PC at the
// entry and schedules the first tick.
func (c *Core) MapProgram(img Image) error {
	if err := img.validate(); err != nil {
		return err
	}

	if err := c.state.Memory.LoadWords(img.DataBase, img.Data); err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	for i, w := range img.Text {
		if err := c.state.Memory.WriteWord(img.TextBase+uint32(4*i), int32(w)); err != nil {
			return fmt.Errorf("load text: %w", err)
		}
	}

	c.state.PC = img.Entry
	c.state.TextBase = img.TextBase
	c.state.TextEnd = img.TextEnd()
	c.state.Retired = 0
	c.state.Halt = Running
	c.state.Fault = nil

	Trace("Program",
		"Behavior", "MapProgram",
		"Core", c.Name(),
		"Entry", fmt.Sprintf("0x%08x", img.Entry),
		"Words", len(img.Text),
	)

	c.TickNow()

	return nil
}

// Tick runs one instruction.
func (c *Core) Tick() (madeProgress bool) {
	if c.Halted() {
		return false
	}

	if c.state.PC < c.state.TextBase || c.state.PC >= c.state.TextEnd {
		c.halt(HaltEndOfText)
		return false
	}

	if c.state.MaxInsts > 0 && c.state.Retired >= c.state.MaxInsts {
		c.halt(HaltInstLimit)
		return false
	}

	return c.step()
}

func (c *Core) step() bool {
	pc := c.state.PC

	word, err := c.state.Memory.ReadWord(pc)
	if err != nil {
		c.fault(&Fault{Kind: FaultAddress, PC: pc, Err: err})
		return false
	}

	spec, err := c.emu.Lookup(uint32(word))
	if err != nil {
		c.fault(asFault(err, pc))
		return false
	}

	handle := &pcHandle{next: pc + 4}

	err = c.emu.Dispatch(spec, uint32(word), c.state.Regs, c.state.Memory, handle)
	if err != nil {
		c.fault(asFault(err, pc))
		return false
	}

	c.state.PC = handle.resolve()
	c.state.Retired++

	rec := InstRecord{
		PC:     pc,
		Word:   uint32(word),
		Inst:   c.emu.Catalog().DisassembleWord(uint32(word)),
		NextPC: c.state.PC,
	}

	Trace("Inst",
		"Behavior", "Retire",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"PC", fmt.Sprintf("0x%08x", pc),
		"Inst", rec.Inst,
		"NextPC", fmt.Sprintf("0x%08x", rec.NextPC),
	)

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosInstRetired,
		Item:   rec,
	})

	return true
}

func asFault(err error, pc uint32) *Fault {
	var f *Fault
	if !errors.As(err, &f) {
		f = &Fault{Kind: FaultAddress, Err: err}
	}

	f.PC = pc

	return f
}

func (c *Core) fault(f *Fault) {
	c.state.Fault = f

	Trace("Inst",
		"Behavior", "Fault",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"PC", fmt.Sprintf("0x%08x", f.PC),
		"Kind", f.Kind.String(),
		"Error", f.Error(),
	)

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosFault,
		Item:   f,
	})

	c.halt(HaltFault)
}

func (c *Core) halt(reason HaltReason) {
	c.state.Halt = reason

	Trace("Core",
		"Behavior", "Halt",
		"Core", c.Name(),
		"Reason", reason.String(),
		"Retired", c.state.Retired,
	)
}
