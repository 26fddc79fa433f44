package instr

import (
	"fmt"
	"sync"
)

// RegisterFile is the host's 32-entry general purpose register file.
type RegisterFile interface {
	Get(index int) int32
	Set(index int, value int32)
}

// Memory is the host's byte-addressed memory, accessed a word at a time.
// Implementations report misaligned or unmapped addresses as errors,
// preferably as *AddressError.
type Memory interface {
	ReadWord(addr uint32) (int32, error)
	WriteWord(addr uint32, value int32) error
}

// ProgramCounter exposes the PC of the running context. Current returns
// the address the host will fetch next unless SetTarget is called.
type ProgramCounter interface {
	Current() uint32
	SetTarget(addr uint32)
}

// AddressError is an addressing fault raised by a Memory.
type AddressError struct {
	Addr   uint32
	Reason string
	Err    error
}

func (e *AddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("address 0x%08x: %s: %v", e.Addr, e.Reason, e.Err)
	}

	return fmt.Sprintf("address 0x%08x: %s", e.Addr, e.Reason)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// Counter is the summon counter. It is the only mutable state the
// instruction set carries outside registers and memory.
type Counter struct {
	mu    sync.Mutex
	value int32
}

// Increment bumps the counter and returns the new value.
func (c *Counter) Increment() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value++

	return c.value
}

// Reset sets the counter back to zero.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.value = 0
	c.mu.Unlock()
}

// Value returns the current count.
func (c *Counter) Value() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.value
}

// Env carries the collaborators a behavior may touch.
type Env struct {
	Regs    RegisterFile
	Mem     Memory
	PC      ProgramCounter
	Counter *Counter
}
