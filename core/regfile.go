package core

import "github.com/sarchlab/craftsim/instr"

// RegisterFile is a plain 32-entry register file. Register 0 always reads
// as zero; writes to it are dropped.
type RegisterFile struct {
	regs [instr.NumRegisters]int32
}

func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

func (r *RegisterFile) Get(index int) int32 {
	if index <= 0 || index >= instr.NumRegisters {
		return 0
	}

	return r.regs[index]
}

func (r *RegisterFile) Set(index int, value int32) {
	if index <= 0 || index >= instr.NumRegisters {
		return
	}

	r.regs[index] = value
}

// Snapshot copies out all registers.
func (r *RegisterFile) Snapshot() [instr.NumRegisters]int32 {
	return r.regs
}

// Reset zeroes every register.
func (r *RegisterFile) Reset() {
	r.regs = [instr.NumRegisters]int32{}
}
