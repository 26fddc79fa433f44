package core

import (
	"encoding/binary"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/craftsim/instr"
)

// Memory is a word view over an akita storage, little-endian, starting at
// address 0.
type Memory struct {
	storage  *mem.Storage
	capacity uint64
}

// NewMemory allocates capacity bytes. The capacity is rounded down to a
// whole number of words.
func NewMemory(capacity uint64) *Memory {
	capacity &^= 3

	return &Memory{
		storage:  mem.NewStorage(capacity),
		capacity: capacity,
	}
}

func (m *Memory) Capacity() uint64 {
	return m.capacity
}

func (m *Memory) check(addr uint32) error {
	if addr%4 != 0 {
		return &instr.AddressError{Addr: addr, Reason: "misaligned word access"}
	}

	if uint64(addr)+4 > m.capacity {
		return &instr.AddressError{Addr: addr, Reason: "outside memory"}
	}

	return nil
}

func (m *Memory) ReadWord(addr uint32) (int32, error) {
	if err := m.check(addr); err != nil {
		return 0, err
	}

	data, err := m.storage.Read(uint64(addr), 4)
	if err != nil {
		return 0, &instr.AddressError{Addr: addr, Reason: "read failed", Err: err}
	}

	return int32(binary.LittleEndian.Uint32(data)), nil
}

func (m *Memory) WriteWord(addr uint32, value int32) error {
	if err := m.check(addr); err != nil {
		return err
	}

	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(value))

	if err := m.storage.Write(uint64(addr), data); err != nil {
		return &instr.AddressError{Addr: addr, Reason: "write failed", Err: err}
	}

	return nil
}

// LoadWords writes consecutive words starting at base.
func (m *Memory) LoadWords(base uint32, words []int32) error {
	for i, w := range words {
		if err := m.WriteWord(base+uint32(4*i), w); err != nil {
			return err
		}
	}

	return nil
}

// DumpWords reads n consecutive words starting at base.
func (m *Memory) DumpWords(base uint32, n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := m.ReadWord(base + uint32(4*i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}
