package instr

import (
	"fmt"
	"strconv"
	"strings"
)

// NumRegisters is the size of the general purpose register file.
const NumRegisters = 32

var registerNames = [NumRegisters]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var registerIndex = func() map[string]int {
	m := make(map[string]int, NumRegisters+1)
	for i, n := range registerNames {
		m[n] = i
	}
	m["s8"] = 30

	return m
}()

// RegisterName returns the conventional name of a register, with the
// leading '$'.
func RegisterName(index int) string {
	if index < 0 || index >= NumRegisters {
		return fmt.Sprintf("$?%d", index)
	}

	return "$" + registerNames[index]
}

// RegisterIndex parses "$t0", "$8" or "t0".
func RegisterIndex(name string) (int, error) {
	n := strings.TrimPrefix(strings.TrimSpace(name), "$")

	if i, ok := registerIndex[n]; ok {
		return i, nil
	}

	if i, err := strconv.Atoi(n); err == nil && i >= 0 && i < NumRegisters {
		return i, nil
	}

	return 0, fmt.Errorf("unknown register %q", name)
}
