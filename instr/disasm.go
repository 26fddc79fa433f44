package instr

import (
	"fmt"
	"strings"
)

// Disassemble renders a word the way it would be written in assembly.
// Jump targets are shown as the 28-bit byte offset they encode.
func Disassemble(spec *Spec, word uint32) string {
	ops := spec.Decode(word)
	if len(spec.kinds) == 0 {
		return spec.Mnemonic
	}

	parts := make([]string, 0, len(spec.kinds))
	slot := 0

	for _, k := range spec.kinds {
		switch k {
		case KindRegister:
			parts = append(parts, RegisterName(int(ops[slot])))
			slot++
		case KindImmediate:
			parts = append(parts, fmt.Sprintf("%d", ops[slot]))
			slot++
		case KindMemory:
			parts = append(parts, fmt.Sprintf("%d(%s)", ops[slot+1], RegisterName(int(ops[slot]))))
			slot += 2
		case KindTarget:
			parts = append(parts, fmt.Sprintf("0x%08x", uint32(ops[slot])<<2))
			slot++
		}
	}

	return spec.Mnemonic + " " + strings.Join(parts, ",")
}

// DisassembleWord looks the word up first. Unknown words render as data.
func (c *Catalog) DisassembleWord(word uint32) string {
	s, err := c.Lookup(word)
	if err != nil {
		return fmt.Sprintf(".word 0x%08x", word)
	}

	return Disassemble(s, word)
}
