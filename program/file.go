package program

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
)

// File is the YAML form of a program.
//
//	name: summon-twice
//	text_base: 0x3000
//	source: |
//	  summon $t0, $zero
//	data:
//	  - address: 0x100
//	    words: [1, 2]
//	expect:
//	  registers: {$t0: 1}
type File struct {
	Name     string        `yaml:"name"`
	TextBase *uint32       `yaml:"text_base"`
	DataBase *uint32       `yaml:"data_base"`
	Source   string        `yaml:"source"`
	Data     []MemoryWords `yaml:"data"`
	Expect   Expectation   `yaml:"expect"`
}

// Expectation is the state a program should leave behind.
type Expectation struct {
	Registers map[string]int32 `yaml:"registers"`
	Memory    []MemoryWords    `yaml:"memory"`
	Fault     string           `yaml:"fault"`
	Counter   *int32           `yaml:"counter"`
}

// MemoryWords are consecutive words starting at Address.
type MemoryWords struct {
	Address uint32  `yaml:"address"`
	Words   []int32 `yaml:"words"`
}

// LoadFile reads and assembles a YAML program file.
func LoadFile(path string, catalog *instr.Catalog) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p, err := Parse(data, catalog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Parse assembles a YAML program document.
func Parse(data []byte, catalog *instr.Catalog) (*Program, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Expect.Fault != "" {
		if _, err := core.ParseFaultKind(f.Expect.Fault); err != nil {
			return nil, err
		}
	}

	asm := NewAssembler(catalog)
	if f.TextBase != nil {
		asm = asm.WithTextBase(*f.TextBase)
	}
	if f.DataBase != nil {
		asm = asm.WithDataBase(*f.DataBase)
	}

	p, err := asm.Assemble(f.Source)
	if err != nil {
		return nil, err
	}

	p.Name = f.Name
	p.Preloads = f.Data
	p.Expect = f.Expect

	return p, nil
}

// Check compares a halted core against the expectation and returns one
// message per mismatch.
func (e Expectation) Check(c *core.Core) []string {
	var out []string

	for name, want := range e.Registers {
		idx, err := instr.RegisterIndex(name)
		if err != nil {
			out = append(out, err.Error())
			continue
		}

		if got := c.Registers().Get(idx); got != want {
			out = append(out, fmt.Sprintf("register %s = %d, want %d", name, got, want))
		}
	}

	for _, m := range e.Memory {
		for i, want := range m.Words {
			addr := m.Address + uint32(4*i)

			got, err := c.Memory().ReadWord(addr)
			if err != nil {
				out = append(out, err.Error())
				continue
			}

			if got != want {
				out = append(out, fmt.Sprintf("memory 0x%08x = %d, want %d", addr, got, want))
			}
		}
	}

	out = append(out, e.checkFault(c.Fault())...)

	if e.Counter != nil {
		if got := c.Emulator().Counter().Value(); got != *e.Counter {
			out = append(out, fmt.Sprintf("counter = %d, want %d", got, *e.Counter))
		}
	}

	return out
}

func (e Expectation) checkFault(f *core.Fault) []string {
	switch {
	case e.Fault == "" && f != nil:
		return []string{fmt.Sprintf("unexpected fault: %v", f)}
	case e.Fault != "" && f == nil:
		return []string{fmt.Sprintf("expected %s fault, ran clean", e.Fault)}
	case e.Fault != "" && f.Kind.String() != e.Fault:
		return []string{fmt.Sprintf("fault %s, want %s", f.Kind, e.Fault)}
	}

	return nil
}
