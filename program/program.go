package program

import (
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
)

// Line maps a text address back to its source line.
type Line struct {
	Addr   uint32
	Line   int
	Source string
}

// Program is an assembled program.
type Program struct {
	Name     string
	Entry    uint32
	TextBase uint32
	DataBase uint32
	Text     []uint32
	Data     []int32
	Labels   map[string]uint32
	Lines    []Line

	// Preloads are written after the image, on top of .data.
	Preloads []MemoryWords
	Expect   Expectation
}

func (p *Program) appendWord(seg segment, v int32) {
	if seg == segText {
		p.Text = append(p.Text, uint32(v))
		return
	}

	p.Data = append(p.Data, v)
}

// Image is what a core loads.
func (p *Program) Image() core.Image {
	return core.Image{
		Entry:    p.Entry,
		TextBase: p.TextBase,
		Text:     p.Text,
		DataBase: p.DataBase,
		Data:     p.Data,
	}
}

// Load maps the image onto the core and applies the preloads.
func (p *Program) Load(c *core.Core) error {
	if err := c.MapProgram(p.Image()); err != nil {
		return err
	}

	for _, m := range p.Preloads {
		if err := c.Memory().LoadWords(m.Address, m.Words); err != nil {
			return fmt.Errorf("preload 0x%08x: %w", m.Address, err)
		}
	}

	return nil
}

// WriteListing prints address, word, disassembly and source for every
// text word, followed by the symbol table.
func (p *Program) WriteListing(w io.Writer, catalog *instr.Catalog) {
	src := map[uint32]Line{}
	for _, l := range p.Lines {
		src[l.Addr] = l
	}

	for i, word := range p.Text {
		addr := p.TextBase + uint32(4*i)
		fmt.Fprintf(w, "0x%08x  %08x  %-28s", addr, word, catalog.DisassembleWord(word))
		if l, ok := src[addr]; ok {
			fmt.Fprintf(w, "  # %d: %s", l.Line, l.Source)
		}
		fmt.Fprintln(w)
	}

	names := make([]string, 0, len(p.Labels))
	for n := range p.Labels {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		fmt.Fprintf(w, "%-16s 0x%08x\n", n, p.Labels[n])
	}
}
