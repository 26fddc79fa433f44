package instr

import (
	"fmt"
	"strings"
)

// operandLetters maps template letters to operand positions.
var operandLetters = map[rune]int{'f': 0, 's': 1, 't': 2}

// Field is a contiguous run of operand bits inside a word.
type Field struct {
	Operand int
	Lo      uint
	Width   uint
}

func (f Field) mask() uint32 {
	return (uint32(1)<<f.Width - 1) << f.Lo
}

func (f Field) extract(word uint32) uint32 {
	return (word >> f.Lo) & (uint32(1)<<f.Width - 1)
}

// Encoding is a compiled template. A word belongs to the encoding when
// word&Mask == Test.
type Encoding struct {
	Test   uint32
	Mask   uint32
	Fields []Field
}

// Matches reports whether the word carries this encoding's fixed bits.
func (e Encoding) Matches(word uint32) bool {
	return word&e.Mask == e.Test
}

// Overlaps reports whether some word could match both encodings.
func (e Encoding) Overlaps(o Encoding) bool {
	return (e.Test^o.Test)&(e.Mask&o.Mask) == 0
}

// NumOperands is the number of operand slots the template declares.
func (e Encoding) NumOperands() int {
	n := 0
	for _, f := range e.Fields {
		if f.Operand+1 > n {
			n = f.Operand + 1
		}
	}

	return n
}

// ParseTemplate compiles a 32-character field template, most significant
// bit first. Spaces are ignored. 0 and 1 are fixed bits; f, s and t mark
// the bits of operands 0, 1 and 2.
func ParseTemplate(tmpl string) (Encoding, error) {
	bits := strings.Join(strings.Fields(tmpl), "")
	if len(bits) != 32 {
		return Encoding{}, fmt.Errorf("template %q has %d bits, want 32", tmpl, len(bits))
	}

	enc := Encoding{}
	seen := map[int]bool{}

	for i := 0; i < 32; {
		pos := uint(31 - i)
		c := rune(bits[i])

		switch c {
		case '0':
			enc.Mask |= 1 << pos
			i++
			continue
		case '1':
			enc.Mask |= 1 << pos
			enc.Test |= 1 << pos
			i++
			continue
		}

		op, ok := operandLetters[c]
		if !ok {
			return Encoding{}, fmt.Errorf("template %q: unexpected character %q", tmpl, c)
		}

		if seen[op] {
			return Encoding{}, fmt.Errorf("template %q: operand %q is not contiguous", tmpl, c)
		}
		seen[op] = true

		j := i
		for j < 32 && rune(bits[j]) == c {
			j++
		}

		enc.Fields = append(enc.Fields, Field{
			Operand: op,
			Lo:      uint(32 - j),
			Width:   uint(j - i),
		})
		i = j
	}

	for op := 0; op < enc.NumOperands(); op++ {
		if !seen[op] {
			return Encoding{}, fmt.Errorf("template %q: operand %d is missing", tmpl, op)
		}
	}

	return enc, nil
}
