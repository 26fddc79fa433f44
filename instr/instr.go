package instr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrOperandRange is returned when an operand does not fit its field.
var ErrOperandRange = errors.New("operand out of range")

// Operands are the decoded fields of one instruction word, in operand
// order: R format [rd, rs, rt], I format [rt, rs, imm], J format [target].
// I-format immediates are sign-extended; everything else is raw.
type Operands []int32

// Behavior is the semantic routine of an instruction. It returns nil or
// the fault that stopped it.
type Behavior func(ops Operands, env Env) error

// OperandKind is how an operand is written in assembly syntax.
type OperandKind int

const (
	KindRegister OperandKind = iota
	KindImmediate
	// KindMemory is "imm($reg)" and fills two slots: base, then offset.
	KindMemory
	KindTarget
)

// Spec describes one instruction. Once registered it belongs to the
// catalog and must not be modified.
type Spec struct {
	Mnemonic    string
	Syntax      string
	Description string
	Format      Format
	Template    string
	Behavior    Behavior

	enc   Encoding
	kinds []OperandKind
}

// Encoding returns the compiled template. It is only valid after
// registration.
func (s *Spec) Encoding() Encoding {
	return s.enc
}

// OperandKinds returns the operand kinds in syntax order.
func (s *Spec) OperandKinds() []OperandKind {
	return s.kinds
}

// Decode pulls the operand fields out of a word.
func (s *Spec) Decode(word uint32) Operands {
	ops := make(Operands, s.enc.NumOperands())

	for _, f := range s.enc.Fields {
		v := f.extract(word)
		if s.Format == FormatI && f.Width == 16 {
			ops[f.Operand] = SignExtend16(uint16(v))
		} else {
			ops[f.Operand] = int32(v)
		}
	}

	return ops
}

// Encode places operands into the instruction's fixed bit pattern. 16-bit
// immediates accept both the signed and unsigned range.
func (s *Spec) Encode(ops Operands) (uint32, error) {
	if len(ops) != s.enc.NumOperands() {
		return 0, fmt.Errorf("%s: got %d operands, want %d",
			s.Mnemonic, len(ops), s.enc.NumOperands())
	}

	word := s.enc.Test

	for _, f := range s.enc.Fields {
		v := ops[f.Operand]

		if s.Format == FormatI && f.Width == 16 {
			if v < -0x8000 || v > 0xFFFF {
				return 0, fmt.Errorf("%s: immediate %d: %w", s.Mnemonic, v, ErrOperandRange)
			}
		} else if v < 0 || uint32(v) > uint32(1)<<f.Width-1 {
			return 0, fmt.Errorf("%s: operand %d value %d: %w", s.Mnemonic, f.Operand, v, ErrOperandRange)
		}

		word |= (uint32(v) << f.Lo) & f.mask()
	}

	return word, nil
}

func (s *Spec) compile() error {
	if s.Mnemonic == "" {
		return errors.New("instruction has no mnemonic")
	}

	if s.Behavior == nil {
		return fmt.Errorf("%s: no behavior", s.Mnemonic)
	}

	enc, err := ParseTemplate(s.Template)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Mnemonic, err)
	}

	if err := checkFormat(s.Format, enc); err != nil {
		return fmt.Errorf("%s: %w", s.Mnemonic, err)
	}

	kinds, err := parseSyntax(s.Syntax)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Mnemonic, err)
	}

	if n := slotCount(kinds); n != enc.NumOperands() {
		return fmt.Errorf("%s: syntax has %d operand slots, template has %d",
			s.Mnemonic, n, enc.NumOperands())
	}

	s.enc = enc
	s.kinds = kinds

	return nil
}

func checkFormat(format Format, enc Encoding) error {
	if enc.Mask&OpcodeMask != OpcodeMask {
		return errors.New("template does not fix the opcode")
	}

	switch format {
	case FormatR:
		if enc.Test&OpcodeMask != 0 || enc.Mask&FunctMask != FunctMask {
			return errors.New("R format needs opcode 0 and a fixed funct")
		}
		for _, f := range enc.Fields {
			if f.Width != 5 {
				return errors.New("R format fields must be registers")
			}
		}
	case FormatI:
		if !hasFieldWidth(enc, 16) {
			return errors.New("I format needs a 16-bit immediate")
		}
	case FormatJ:
		if len(enc.Fields) != 1 || enc.Fields[0].Width != 26 {
			return errors.New("J format needs a single 26-bit target")
		}
	default:
		return fmt.Errorf("unknown format %d", format)
	}

	return nil
}

func hasFieldWidth(enc Encoding, width uint) bool {
	for _, f := range enc.Fields {
		if f.Width == width {
			return true
		}
	}

	return false
}

// parseSyntax reads operand kinds out of an example like
// "chest $t1,-100($t2)".
func parseSyntax(syntax string) ([]OperandKind, error) {
	syntax = strings.TrimSpace(syntax)
	_, rest, found := strings.Cut(syntax, " ")
	if !found || strings.TrimSpace(rest) == "" {
		return nil, nil
	}

	var kinds []OperandKind
	for _, tok := range strings.Split(rest, ",") {
		tok = strings.TrimSpace(tok)

		switch {
		case tok == "":
			return nil, fmt.Errorf("syntax %q has an empty operand", syntax)
		case strings.HasPrefix(tok, "$"):
			kinds = append(kinds, KindRegister)
		case strings.Contains(tok, "("):
			kinds = append(kinds, KindMemory)
		default:
			if _, err := strconv.ParseInt(tok, 0, 32); err == nil {
				kinds = append(kinds, KindImmediate)
			} else {
				kinds = append(kinds, KindTarget)
			}
		}
	}

	return kinds, nil
}

func slotCount(kinds []OperandKind) int {
	n := 0
	for _, k := range kinds {
		if k == KindMemory {
			n += 2
		} else {
			n++
		}
	}

	return n
}
