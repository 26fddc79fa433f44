package program

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/craftsim/instr"
)

// Default segment bases, matching the compact layout with data at 0.
const (
	DefaultTextBase uint32 = 0x3000
	DefaultDataBase uint32 = 0x0000
)

// Error points at the source line an assembly error came from.
type Error struct {
	Line int
	Text string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Err, e.Text)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrUnknownLabel    = errors.New("unknown label")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrBadOperand      = errors.New("bad operand")
)

// Assembler turns source text into a Program. It is a value type
// configured with WithX calls.
type Assembler struct {
	catalog  *instr.Catalog
	textBase uint32
	dataBase uint32
}

func NewAssembler(catalog *instr.Catalog) Assembler {
	return Assembler{
		catalog:  catalog,
		textBase: DefaultTextBase,
		dataBase: DefaultDataBase,
	}
}

func (a Assembler) WithTextBase(base uint32) Assembler {
	a.textBase = base
	return a
}

func (a Assembler) WithDataBase(base uint32) Assembler {
	a.dataBase = base
	return a
}

type segment int

const (
	segText segment = iota
	segData
)

// stmt is one non-empty source line after labels are stripped.
type stmt struct {
	line int
	text string
	seg  segment
	addr uint32
	op   string
	args []string
}

// Assemble runs two passes: the first places labels, the second encodes.
func (a Assembler) Assemble(src string) (*Program, error) {
	if a.textBase%4 != 0 || a.dataBase%4 != 0 {
		return nil, fmt.Errorf("segment bases must be word aligned")
	}

	p := &Program{
		TextBase: a.textBase,
		DataBase: a.dataBase,
		Labels:   map[string]uint32{},
	}

	stmts, err := a.layout(src, p.Labels)
	if err != nil {
		return nil, err
	}

	for _, s := range stmts {
		if err := a.emit(p, s); err != nil {
			return nil, &Error{Line: s.line, Text: s.text, Err: err}
		}
	}

	p.Entry = p.TextBase
	if main, ok := p.Labels["main"]; ok {
		p.Entry = main
	}

	return p, nil
}

func (a Assembler) layout(src string, labels map[string]uint32) ([]stmt, error) {
	var (
		stmts []stmt
		seg   = segText
		pos   = map[segment]uint32{segText: a.textBase, segData: a.dataBase}
	)

	for i, raw := range strings.Split(src, "\n") {
		line := i + 1
		text := raw
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)

		for {
			colon := strings.IndexByte(text, ':')
			if colon < 0 || strings.ContainsAny(text[:colon], " \t,($") {
				break
			}

			name := text[:colon]
			if _, ok := labels[name]; ok {
				return nil, &Error{Line: line, Text: raw, Err: fmt.Errorf("%w: %s", ErrDuplicateLabel, name)}
			}
			labels[name] = pos[seg]
			text = strings.TrimSpace(text[colon+1:])
		}

		if text == "" {
			continue
		}

		op := strings.Fields(text)[0]
		args := splitArgs(text[len(op):])
		op = strings.ToLower(op)

		switch op {
		case ".text":
			seg = segText
			continue
		case ".data":
			seg = segData
			continue
		case ".globl", ".global", ".align":
			continue
		}

		s := stmt{line: line, text: raw, seg: seg, addr: pos[seg], op: op, args: args}

		size, err := stmtSize(s)
		if err != nil {
			return nil, &Error{Line: line, Text: raw, Err: err}
		}

		pos[seg] += size
		stmts = append(stmts, s)
	}

	return stmts, nil
}

func stmtSize(s stmt) (uint32, error) {
	switch s.op {
	case ".word":
		return uint32(4 * len(s.args)), nil
	case ".space":
		if len(s.args) != 1 {
			return 0, fmt.Errorf("%w: .space takes one size", ErrBadOperand)
		}
		n, err := strconv.ParseUint(s.args[0], 0, 32)
		if err != nil || n%4 != 0 {
			return 0, fmt.Errorf("%w: .space size must be a multiple of 4", ErrBadOperand)
		}
		return uint32(n), nil
	}

	if s.seg == segData {
		return 0, fmt.Errorf("instruction %q in data segment", s.op)
	}

	return 4, nil
}

func (a Assembler) emit(p *Program, s stmt) error {
	switch s.op {
	case ".word":
		for _, arg := range s.args {
			v, err := value(arg, p.Labels)
			if err != nil {
				return err
			}
			p.appendWord(s.seg, v)
		}
		return nil
	case ".space":
		n, _ := strconv.ParseUint(s.args[0], 0, 32)
		for i := uint64(0); i < n/4; i++ {
			p.appendWord(s.seg, 0)
		}
		return nil
	}

	spec, err := a.catalog.LookupMnemonic(s.op)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownMnemonic, s.op)
	}

	ops, err := operands(spec, s, p.Labels)
	if err != nil {
		return err
	}

	word, err := spec.Encode(ops)
	if err != nil {
		return err
	}

	p.appendWord(s.seg, int32(word))
	p.Lines = append(p.Lines, Line{Addr: s.addr, Line: s.line, Source: strings.TrimSpace(s.text)})

	return nil
}

func operands(spec *instr.Spec, s stmt, labels map[string]uint32) (instr.Operands, error) {
	kinds := spec.OperandKinds()
	if len(s.args) != len(kinds) {
		return nil, fmt.Errorf("%w: %s takes %d operands, got %d",
			ErrBadOperand, spec.Mnemonic, len(kinds), len(s.args))
	}

	var ops instr.Operands

	for i, k := range kinds {
		arg := s.args[i]

		switch k {
		case instr.KindRegister:
			r, err := instr.RegisterIndex(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadOperand, err)
			}
			ops = append(ops, int32(r))
		case instr.KindImmediate:
			v, err := value(arg, labels)
			if err != nil {
				return nil, err
			}
			ops = append(ops, v)
		case instr.KindMemory:
			base, off, err := memoryOperand(arg, labels)
			if err != nil {
				return nil, err
			}
			ops = append(ops, base, off)
		case instr.KindTarget:
			t, err := target(arg, s.addr, labels)
			if err != nil {
				return nil, err
			}
			ops = append(ops, t)
		}
	}

	return ops, nil
}

// memoryOperand parses "off($reg)", "($reg)" or "label($reg)".
func memoryOperand(arg string, labels map[string]uint32) (int32, int32, error) {
	open := strings.IndexByte(arg, '(')
	if open < 0 || !strings.HasSuffix(arg, ")") {
		return 0, 0, fmt.Errorf("%w: %q is not imm($reg)", ErrBadOperand, arg)
	}

	r, err := instr.RegisterIndex(arg[open+1 : len(arg)-1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadOperand, err)
	}

	off := int32(0)
	if s := strings.TrimSpace(arg[:open]); s != "" {
		off, err = value(s, labels)
		if err != nil {
			return 0, 0, err
		}
	}

	return int32(r), off, nil
}

// target resolves a jump destination to its 26-bit word index. The
// destination must share the top four bits with the next instruction.
func target(arg string, addr uint32, labels map[string]uint32) (int32, error) {
	v, err := value(arg, labels)
	if err != nil {
		return 0, err
	}

	dest := uint32(v)
	if dest%4 != 0 {
		return 0, fmt.Errorf("%w: jump target 0x%08x is not word aligned", ErrBadOperand, dest)
	}

	if dest&0xF0000000 != (addr+4)&0xF0000000 {
		return 0, fmt.Errorf("%w: jump target 0x%08x out of region", ErrBadOperand, dest)
	}

	return int32(dest>>2) & 0x03FFFFFF, nil
}

func value(arg string, labels map[string]uint32) (int32, error) {
	if addr, ok := labels[arg]; ok {
		return int32(addr), nil
	}

	if v, err := strconv.ParseInt(arg, 0, 64); err == nil {
		if v < -0x80000000 || v > 0xFFFFFFFF {
			return 0, fmt.Errorf("%w: %s does not fit in 32 bits", ErrBadOperand, arg)
		}
		return int32(v), nil
	}

	if isIdent(arg) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLabel, arg)
	}

	return 0, fmt.Errorf("%w: %q", ErrBadOperand, arg)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

func splitArgs(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}

	parts := strings.Split(rest, ",")
	for i := range parts {
		parts[i] = strings.Join(strings.Fields(parts[i]), "")
	}

	return parts
}
