package instr

// Format is the bit layout family of an instruction word.
type Format int

// The three layouts every instruction word falls into.
const (
	FormatR Format = iota
	FormatI
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// Word is a raw 32-bit instruction word.
//
//	R: opcode(31-26) rs(25-21) rt(20-16) rd(15-11) shamt(10-6) funct(5-0)
//	I: opcode(31-26) rs(25-21) rt(20-16) imm16(15-0)
//	J: opcode(31-26) target26(25-0)
type Word uint32

const (
	OpcodeMask uint32 = 0xFC000000
	FunctMask  uint32 = 0x0000003F
	ShamtMask  uint32 = 0x000007C0
)

func (w Word) Opcode() uint32 { return uint32(w) >> 26 }
func (w Word) Rs() int { return int(uint32(w)>>21) & 0x1F }
func (w Word) Rt() int { return int(uint32(w)>>16) & 0x1F }
func (w Word) Rd() int { return int(uint32(w)>>11) & 0x1F }
func (w Word) Shamt() uint32 { return (uint32(w) >> 6) & 0x1F }
func (w Word) Funct() uint32 { return uint32(w) & 0x3F }
func (w Word) Imm16() uint16 { return uint16(w) }
func (w Word) Target() uint32 { return uint32(w) & 0x03FFFFFF }

// SignExtend16 widens a 16-bit immediate to a signed 32-bit value.
func SignExtend16(imm uint16) int32 {
	return int32(int16(imm))
}
