package instr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/craftsim/instr"
)

var _ = Describe("ParseTemplate", func() {
	It("should compile an R-format template", func() {
		enc, err := instr.ParseTemplate("000000 sssss ttttt fffff 00000 100000")

		Expect(err).ToNot(HaveOccurred())
		Expect(enc.Test).To(Equal(uint32(0x00000020)))
		Expect(enc.Mask).To(Equal(uint32(0xFC0007FF)))
		Expect(enc.Fields).To(ConsistOf(
			instr.Field{Operand: 1, Lo: 21, Width: 5},
			instr.Field{Operand: 2, Lo: 16, Width: 5},
			instr.Field{Operand: 0, Lo: 11, Width: 5},
		))
		Expect(enc.NumOperands()).To(Equal(3))
	})

	It("should compile an I-format template", func() {
		enc, err := instr.ParseTemplate("001000 sssss fffff tttttttttttttttt")

		Expect(err).ToNot(HaveOccurred())
		Expect(enc.Test).To(Equal(uint32(0x20000000)))
		Expect(enc.Mask).To(Equal(uint32(0xFC000000)))
		Expect(enc.Fields).To(ContainElement(instr.Field{Operand: 2, Lo: 0, Width: 16}))
	})

	It("should compile a template without operands", func() {
		enc, err := instr.ParseTemplate("000000 00000 00000 00000 00000 110111")

		Expect(err).ToNot(HaveOccurred())
		Expect(enc.Mask).To(Equal(uint32(0xFFFFFFFF)))
		Expect(enc.Test).To(Equal(uint32(0x37)))
		Expect(enc.NumOperands()).To(Equal(0))
	})

	It("should reject a short template", func() {
		_, err := instr.ParseTemplate("000000 sssss")
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown letters", func() {
		_, err := instr.ParseTemplate("000000 sssss ttttt xxxxx 00000 100000")
		Expect(err).To(HaveOccurred())
	})

	It("should reject split operand fields", func() {
		_, err := instr.ParseTemplate("000000 sssss ttttt sssss 00000 100000")
		Expect(err).To(HaveOccurred())
	})

	It("should reject a gap in operand numbering", func() {
		_, err := instr.ParseTemplate("000000 ttttt 00000 fffff 00000 100000")
		Expect(err).To(HaveOccurred())
	})

	It("should tell overlapping encodings apart", func() {
		add, _ := instr.ParseTemplate("000000 sssss ttttt fffff 00000 100000")
		sub, _ := instr.ParseTemplate("000000 sssss ttttt fffff 00000 100010")
		Expect(add.Overlaps(sub)).To(BeFalse())
		Expect(add.Overlaps(add)).To(BeTrue())

		// Leaving shamt open also claims add's words.
		wide := instr.Encoding{Test: 0x20, Mask: 0xFC00003F}
		Expect(add.Overlaps(wide)).To(BeTrue())
		Expect(sub.Overlaps(wide)).To(BeFalse())
	})
})

var _ = Describe("Word", func() {
	It("should pull R-format fields", func() {
		w := instr.Word(0x014B4820) // add $t1,$t2,$t3

		Expect(w.Opcode()).To(Equal(uint32(0)))
		Expect(w.Rs()).To(Equal(10))
		Expect(w.Rt()).To(Equal(11))
		Expect(w.Rd()).To(Equal(9))
		Expect(w.Shamt()).To(Equal(uint32(0)))
		Expect(w.Funct()).To(Equal(uint32(0x20)))
	})

	It("should pull I and J fields", func() {
		Expect(instr.Word(0x2149FF9C).Imm16()).To(Equal(uint16(0xFF9C)))
		Expect(instr.Word(0x0BFFFFFF).Target()).To(Equal(uint32(0x03FFFFFF)))
		Expect(instr.Word(0x0BFFFFFF).Opcode()).To(Equal(uint32(2)))
	})

	It("should sign-extend immediates", func() {
		Expect(instr.SignExtend16(0x7FFF)).To(Equal(int32(32767)))
		Expect(instr.SignExtend16(0x8000)).To(Equal(int32(-32768)))
		Expect(instr.SignExtend16(0xFFFF)).To(Equal(int32(-1)))
	})
})
