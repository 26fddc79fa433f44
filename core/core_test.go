package core_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/craftsim/core"
)

type retireRecorder struct {
	records []core.InstRecord
	faults  []*core.Fault
}

func (r *retireRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case core.HookPosInstRetired:
		r.records = append(r.records, ctx.Item.(core.InstRecord))
	case core.HookPosFault:
		r.faults = append(r.faults, ctx.Item.(*core.Fault))
	}
}

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		c      *core.Core
		rec    *retireRecorder
	)

	const textBase = 0x3000

	image := func(words ...uint32) core.Image {
		return core.Image{
			Entry:    textBase,
			TextBase: textBase,
			Text:     words,
		}
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		c = core.NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithEmulator(core.NewEmulator(catalog)).
			WithMemorySize(16 * 1024).
			Build("Core")

		rec = &retireRecorder{}
		c.AcceptHook(rec)
	})

	It("should run a program to the end of the text segment", func() {
		Expect(c.MapProgram(image(
			encode("move", t0, zero, 5),
			encode("move", t1, zero, 7),
			encode("craft", t2, t0, t1),
			encode("chest", t2, zero, 0x40),
		))).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(c.HaltReason()).To(Equal(core.HaltEndOfText))
		Expect(c.Retired()).To(Equal(uint64(4)))
		Expect(c.Registers().Get(t2)).To(Equal(int32(12)))
		Expect(c.Memory().ReadWord(0x40)).To(Equal(int32(12)))
		Expect(c.PC()).To(Equal(uint32(textBase + 16)))

		Expect(rec.records).To(HaveLen(4))
		Expect(rec.records[2]).To(Equal(core.InstRecord{
			PC:     textBase + 8,
			Word:   encode("craft", t2, t0, t1),
			Inst:   "craft $t2,$t0,$t1",
			NextPC: textBase + 12,
		}))
	})

	It("should follow hop and stop at the instruction limit", func() {
		c.SetMaxInstructions(10)

		Expect(c.MapProgram(image(
			encode("farm", t0, t0),
			encode("hop", textBase>>2),
		))).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(c.HaltReason()).To(Equal(core.HaltInstLimit))
		Expect(c.Retired()).To(Equal(uint64(10)))
		Expect(c.Registers().Get(t0)).To(Equal(int32(5)))
	})

	It("should halt when hop leaves the text segment", func() {
		Expect(c.MapProgram(image(
			encode("hop", 0x100),
			encode("farm", t0, t0),
		))).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(c.HaltReason()).To(Equal(core.HaltEndOfText))
		Expect(c.PC()).To(Equal(uint32(0x400)))
		Expect(c.Registers().Get(t0)).To(Equal(int32(0)))
	})

	It("should halt on a fault and report where it happened", func() {
		Expect(c.MapProgram(core.Image{
			Entry:    textBase,
			TextBase: textBase,
			Text: []uint32{
				encode("enchant", t1, zero, 0),
				encode("craft", t2, t1, t1),
				encode("farm", t3, t3),
			},
			DataBase: 0,
			Data:     []int32{0x7FFFFFFF},
		})).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(c.HaltReason()).To(Equal(core.HaltFault))
		Expect(c.Fault()).ToNot(BeNil())
		Expect(c.Fault().Kind).To(Equal(core.FaultOverflow))
		Expect(c.Fault().PC).To(Equal(uint32(textBase + 4)))
		Expect(c.Fault().Mnemonic).To(Equal("craft"))
		Expect(c.Registers().Get(t3)).To(Equal(int32(0)))
		Expect(rec.faults).To(ConsistOf(c.Fault()))
	})

	It("should raise an encoding fault on an unknown word", func() {
		Expect(c.MapProgram(image(0xFFFFFFFF))).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(c.Fault().Kind).To(Equal(core.FaultEncoding))
		Expect(c.Fault().PC).To(Equal(uint32(textBase)))
	})

	It("should reject an entry outside the text", func() {
		img := image(encode("farm", t0, t0))
		img.Entry = 0

		Expect(c.MapProgram(img)).ToNot(Succeed())
	})

	It("should print its registers", func() {
		Expect(c.MapProgram(image(encode("move", t0, zero, 99)))).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		var buf bytes.Buffer
		core.PrintState(&buf, c)

		Expect(buf.String()).To(ContainSubstring("Registers"))
		Expect(buf.String()).To(ContainSubstring("99"))
		Expect(buf.String()).To(ContainSubstring("end-of-text"))
	})
})

var _ = Describe("Memory", func() {
	It("should store words little-endian in akita storage", func() {
		m := core.NewMemory(64)

		Expect(m.WriteWord(4, -2)).To(Succeed())
		Expect(m.ReadWord(4)).To(Equal(int32(-2)))
		Expect(m.Capacity()).To(Equal(uint64(64)))

		Expect(m.LoadWords(8, []int32{1, 2, 3})).To(Succeed())
		Expect(m.DumpWords(4, 4)).To(Equal([]int32{-2, 1, 2, 3}))
	})

	It("should reject bad addresses", func() {
		m := core.NewMemory(66)

		_, err := m.ReadWord(64)
		Expect(err).To(HaveOccurred())
		Expect(m.WriteWord(3, 1)).ToNot(Succeed())
		Expect(m.WriteWord(60, 1)).To(Succeed())
	})
})

var _ = Describe("Fault kinds", func() {
	It("should parse their own names", func() {
		for _, k := range []core.FaultKind{
			core.FaultEncoding, core.FaultOverflow,
			core.FaultAddress, core.FaultDivideByZero,
		} {
			Expect(core.ParseFaultKind(k.String())).To(Equal(k))
		}

		_, err := core.ParseFaultKind("meteor")
		Expect(err).To(HaveOccurred())
	})
})
