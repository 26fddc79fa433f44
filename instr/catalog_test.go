package instr_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/craftsim/instr"
)

func nop(instr.Operands, instr.Env) error { return nil }

func addSpec() instr.Spec {
	return instr.Spec{
		Mnemonic:    "add",
		Syntax:      "add $t1,$t2,$t3",
		Description: "Add",
		Format:      instr.FormatR,
		Template:    "000000 sssss ttttt fffff 00000 100000",
		Behavior:    nop,
	}
}

func addiSpec() instr.Spec {
	return instr.Spec{
		Mnemonic:    "addi",
		Syntax:      "addi $t1,$t2,-100",
		Description: "Add immediate",
		Format:      instr.FormatI,
		Template:    "001000 sssss fffff tttttttttttttttt",
		Behavior:    nop,
	}
}

func swSpec() instr.Spec {
	return instr.Spec{
		Mnemonic:    "sw",
		Syntax:      "sw $t1,-100($t2)",
		Description: "Store word",
		Format:      instr.FormatI,
		Template:    "101011 sssss fffff tttttttttttttttt",
		Behavior:    nop,
	}
}

func jSpec() instr.Spec {
	return instr.Spec{
		Mnemonic:    "j",
		Syntax:      "j target",
		Description: "Jump",
		Format:      instr.FormatJ,
		Template:    "000010 ffffffffffffffffffffffffff",
		Behavior:    nop,
	}
}

var _ = Describe("Catalog", func() {
	var c *instr.Catalog

	BeforeEach(func() {
		c = instr.NewCatalog("test", "test set")
		Expect(c.Register(addSpec())).To(Succeed())
		Expect(c.Register(addiSpec())).To(Succeed())
		Expect(c.Register(swSpec())).To(Succeed())
		Expect(c.Register(jSpec())).To(Succeed())
	})

	It("should look up registered words", func() {
		s, err := c.Lookup(0x014B4820)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Mnemonic).To(Equal("add"))

		s, err = c.Lookup(0x08000010)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Mnemonic).To(Equal("j"))
	})

	It("should report unknown words", func() {
		_, err := c.Lookup(0x014B4822)
		Expect(err).To(MatchError(instr.ErrNotFound))

		_, err = c.Lookup(0xFC000000)
		Expect(err).To(MatchError(instr.ErrNotFound))
	})

	It("should reject colliding encodings", func() {
		dup := addSpec()
		dup.Mnemonic = "plus"

		err := c.Register(dup)
		Expect(err).To(MatchError(instr.ErrEncodingCollision))
		Expect(err.Error()).To(ContainSubstring("plus and add"))
		Expect(c.Len()).To(Equal(4))
	})

	It("should reject duplicate mnemonics", func() {
		dup := addSpec()
		dup.Template = "000000 sssss ttttt fffff 00000 100001"

		Expect(c.Register(dup)).To(MatchError(instr.ErrDuplicateMnemonic))
	})

	It("should reject specs without behavior", func() {
		s := addSpec()
		s.Mnemonic = "sub"
		s.Template = "000000 sssss ttttt fffff 00000 100010"
		s.Behavior = nil

		Expect(c.Register(s)).ToNot(Succeed())
	})

	It("should reject a syntax that disagrees with the template", func() {
		s := addSpec()
		s.Mnemonic = "sub"
		s.Syntax = "sub $t1,$t2"
		s.Template = "000000 sssss ttttt fffff 00000 100010"

		Expect(c.Register(s)).ToNot(Succeed())
	})

	It("should reject a template that does not fit the format", func() {
		s := jSpec()
		s.Mnemonic = "jal"
		s.Format = instr.FormatR
		s.Template = "000011 ffffffffffffffffffffffffff"

		Expect(c.Register(s)).ToNot(Succeed())
	})

	It("should refuse registration once frozen", func() {
		c.Freeze()

		s := addSpec()
		s.Mnemonic = "sub"
		s.Template = "000000 sssss ttttt fffff 00000 100010"

		Expect(c.Register(s)).To(MatchError(instr.ErrCatalogFrozen))
		Expect(c.Frozen()).To(BeTrue())
	})

	It("should leave a frozen catalog untouched when frozen again", func() {
		c.Freeze()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				for j := 0; j < 100; j++ {
					c.Freeze()
				}
			}()
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				for j := 0; j < 100; j++ {
					Expect(c.Frozen()).To(BeTrue())
					_, err := c.Lookup(0x014B4820)
					Expect(err).ToNot(HaveOccurred())
				}
			}()
		}
		wg.Wait()

		Expect(c.Len()).To(Equal(4))
	})

	It("should describe instructions in registration order", func() {
		d := c.Describe()

		Expect(d).To(HaveLen(4))
		Expect(d[0]).To(Equal(instr.Description{
			Mnemonic:    "add",
			Syntax:      "add $t1,$t2,$t3",
			Description: "Add",
		}))
		Expect(d[3].Mnemonic).To(Equal("j"))
	})

	It("should find instructions by mnemonic", func() {
		s, err := c.LookupMnemonic("sw")
		Expect(err).ToNot(HaveOccurred())
		Expect(s.OperandKinds()).To(Equal([]instr.OperandKind{
			instr.KindRegister, instr.KindMemory,
		}))

		_, err = c.LookupMnemonic("lw")
		Expect(err).To(MatchError(instr.ErrNotFound))
	})

	It("should be safe for concurrent lookups", func() {
		c.Freeze()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				for j := 0; j < 1000; j++ {
					s, err := c.Lookup(0x014B4820)
					Expect(err).ToNot(HaveOccurred())
					Expect(s.Mnemonic).To(Equal("add"))
				}
			}()
		}
		wg.Wait()
	})
})

var _ = Describe("Spec", func() {
	var c *instr.Catalog

	BeforeEach(func() {
		c = instr.NewCatalog("test", "")
		Expect(c.Register(addSpec())).To(Succeed())
		Expect(c.Register(addiSpec())).To(Succeed())
		Expect(c.Register(swSpec())).To(Succeed())
		Expect(c.Register(jSpec())).To(Succeed())
	})

	It("should decode R-format operands as rd, rs, rt", func() {
		s, _ := c.LookupMnemonic("add")
		Expect(s.Decode(0x014B4820)).To(Equal(instr.Operands{9, 10, 11}))
	})

	It("should sign-extend I-format immediates", func() {
		s, _ := c.LookupMnemonic("addi")
		w, err := s.Encode(instr.Operands{9, 10, -100})
		Expect(err).ToNot(HaveOccurred())
		Expect(w).To(Equal(uint32(0x2149FF9C)))
		Expect(s.Decode(w)).To(Equal(instr.Operands{9, 10, -100}))
	})

	It("should accept unsigned 16-bit immediates", func() {
		s, _ := c.LookupMnemonic("addi")
		w, err := s.Encode(instr.Operands{1, 0, 0xFFFF})
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Decode(w)[2]).To(Equal(int32(-1)))
	})

	It("should keep J targets unsigned", func() {
		s, _ := c.LookupMnemonic("j")
		w, err := s.Encode(instr.Operands{0x03FFFFFF})
		Expect(err).ToNot(HaveOccurred())
		Expect(w).To(Equal(uint32(0x0BFFFFFF)))
		Expect(s.Decode(w)).To(Equal(instr.Operands{0x03FFFFFF}))
	})

	It("should reject out of range operands", func() {
		add, _ := c.LookupMnemonic("add")
		_, err := add.Encode(instr.Operands{32, 0, 0})
		Expect(err).To(MatchError(instr.ErrOperandRange))

		addi, _ := c.LookupMnemonic("addi")
		_, err = addi.Encode(instr.Operands{1, 1, 70000})
		Expect(err).To(MatchError(instr.ErrOperandRange))

		_, err = addi.Encode(instr.Operands{1, 1})
		Expect(err).To(HaveOccurred())
	})

	It("should disassemble words", func() {
		Expect(c.DisassembleWord(0x014B4820)).To(Equal("add $t1,$t2,$t3"))
		Expect(c.DisassembleWord(0x2149FF9C)).To(Equal("addi $t1,$t2,-100"))
		Expect(c.DisassembleWord(0xAD49FFFC)).To(Equal("sw $t1,-4($t2)"))
		Expect(c.DisassembleWord(0x08000010)).To(Equal("j 0x00000040"))
		Expect(c.DisassembleWord(0xFFFFFFFF)).To(Equal(".word 0xffffffff"))
	})
})

var _ = Describe("Counter", func() {
	It("should count and reset", func() {
		c := &instr.Counter{}

		Expect(c.Increment()).To(Equal(int32(1)))
		Expect(c.Increment()).To(Equal(int32(2)))
		c.Reset()
		Expect(c.Value()).To(Equal(int32(0)))
		Expect(c.Increment()).To(Equal(int32(1)))
	})

	It("should not lose increments under contention", func() {
		c := &instr.Counter{}

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 500; j++ {
					c.Increment()
				}
			}()
		}
		wg.Wait()

		Expect(c.Value()).To(Equal(int32(5000)))
	})
})

var _ = Describe("Register names", func() {
	It("should round trip names and indices", func() {
		for i := 0; i < instr.NumRegisters; i++ {
			idx, err := instr.RegisterIndex(instr.RegisterName(i))
			Expect(err).ToNot(HaveOccurred())
			Expect(idx).To(Equal(i))
		}
	})

	It("should accept numeric registers", func() {
		Expect(instr.RegisterIndex("$8")).To(Equal(8))
		Expect(instr.RegisterIndex("$s8")).To(Equal(30))

		_, err := instr.RegisterIndex("$32")
		Expect(err).To(HaveOccurred())
		_, err = instr.RegisterIndex("$foo")
		Expect(err).To(HaveOccurred())
	})
})
