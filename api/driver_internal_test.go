package api

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/craftsim/config"
	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/program"
)

var _ = Describe("Driver", func() {
	var (
		platform *config.Platform
		driver   *driverImpl
		state    *bytes.Buffer
	)

	assemble := func(name, src string) *program.Program {
		p, err := program.NewAssembler(platform.Catalog).Assemble(src)
		Expect(err).NotTo(HaveOccurred())
		p.Name = name
		return p
	}

	BeforeEach(func() {
		platform = config.NewPlatformBuilder().
			WithEngine(sim.NewSerialEngine()).
			WithNumCores(2).
			WithMemorySize(16 * 1024).
			WithMaxInstructions(100).
			Build("Device")

		state = &bytes.Buffer{}
		driver = DriverBuilder{}.
			WithPlatform(platform).
			WithStateOutput(state).
			Build("Driver").(*driverImpl)
	})

	It("should fail without a platform", func() {
		d := DriverBuilder{}.Build("Driver")

		Expect(d.MapProgram(&program.Program{}, 0)).To(MatchError(ErrNoPlatform))

		_, err := d.Run()
		Expect(err).To(MatchError(ErrNoPlatform))
	})

	It("should reject unknown cores", func() {
		Expect(driver.MapProgram(&program.Program{}, 2)).NotTo(Succeed())
		Expect(driver.PreloadMemory(-1, 0, []int32{1})).NotTo(Succeed())
	})

	It("should refuse to map two programs to one core", func() {
		p := assemble("a", "farm $t0,$t0")

		Expect(driver.MapProgram(p, 0)).To(Succeed())
		Expect(driver.MapProgram(p, 0)).To(MatchError(ErrCoreBusy))
	})

	It("should run every mapped core and report in core order", func() {
		double := assemble("double", `
			enchant $t0, 0x40($zero)
			potion.strength $t1, $t0
			chest $t1, 0x44($zero)
		`)
		double.Expect.Registers = map[string]int32{"$t1": 42}

		Expect(driver.MapProgram(double, 1)).To(Succeed())
		Expect(driver.PreloadMemory(1, 0x40, []int32{21})).To(Succeed())

		sum := assemble("sum", "move $t0,$zero,1\nmove $t1,$t0,2\n")
		Expect(driver.MapProgram(sum, 0)).To(Succeed())

		results, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(results).To(HaveLen(2))
		Expect(results[0].Core).To(Equal("Device.Core[0]"))
		Expect(results[0].Program).To(Equal("sum"))
		Expect(results[0].Retired).To(Equal(uint64(2)))
		Expect(results[0].Halt).To(Equal(core.HaltEndOfText))

		Expect(results[1].Index).To(Equal(1))
		Expect(results[1].Retired).To(Equal(platform.Cores[1].Retired()))
		Expect(results[1].Passed()).To(BeTrue())
		Expect(platform.Cores[1].Memory().ReadWord(0x44)).To(Equal(int32(42)))

		Expect(state.String()).To(ContainSubstring("State@Device.Core[0]"))
		Expect(state.String()).To(ContainSubstring("State@Device.Core[1]"))
	})

	It("should record faults from every core", func() {
		p := assemble("divide", "move $t0,$zero,7\nsplit $t1,$t0,$zero\n")
		p.Expect.Fault = "divide-by-zero"

		Expect(driver.MapProgram(p, 0)).To(Succeed())

		results, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(results[0].Passed()).To(BeTrue())
		Expect(results[0].Halt).To(Equal(core.HaltFault))
		Expect(driver.Faults()).To(HaveLen(1))
		Expect(driver.Faults()[0].Kind).To(Equal(core.FaultDivideByZero))
		Expect(driver.Faults()[0].PC).To(Equal(uint32(0x3004)))
	})

	It("should fail on a mismatch when asked to", func() {
		d := DriverBuilder{}.
			WithPlatform(platform).
			WithFailOnMismatch(true).
			Build("Strict")

		p := assemble("wrong", "summon $t0,$zero")
		p.Expect.Registers = map[string]int32{"$t0": 5}

		Expect(d.MapProgram(p, 0)).To(Succeed())

		results, err := d.Run()
		Expect(err).To(MatchError(ErrMismatch))
		Expect(results[0].Mismatches).To(ConsistOf("register $t0 = 1, want 5"))
	})

	It("should render results", func() {
		var buf bytes.Buffer

		WriteResults(&buf, []Result{
			{Core: "Device.Core[0]", Program: "ok", Retired: 3, Halt: core.HaltEndOfText},
			{
				Core: "Device.Core[1]", Program: "bad", Halt: core.HaltFault,
				Fault:      &core.Fault{Kind: core.FaultOverflow},
				Mismatches: []string{"register $t0 = 1, want 2"},
			},
		})

		Expect(buf.String()).To(ContainSubstring("PASS"))
		Expect(buf.String()).To(ContainSubstring("FAIL: register $t0 = 1, want 2"))
		Expect(buf.String()).To(ContainSubstring("overflow"))
	})
})

var _ = Describe("Driver on a parallel engine", func() {
	It("should share the counter between cores", func() {
		cfg := config.DefaultConfig()
		cfg.Cores = 4
		cfg.Parallel = true
		cfg.SharedCounter = true

		platform := cfg.Builder().Build("Parallel")
		driver := DriverBuilder{}.WithPlatform(platform).Build("Driver")

		for i := 0; i < cfg.Cores; i++ {
			p, err := program.NewAssembler(platform.Catalog).
				Assemble("summon $t0,$zero\nsummon $t0,$zero\nsummon $t0,$zero\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.MapProgram(p, i)).To(Succeed())
		}

		results, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		Expect(platform.Cores[0].Emulator().Counter().Value()).To(Equal(int32(12)))

		seen := map[int32]bool{}
		for _, c := range platform.Cores {
			Expect(c.Retired()).To(Equal(uint64(3)))
			seen[c.Registers().Get(8)] = true
		}
		Expect(seen).To(HaveKey(int32(12)))
	})
})
