package core

import (
	"github.com/sarchlab/craftsim/instr"
)

// Emulator is the execution unit. It resolves words against a frozen
// catalog and runs their behaviors against the collaborators of one or
// more execution contexts. The summon counter lives here, so contexts that
// share an Emulator share the counter.
type Emulator struct {
	catalog *instr.Catalog
	counter *instr.Counter
}

// NewEmulator freezes the catalog and returns an execution unit over it.
func NewEmulator(catalog *instr.Catalog) *Emulator {
	if catalog == nil {
		panic("emulator needs a catalog")
	}

	catalog.Freeze()

	return &Emulator{
		catalog: catalog,
		counter: &instr.Counter{},
	}
}

func (e *Emulator) Catalog() *instr.Catalog { return e.catalog }
func (e *Emulator) Counter() *instr.Counter { return e.counter }

// Lookup resolves a word, reporting unknown words as an encoding fault.
func (e *Emulator) Lookup(word uint32) (*instr.Spec, error) {
	spec, err := e.catalog.Lookup(word)
	if err != nil {
		return nil, &Fault{Kind: FaultEncoding, Word: word, Err: err}
	}

	return spec, nil
}

// Execute decodes and runs one word. Any failure is a *Fault.
func (e *Emulator) Execute(
	word uint32,
	regs instr.RegisterFile,
	mem instr.Memory,
	pc instr.ProgramCounter,
) error {
	spec, err := e.Lookup(word)
	if err != nil {
		return err
	}

	return e.Dispatch(spec, word, regs, mem, pc)
}

// Dispatch runs an already resolved word.
func (e *Emulator) Dispatch(
	spec *instr.Spec,
	word uint32,
	regs instr.RegisterFile,
	mem instr.Memory,
	pc instr.ProgramCounter,
) error {
	env := instr.Env{
		Regs:    regs,
		Mem:     mem,
		PC:      pc,
		Counter: e.counter,
	}

	if err := spec.Behavior(spec.Decode(word), env); err != nil {
		return newFault(spec, word, err)
	}

	return nil
}

func reg(env instr.Env, ops instr.Operands, i int) int32 {
	return env.Regs.Get(int(ops[i]))
}

func addOverflows(a, b, sum int32) bool {
	return (a^sum)&(b^sum) < 0
}

func subOverflows(a, b, diff int32) bool {
	return (a^b)&(a^diff) < 0
}

// effectiveAddress is base register plus sign-extended offset for the
// "rt, imm(rs)" forms.
func effectiveAddress(env instr.Env, ops instr.Operands) uint32 {
	return uint32(reg(env, ops, 1) + ops[2])
}

func runCraft(ops instr.Operands, env instr.Env) error {
	a, b := reg(env, ops, 1), reg(env, ops, 2)
	sum := a + b

	if addOverflows(a, b, sum) {
		return ErrArithmeticOverflow
	}

	env.Regs.Set(int(ops[0]), sum)

	return nil
}

func runPunch(ops instr.Operands, env instr.Env) error {
	a, b := reg(env, ops, 1), reg(env, ops, 2)
	diff := a - b

	if subOverflows(a, b, diff) {
		return ErrArithmeticOverflow
	}

	env.Regs.Set(int(ops[0]), diff)

	return nil
}

func runStack(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)&reg(env, ops, 2))
	return nil
}

func runFletch(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)|reg(env, ops, 2))
	return nil
}

func runMove(ops instr.Operands, env instr.Env) error {
	a, imm := reg(env, ops, 1), ops[2]
	sum := a + imm

	if addOverflows(a, imm, sum) {
		return ErrArithmeticOverflow
	}

	env.Regs.Set(int(ops[0]), sum)

	return nil
}

func runChest(ops instr.Operands, env instr.Env) error {
	return env.Mem.WriteWord(effectiveAddress(env, ops), reg(env, ops, 0))
}

func runEnchant(ops instr.Operands, env instr.Env) error {
	v, err := env.Mem.ReadWord(effectiveAddress(env, ops))
	if err != nil {
		return err
	}

	env.Regs.Set(int(ops[0]), v)

	return nil
}

// runSplit divides with truncation toward zero. MinInt32 / -1 wraps to
// MinInt32.
func runSplit(ops instr.Operands, env instr.Env) error {
	a, b := reg(env, ops, 1), reg(env, ops, 2)
	if b == 0 {
		return ErrDivideByZero
	}

	env.Regs.Set(int(ops[0]), a/b)

	return nil
}

func runHop(ops instr.Operands, env instr.Env) error {
	pc := env.PC.Current()
	env.PC.SetTarget(pc&0xF0000000 | uint32(ops[0])<<2)

	return nil
}

func runTorch(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), ^reg(env, ops, 1))
	return nil
}

func runPotionStrength(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)<<1)
	return nil
}

func runPotionWeakness(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)>>1)
	return nil
}

func runPotionSpeed(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)+5)
	return nil
}

func runPotionSlowness(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)-5)
	return nil
}

func runSummon(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), env.Counter.Increment())
	return nil
}

// runBreak moves a word out of memory into rt and clears the slot. A
// failed clear leaves rt already written.
func runBreak(ops instr.Operands, env instr.Env) error {
	addr := effectiveAddress(env, ops)

	v, err := env.Mem.ReadWord(addr)
	if err != nil {
		return err
	}

	env.Regs.Set(int(ops[0]), v)

	return env.Mem.WriteWord(addr, 0)
}

func runRedstone(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)^1)
	return nil
}

// runCreeper zeroes every word from rs up to and including rt+imm.
// Addresses compare unsigned. The walk is done in 64 bits so it cannot
// wrap, and it stops at the first address memory refuses.
func runCreeper(ops instr.Operands, env instr.Env) error {
	start := uint64(uint32(reg(env, ops, 1)))
	end := uint64(uint32(reg(env, ops, 0) + ops[2]))

	for a := start; a <= end; a += 4 {
		if err := env.Mem.WriteWord(uint32(a), 0); err != nil {
			return err
		}
	}

	return nil
}

func runFarm(ops instr.Operands, env instr.Env) error {
	env.Regs.Set(int(ops[0]), reg(env, ops, 1)+1)
	return nil
}

func runResetWorld(_ instr.Operands, env instr.Env) error {
	env.Counter.Reset()
	return nil
}
