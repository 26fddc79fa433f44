package verify

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
	valgen "github.com/sarchlab/craftsim/util"
)

// Registers the functional check reads from and writes to.
const (
	srcA     = 8  // $t0
	srcB     = 9  // $t1
	dst      = 10 // $t2
	sentinel = int32(0x5EED)
)

type operandForm int

const (
	formRRR operandForm = iota // rd, rs, rt
	formRR                     // rd, rs
	formRRI                    // rt, rs, imm
)

// reference computes the destination from 64-bit source values. A nil
// error means the low 32 bits of the result are written.
type reference struct {
	form operandForm
	fn   func(a, b int64) (int64, error)
}

func checked(v int64) (int64, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, core.ErrArithmeticOverflow
	}
	return v, nil
}

var references = map[string]reference{
	"craft":  {formRRR, func(a, b int64) (int64, error) { return checked(a + b) }},
	"punch":  {formRRR, func(a, b int64) (int64, error) { return checked(a - b) }},
	"stack":  {formRRR, func(a, b int64) (int64, error) { return a & b, nil }},
	"fletch": {formRRR, func(a, b int64) (int64, error) { return a | b, nil }},
	"split": {formRRR, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, core.ErrDivideByZero
		}
		return a / b, nil
	}},
	"move":            {formRRI, func(a, b int64) (int64, error) { return checked(a + b) }},
	"torch":           {formRR, func(a, _ int64) (int64, error) { return ^a, nil }},
	"potion.strength": {formRR, func(a, _ int64) (int64, error) { return a * 2, nil }},
	"potion.weakness": {formRR, func(a, _ int64) (int64, error) { return a >> 1, nil }},
	"potion.speed":    {formRR, func(a, _ int64) (int64, error) { return a + 5, nil }},
	"potion.slowness": {formRR, func(a, _ int64) (int64, error) { return a - 5, nil }},
	"redstone":        {formRR, func(a, _ int64) (int64, error) { return a ^ 1, nil }},
	"farm":            {formRR, func(a, _ int64) (int64, error) { return a + 1, nil }},
}

// FunctionalChecker runs register-only instructions through an emulator
// and compares them with the reference model.
type FunctionalChecker struct {
	emu     *core.Emulator
	samples int
	seed    int64
}

func NewFunctionalChecker(emu *core.Emulator, seed int64) *FunctionalChecker {
	return &FunctionalChecker{
		emu:     emu,
		samples: len(valgen.Edges) * len(valgen.Edges),
		seed:    seed,
	}
}

// WithSamples sets how many operand pairs each instruction is tried with.
// The first len(Edges)^2 pairs are always the edge combinations.
func (fc *FunctionalChecker) WithSamples(n int) *FunctionalChecker {
	fc.samples = n
	return fc
}

// Covered lists the mnemonics of the catalog that have a reference.
func (fc *FunctionalChecker) Covered() []string {
	var out []string

	for _, s := range fc.emu.Catalog().Specs() {
		if _, ok := references[s.Mnemonic]; ok {
			out = append(out, s.Mnemonic)
		}
	}

	return out
}

// Run reports at most one issue per instruction, the first mismatch.
func (fc *FunctionalChecker) Run() []Issue {
	var issues []Issue

	pairs := valgen.Pairs(fc.samples, fc.seed)

	for _, name := range fc.Covered() {
		spec, _ := fc.emu.Catalog().LookupMnemonic(name)
		ref := references[name]

		for _, p := range pairs {
			if issue, ok := fc.checkOne(spec, ref, p[0], p[1]); !ok {
				issues = append(issues, issue)
				break
			}
		}
	}

	return issues
}

type fixedPC uint32

func (p fixedPC) Current() uint32    { return uint32(p) }
func (p fixedPC) SetTarget(_ uint32) {}

func (fc *FunctionalChecker) checkOne(
	spec *instr.Spec,
	ref reference,
	a, b int32,
) (Issue, bool) {
	var ops instr.Operands

	switch ref.form {
	case formRRR:
		ops = instr.Operands{dst, srcA, srcB}
	case formRR:
		ops = instr.Operands{dst, srcA}
	case formRRI:
		b = int32(int16(b))
		ops = instr.Operands{dst, srcA, b}
	}

	word, err := spec.Encode(ops)
	if err != nil {
		return Issue{
			Type:     IssueBehavior,
			Mnemonic: spec.Mnemonic,
			Message:  fmt.Sprintf("cannot encode %v: %v", ops, err),
		}, false
	}

	regs := core.NewRegisterFile()
	regs.Set(srcA, a)
	regs.Set(srcB, b)
	regs.Set(dst, sentinel)

	gotErr := fc.emu.Execute(word, regs, core.NewMemory(64), fixedPC(0x3004))
	got := regs.Get(dst)

	want, wantErr := ref.fn(int64(a), int64(b))

	mismatch := func(format string, args ...interface{}) (Issue, bool) {
		return Issue{
			Type:     IssueBehavior,
			Mnemonic: spec.Mnemonic,
			Word:     word,
			Message:  fmt.Sprintf("a=%d b=%d: ", a, b) + fmt.Sprintf(format, args...),
			Details:  map[string]interface{}{"a": a, "b": b, "got": got},
		}, false
	}

	switch {
	case wantErr != nil && !errors.Is(gotErr, wantErr):
		return mismatch("want fault %v, got %v", wantErr, gotErr)
	case wantErr != nil && got != sentinel:
		return mismatch("destination written on fault")
	case wantErr == nil && gotErr != nil:
		return mismatch("unexpected fault %v", gotErr)
	case wantErr == nil && got != int32(want):
		return mismatch("got %d, want %d", got, int32(want))
	}

	return Issue{}, true
}
