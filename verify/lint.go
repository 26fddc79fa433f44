package verify

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/craftsim/instr"
)

// RunLint checks a table of instruction definitions and returns every
// issue found. Unlike instr.Catalog.Register it does not stop at the first
// problem. samples is the number of random operand vectors tried per
// instruction in the round-trip stage.
func RunLint(specs []instr.Spec, samples int, seed int64) []Issue {
	var issues []Issue

	// DEFINITION: compile every entry in isolation
	compiled := make([]*instr.Spec, 0, len(specs))
	seen := map[string]bool{}

	for _, spec := range specs {
		if seen[spec.Mnemonic] {
			issues = append(issues, Issue{
				Type:     IssueDefinition,
				Mnemonic: spec.Mnemonic,
				Message:  "mnemonic defined more than once",
			})
			continue
		}
		seen[spec.Mnemonic] = true

		s, err := compileOne(spec)
		if err != nil {
			issues = append(issues, Issue{
				Type:     IssueDefinition,
				Mnemonic: spec.Mnemonic,
				Message:  err.Error(),
				Details:  map[string]interface{}{"template": spec.Template, "syntax": spec.Syntax},
			})
			continue
		}

		compiled = append(compiled, s)
	}

	// COLLISION: pairwise overlap of fixed bits
	colliding := map[string]bool{}

	for i, a := range compiled {
		for _, b := range compiled[i+1:] {
			if !a.Encoding().Overlaps(b.Encoding()) {
				continue
			}

			colliding[a.Mnemonic] = true
			colliding[b.Mnemonic] = true

			witness := collisionWitness(a.Encoding(), b.Encoding())
			issues = append(issues, Issue{
				Type:     IssueCollision,
				Mnemonic: a.Mnemonic,
				Other:    b.Mnemonic,
				Word:     witness,
				Message:  fmt.Sprintf("0x%08x matches both", witness),
				Details: map[string]interface{}{
					"test_a": a.Encoding().Test, "mask_a": a.Encoding().Mask,
					"test_b": b.Encoding().Test, "mask_b": b.Encoding().Mask,
				},
			})
		}
	}

	// ROUNDTRIP: encode, decode and claim, skipping known collisions
	r := rand.New(rand.NewSource(seed))

	for _, s := range compiled {
		if colliding[s.Mnemonic] {
			continue
		}

		for n := 0; n < samples; n++ {
			ops := randomOperands(s, r)

			if issue, ok := roundTrip(s, ops, compiled); !ok {
				issues = append(issues, issue)
				break
			}
		}
	}

	return issues
}

// LintCatalog runs the round-trip stage against an already built catalog.
// A registered catalog cannot hold definition or collision problems.
func LintCatalog(c *instr.Catalog, samples int, seed int64) []Issue {
	var issues []Issue

	r := rand.New(rand.NewSource(seed))
	specs := c.Specs()

	for _, s := range specs {
		for n := 0; n < samples; n++ {
			if issue, ok := roundTrip(s, randomOperands(s, r), specs); !ok {
				issues = append(issues, issue)
				break
			}
		}
	}

	return issues
}

func compileOne(spec instr.Spec) (*instr.Spec, error) {
	scratch := instr.NewCatalog("lint", "")
	if err := scratch.Register(spec); err != nil {
		return nil, err
	}

	return scratch.LookupMnemonic(spec.Mnemonic)
}

// collisionWitness builds a word both encodings match. Overlapping
// encodings agree wherever both masks are set.
func collisionWitness(a, b instr.Encoding) uint32 {
	return (a.Test & a.Mask) | (b.Test & b.Mask)
}

func randomOperands(s *instr.Spec, r *rand.Rand) instr.Operands {
	enc := s.Encoding()
	ops := make(instr.Operands, enc.NumOperands())

	for _, f := range enc.Fields {
		v := int32(r.Uint32() & (uint32(1)<<f.Width - 1))
		if s.Format == instr.FormatI && f.Width == 16 {
			v = instr.SignExtend16(uint16(v))
		}
		ops[f.Operand] = v
	}

	return ops
}

func roundTrip(s *instr.Spec, ops instr.Operands, all []*instr.Spec) (Issue, bool) {
	fail := func(word uint32, format string, args ...interface{}) (Issue, bool) {
		return Issue{
			Type:     IssueRoundTrip,
			Mnemonic: s.Mnemonic,
			Word:     word,
			Message:  fmt.Sprintf(format, args...),
			Details:  map[string]interface{}{"operands": ops},
		}, false
	}

	word, err := s.Encode(ops)
	if err != nil {
		return fail(0, "encode %v: %v", ops, err)
	}

	back := s.Decode(word)
	if len(back) != len(ops) {
		return fail(word, "decoded %d operands, encoded %d", len(back), len(ops))
	}

	for i := range ops {
		if back[i] != ops[i] {
			return fail(word, "operand %d encoded %d decoded %d", i, ops[i], back[i])
		}
	}

	var owners []string

	for _, other := range all {
		if other.Encoding().Matches(word) {
			owners = append(owners, other.Mnemonic)
		}
	}

	if len(owners) != 1 || owners[0] != s.Mnemonic {
		return fail(word, "0x%08x claimed by %v", word, owners)
	}

	return Issue{}, true
}
