// Some helpers using closures to generate operand values
package valgen

import (
	"math"
	"math/rand"
)

// Edges are the values where 32-bit arithmetic changes behavior.
var Edges = []int32{
	0, 1, -1, 2, -2, 5, -5,
	math.MaxInt32, math.MaxInt32 - 1, math.MinInt32, math.MinInt32 + 1,
	math.MaxInt16, math.MinInt16, 0x55555555, -0x55555556,
}

// MakeRandomGen returns a seeded generator that mixes edge values into
// uniformly random words.
func MakeRandomGen(seed int64) func() int32 {
	r := rand.New(rand.NewSource(seed))
	return func() int32 {
		if r.Intn(4) == 0 {
			return Edges[r.Intn(len(Edges))]
		}
		return int32(r.Uint32())
	}
}

// Pairs draws n operand pairs: every combination of edge values first,
// then random ones.
func Pairs(n int, seed int64) [][2]int32 {
	out := make([][2]int32, 0, n)
	for _, a := range Edges {
		for _, b := range Edges {
			if len(out) == n {
				return out
			}
			out = append(out, [2]int32{a, b})
		}
	}

	gen := MakeRandomGen(seed)
	for len(out) < n {
		out = append(out, [2]int32{gen(), gen()})
	}

	return out
}
