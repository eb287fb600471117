package main

import "math/rand"

// NegSampler draws contrastive word keys for negative-sampling training.
// The wrapped table is read-only, so one table can back many samplers.
type NegSampler struct {
	table    []uint32
	negCount int
	rng      *rand.Rand
}

func NewNegSampler(table []uint32, negCount int, seed int64) *NegSampler {
	return &NegSampler{
		table:    table,
		negCount: negCount,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Sample returns an n by k matrix of word keys drawn independently from
// uniform table positions, and therefore count^0.75-biased in key space.
// A k of 0 or less means the sampler's configured default.
func (s *NegSampler) Sample(n, k int) [][]uint32 {
	if k <= 0 {
		k = s.negCount
	}
	negKeys := make([][]uint32, n)
	for i := range negKeys {
		row := make([]uint32, k)
		for j := range row {
			row[j] = s.table[s.rng.Intn(len(s.table))]
		}
		negKeys[i] = row
	}
	return negKeys
}
