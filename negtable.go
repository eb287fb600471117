package main

import "math"

const (
	// defaultNegTableSize matches the word2vec convention. A table this much
	// larger than any realistic vocabulary guarantees every word with
	// nonzero smoothed weight lands at least one slot.
	defaultNegTableSize = 20000000

	// negTablePower smooths the unigram distribution toward uniform.
	negTablePower = 0.75
)

// makeNegTable builds the negative-sampling lookup table. Drawing a uniform
// table position yields LUT key i with probability close to
// count_i^power / sum_j count_j^power.
func makeNegTable(v *Vocabulary, tableSize int, power float64) []uint32 {
	vocabSize := v.Size()
	if vocabSize == 0 || tableSize <= 0 {
		return nil
	}

	var powerSum float64
	for key := 0; key < vocabSize; key++ {
		powerSum += math.Pow(float64(v.countOf(uint32(key))), power)
	}
	table := make([]uint32, tableSize)
	if powerSum == 0 {
		return table
	}

	// Sweep the table with a cursor over LUT keys, advancing the cursor
	// whenever the table's normalized progress passes the cumulative
	// smoothed share d1. The clamp keeps floating-point drift from pushing
	// the cursor past the last key.
	widx := 0
	d1 := math.Pow(float64(v.countOf(0)), power) / powerSum
	for tidx := range table {
		table[tidx] = uint32(widx)
		if float64(tidx)/float64(tableSize) > d1 {
			widx++
			if widx < vocabSize {
				d1 += math.Pow(float64(v.countOf(uint32(widx))), power) / powerSum
			}
		}
		if widx >= vocabSize {
			widx = vocabSize - 1
		}
	}

	return table
}
