package main

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// WordSim is one nearest-neighbor hit.
type WordSim struct {
	Word string
	Sim  float64
}

// Neighbors ranks the topN words closest to a query word by cosine
// similarity over trained word vectors. It returns nil when the query is
// out of vocabulary.
func Neighbors(vectors [][]float32, v *Vocabulary, word string, topN int) []WordSim {
	key, ok := v.ToKey[word]
	if !ok {
		return nil
	}

	query := toFloat64(vectors[key])
	queryNorm := floats.Norm(query, 2)
	if queryNorm == 0 {
		return nil
	}

	sims := make([]WordSim, 0, len(vectors))
	for other := range vectors {
		if uint32(other) == key {
			continue
		}
		candidate := toFloat64(vectors[other])
		norm := floats.Norm(candidate, 2)
		if norm == 0 {
			continue
		}
		sims = append(sims, WordSim{
			Word: v.ToWord[uint32(other)],
			Sim:  floats.Dot(query, candidate) / (queryNorm * norm),
		})
	}

	sort.Slice(sims, func(i, j int) bool { return sims[i].Sim > sims[j].Sim })
	if len(sims) > topN {
		sims = sims[:topN]
	}
	return sims
}

func toFloat64(row []float32) []float64 {
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = float64(x)
	}
	return out
}
