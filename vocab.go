package main

import (
	"fmt"
	"math"
)

// UnkWord is the sentinel that stands in for every word dropped by the
// frequency threshold (and for out-of-vocabulary words at phrase time).
const UnkWord = "*UNK*"

// Vocab holds the per-word statistics recorded while building a vocabulary.
type Vocab struct {
	Count      uint64
	Index      uint32
	SampleProb float64
}

// Vocabulary is the filtered, indexed word set produced by BuildVocab.
// Indices form the dense range [0, Size()). The three maps stay mutually
// consistent and are read-only after construction.
type Vocabulary struct {
	Items      map[string]*Vocab
	ToKey      map[string]uint32
	ToWord     map[uint32]string
	TotalWords uint64
}

// Size returns the number of indexed words, the unknown sentinel included.
func (v *Vocabulary) Size() int {
	return len(v.ToWord)
}

// UnkKey returns the LUT key of the unknown sentinel.
func (v *Vocabulary) UnkKey() uint32 {
	return v.ToKey[UnkWord]
}

// countOf returns the corpus count recorded for a LUT key.
func (v *Vocabulary) countOf(key uint32) uint64 {
	return v.Items[v.ToWord[key]].Count
}

// BuildVocab scans a corpus of sentences once and produces a Vocabulary.
//
// The scan works on one-shot streams, so all counting happens in a single
// traversal. Words seen fewer than minCount times do not get their own LUT
// key; their counts are folded into *UNK*, which is carried over whether or
// not it meets the threshold itself and created if it never appeared raw.
// Keys are assigned in first-encounter order, which keeps downstream tree
// construction reproducible for a given corpus.
func BuildVocab(sentences SentenceIterator, minCount int, downSample float64) (*Vocabulary, error) {
	if minCount < 1 {
		minCount = 1
	}
	rawCounts := make(map[string]uint64)
	var rawOrder []string
	sentenceNo := -1
	var totalWords uint64

	err := sentences.Iterate(func(sentence []string) error {
		sentenceNo++
		if sentenceNo%10000 == 0 {
			fmt.Printf("PROGRESS: at sentence #%d, processed %d words and %d word types\n",
				sentenceNo, totalWords, len(rawCounts))
		}
		for _, word := range sentence {
			totalWords++
			if _, seen := rawCounts[word]; !seen {
				rawOrder = append(rawOrder, word)
			}
			rawCounts[word]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus scan failed: %w", err)
	}
	fmt.Printf("collected %d word types from a corpus of %d words and %d sentences\n",
		len(rawCounts), totalWords, sentenceNo+1)

	v := &Vocabulary{
		Items:      make(map[string]*Vocab),
		ToKey:      make(map[string]uint32),
		ToWord:     make(map[uint32]string),
		TotalWords: totalWords,
	}

	// Assign dense keys to words that survive the threshold. Everything else
	// contributes its count to the unknown sentinel.
	var idx uint32
	var unkCount uint64
	for _, word := range rawOrder {
		count := rawCounts[word]
		if count >= uint64(minCount) || word == UnkWord {
			v.Items[word] = &Vocab{Count: count, Index: idx}
			v.ToKey[word] = idx
			v.ToWord[idx] = word
			idx++
		} else {
			unkCount += count
		}
	}
	if unk, ok := v.Items[UnkWord]; ok {
		unk.Count += unkCount
	} else {
		v.Items[UnkWord] = &Vocab{Count: unkCount, Index: idx}
		v.ToKey[UnkWord] = idx
		v.ToWord[idx] = UnkWord
	}
	fmt.Printf("total %d word types after removing those with count<%d\n",
		len(v.Items), minCount)

	precalcDownsampling(v, downSample)

	return v, nil
}

// precalcDownsampling writes each word's retention probability. Frequent
// words get probabilities below 1 so training can subsample them.
func precalcDownsampling(v *Vocabulary, downSample float64) {
	var totalWords uint64
	for _, item := range v.Items {
		totalWords += item.Count
	}
	for _, item := range v.Items {
		prob := 1.0
		if downSample > 0 && item.Count > 0 {
			prob = math.Sqrt(downSample / (float64(item.Count) / float64(totalWords)))
		}
		item.SampleProb = math.Min(prob, 1.0)
	}
}
