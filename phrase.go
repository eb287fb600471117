package main

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	// defaultPhraseTableSize mirrors the negative-sampling table size.
	defaultPhraseTableSize = 20000000

	// randPoolFactor oversizes the pre-drawn random pool relative to the
	// requested sample count. Ten ints per sample is generous: a pair draw
	// consumes three ints plus one per collision retry, an n-gram draw one.
	randPoolFactor = 10

	// maxSampleRepeats caps how many samples share one phrase-table draw.
	maxSampleRepeats = 5
)

var errStopScan = errors.New("stop scan")

// IndexPhrases maps a stream of sentences through the vocabulary, turning
// each into a phrase of LUT keys. Out-of-vocabulary words map to the
// unknown key. At most maxPhrases phrases are collected.
func IndexPhrases(sentences SentenceIterator, v *Vocabulary, maxPhrases int) ([][]uint32, error) {
	unkKey := v.UnkKey()
	var phrases [][]uint32
	err := sentences.Iterate(func(sentence []string) error {
		keys := make([]uint32, len(sentence))
		for i, word := range sentence {
			if key, ok := v.ToKey[word]; ok {
				keys[i] = key
			} else {
				keys[i] = unkKey
			}
		}
		phrases = append(phrases, keys)
		if len(phrases) >= maxPhrases {
			return errStopScan
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, fmt.Errorf("indexing phrases failed: %w", err)
	}
	return phrases, nil
}

// randPool is a batch of pre-drawn uniform ints consumed through a single
// advancing cursor. Drawing random ints in bulk keeps the per-decision cost
// of the sampling inner loops down. A pool belongs to one call and must not
// be shared across goroutines.
type randPool struct {
	ints []uint32
	next int
}

func newRandPool(rng *rand.Rand, size, max int) *randPool {
	ints := make([]uint32, size)
	for i := range ints {
		ints[i] = uint32(rng.Intn(max))
	}
	return &randPool{ints: ints}
}

// draw returns the next pooled int. Exhausting the pool means the sizing
// invariant was violated, which is a bug rather than a recoverable state.
func (p *randPool) draw() uint32 {
	if p.next >= len(p.ints) {
		panic("tinyembed: random pool exhausted, pool sizing invariant violated")
	}
	v := p.ints[p.next]
	p.next++
	return v
}

// sampleRepeats returns the largest divisor of n that is at most
// maxSampleRepeats, so sample batches can be drawn in even groups that
// share one phrase-table lookup.
func sampleRepeats(n int) int {
	repeats := maxSampleRepeats
	for n%repeats != 0 {
		repeats--
	}
	return repeats
}

// PhraseSampler draws skip-gram training pairs and n-gram windows from an
// immutable collection of indexed phrases. Phrase selection is biased by
// phrase length through a cumulative table, so longer phrases are picked in
// proportion to the number of positions they contain.
type PhraseSampler struct {
	phrases      [][]uint32
	phraseTable  []uint32
	maxWindow    int
	maxPhraseKey uint32
	rng          *rand.Rand
}

// NewPhraseSampler indexes phrases for sampling. Phrases shorter than two
// keys are rejected up front: a one-key phrase has no distinct context
// position for pair sampling and no valid stop position for n-grams.
func NewPhraseSampler(phrases [][]uint32, maxWindow, maxPhraseKey int, seed int64) (*PhraseSampler, error) {
	return newPhraseSampler(phrases, maxWindow, maxPhraseKey, defaultPhraseTableSize, seed)
}

func newPhraseSampler(phrases [][]uint32, maxWindow, maxPhraseKey, tableSize int, seed int64) (*PhraseSampler, error) {
	if len(phrases) == 0 {
		return nil, errors.New("phrase sampler needs at least one phrase")
	}
	if maxWindow < 1 {
		return nil, fmt.Errorf("max window must be at least 1, got %d", maxWindow)
	}
	if maxPhraseKey < 1 {
		return nil, fmt.Errorf("max phrase key must be at least 1, got %d", maxPhraseKey)
	}
	for i, phrase := range phrases {
		if len(phrase) < 2 {
			return nil, fmt.Errorf("phrase #%d has %d keys, sampling needs at least 2", i, len(phrase))
		}
	}
	if maxPhraseKey > len(phrases) {
		maxPhraseKey = len(phrases)
	}
	return &PhraseSampler{
		phrases:      phrases,
		phraseTable:  makePhraseTable(phrases, tableSize),
		maxWindow:    maxWindow,
		maxPhraseKey: uint32(maxPhraseKey),
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

// makePhraseTable builds a cumulative table over phrase keys weighted by
// phrase length, the same sweep used for the negative-sampling table.
func makePhraseTable(phrases [][]uint32, tableSize int) []uint32 {
	var lenSum float64
	for _, phrase := range phrases {
		lenSum += float64(len(phrase))
	}
	table := make([]uint32, tableSize)
	widx := 0
	d1 := float64(len(phrases[0])) / lenSum
	for tidx := range table {
		table[tidx] = uint32(widx)
		if float64(tidx)/float64(tableSize) > d1 {
			widx++
			if widx < len(phrases) {
				d1 += float64(len(phrases[widx])) / lenSum
			}
		}
		if widx >= len(phrases) {
			widx = len(phrases) - 1
		}
	}
	return table
}

// SamplePairs draws n (anchor, context, phrase) key triples for skip-gram
// training. Each draw picks a length-biased phrase, a uniform anchor
// position, a uniform window radius in [1, maxWindow] and a uniform context
// position within the clipped window, resampling until the context position
// differs from the anchor. Returned phrase keys are clamped to
// maxPhraseKey-1 so they always index a bounded phrase-embedding table.
func (s *PhraseSampler) SamplePairs(n int) (ancKeys, ctxKeys, phraseKeys []uint32) {
	if n <= 0 {
		return nil, nil, nil
	}
	ancKeys = make([]uint32, n)
	ctxKeys = make([]uint32, n)
	phraseKeys = make([]uint32, n)

	pool := newRandPool(s.rng, randPoolFactor*n, len(s.phraseTable))
	repeats := sampleRepeats(n)
	for i := 0; i < n; i += repeats {
		pKey := s.phraseTable[pool.draw()]
		phrase := s.phrases[pKey]
		phraseLen := len(phrase)
		for r := 0; r < repeats; r++ {
			j := i + r
			aIdx := int(pool.draw()) % phraseLen
			radius := int(pool.draw())%s.maxWindow + 1
			cMin := aIdx - radius
			if cMin < 0 {
				cMin = 0
			}
			cMax := aIdx + radius
			if cMax >= phraseLen {
				cMax = phraseLen - 1
			}
			cSpan := cMax - cMin + 1
			cIdx := aIdx
			for cIdx == aIdx {
				cIdx = cMin + int(pool.draw())%cSpan
			}
			ancKeys[j] = phrase[aIdx]
			ctxKeys[j] = phrase[cIdx]
			phraseKeys[j] = pKey
		}
	}

	clampPhraseKeys(phraseKeys, s.maxPhraseKey)
	return ancKeys, ctxKeys, phraseKeys
}

// SampleNgrams draws n windows of gramN keys each, plus the phrase key each
// window came from. Every window ends at a uniform stop position in
// [1, phraseLen-1], so it always holds at least one context key and one
// predicted key. Window positions falling before the phrase start are
// filled with padKey.
func (s *PhraseSampler) SampleNgrams(n, gramN int, padKey uint32) (keySeqs [][]uint32, phraseKeys []uint32) {
	if n <= 0 {
		return nil, nil
	}
	keySeqs = make([][]uint32, n)
	phraseKeys = make([]uint32, n)

	pool := newRandPool(s.rng, randPoolFactor*n, len(s.phraseTable))
	repeats := sampleRepeats(n)
	for i := 0; i < n; i += repeats {
		pKey := s.phraseTable[pool.draw()]
		phrase := s.phrases[pKey]
		phraseLen := len(phrase)
		for r := 0; r < repeats; r++ {
			j := i + r
			stopIdx := int(pool.draw())%(phraseLen-1) + 1
			startIdx := stopIdx - gramN + 1
			row := make([]uint32, gramN)
			for pos := 0; pos < gramN; pos++ {
				if startIdx+pos < 0 {
					row[pos] = padKey
				} else {
					row[pos] = phrase[startIdx+pos]
				}
			}
			keySeqs[j] = row
			phraseKeys[j] = pKey
		}
	}

	clampPhraseKeys(phraseKeys, s.maxPhraseKey)
	return keySeqs, phraseKeys
}

func clampPhraseKeys(keys []uint32, maxPhraseKey uint32) {
	capKey := maxPhraseKey - 1
	for i, k := range keys {
		if k > capKey {
			keys[i] = capKey
		}
	}
}
