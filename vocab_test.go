package main

import (
	"strings"
	"testing"
)

func sentencesFromText(text string) SentenceSlice {
	var out SentenceSlice
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		out = append(out, strings.Fields(line))
	}
	return out
}

func TestBuildVocabMassConservation(t *testing.T) {
	sentences := sentencesFromText(`
the cat sat on the mat
the dog sat on the rug
a cat and a dog
`)
	var total uint64
	for _, s := range sentences {
		total += uint64(len(s))
	}

	vocab, err := BuildVocab(sentences, 2, 0)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}

	var sum uint64
	for _, item := range vocab.Items {
		sum += item.Count
	}
	if sum != total {
		t.Errorf("counts sum to %d after filtering, corpus had %d words", sum, total)
	}
	if vocab.TotalWords != total {
		t.Errorf("TotalWords = %d, want %d", vocab.TotalWords, total)
	}
}

func TestBuildVocabUnkFolding(t *testing.T) {
	sentences := sentencesFromText(`
the cat sat
the cat ran
mat rug bug
`)
	// min count 2 keeps "the" and "cat"; the rest fold into *UNK*
	vocab, err := BuildVocab(sentences, 2, 0)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}

	for _, rare := range []string{"sat", "ran", "mat", "rug", "bug"} {
		if _, ok := vocab.ToKey[rare]; ok {
			t.Errorf("word %q has count below threshold but received key %d", rare, vocab.ToKey[rare])
		}
	}
	if got := vocab.Items[UnkWord].Count; got != 5 {
		t.Errorf("unknown count = %d, want 5", got)
	}
	if vocab.Size() != 3 {
		t.Errorf("vocabulary size = %d, want 3 (the, cat, %s)", vocab.Size(), UnkWord)
	}
}

func TestBuildVocabRawUnkCarriedOver(t *testing.T) {
	// A raw *UNK* token below the threshold still gets its own key, and its
	// count absorbs the dropped words on top of its raw occurrence.
	sentences := SentenceSlice{{"the", "the", "the", UnkWord, "rare"}}
	vocab, err := BuildVocab(sentences, 2, 0)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}

	if _, ok := vocab.ToKey[UnkWord]; !ok {
		t.Fatalf("raw %s was not carried into the vocabulary", UnkWord)
	}
	if got := vocab.Items[UnkWord].Count; got != 2 {
		t.Errorf("unknown count = %d, want 2 (1 raw + 1 folded)", got)
	}
}

func TestBuildVocabRoundTrip(t *testing.T) {
	sentences := sentencesFromText(`
alpha beta gamma alpha
beta alpha delta beta
`)
	vocab, err := BuildVocab(sentences, 1, 0)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}

	for word, key := range vocab.ToKey {
		if back := vocab.ToWord[key]; back != word {
			t.Errorf("round trip %q -> %d -> %q", word, key, back)
		}
		if vocab.Items[word].Index != key {
			t.Errorf("word %q has Index %d but key %d", word, vocab.Items[word].Index, key)
		}
	}
	// keys must form a dense range
	for key := 0; key < vocab.Size(); key++ {
		if _, ok := vocab.ToWord[uint32(key)]; !ok {
			t.Errorf("key %d missing from dense range [0, %d)", key, vocab.Size())
		}
	}
}

func TestBuildVocabEmptyCorpus(t *testing.T) {
	vocab, err := BuildVocab(SentenceSlice{}, 5, 0)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}
	if vocab.Size() != 1 {
		t.Fatalf("empty corpus vocabulary size = %d, want 1", vocab.Size())
	}
	unk := vocab.Items[UnkWord]
	if unk == nil {
		t.Fatal("empty corpus vocabulary is missing the unknown sentinel")
	}
	if unk.Count != 0 {
		t.Errorf("unknown count = %d, want 0", unk.Count)
	}
	if unk.SampleProb != 1 {
		t.Errorf("unknown sample prob = %v, want 1", unk.SampleProb)
	}
}

func TestDownsamplingProbs(t *testing.T) {
	sentences := SentenceSlice{{
		"hot", "hot", "hot", "hot", "hot", "hot", "hot", "hot",
		"cold", "cold",
	}}
	vocab, err := BuildVocab(sentences, 1, 0.2)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}

	// hot: sqrt(0.2 / 0.8) = 0.5, cold: sqrt(0.2 / 0.2) = 1
	hot := vocab.Items["hot"].SampleProb
	cold := vocab.Items["cold"].SampleProb
	if diff := hot - 0.5; diff < -1e-12 || diff > 1e-12 {
		t.Errorf("hot sample prob = %v, want 0.5", hot)
	}
	if cold != 1 {
		t.Errorf("cold sample prob = %v, want 1", cold)
	}

	// disabled downsampling keeps everything
	vocab, err = BuildVocab(sentences, 1, 0)
	if err != nil {
		t.Fatalf("BuildVocab failed: %v", err)
	}
	for word, item := range vocab.Items {
		if item.SampleProb != 1 {
			t.Errorf("word %q has sample prob %v with downsampling off", word, item.SampleProb)
		}
	}
}
