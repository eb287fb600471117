package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gorgonia.org/gorgonia"
)

func main() {
	corpusDir := flag.String("corpus", "./training_text", "directory of .txt corpus files")
	minCount := flag.Int("min-count", 5, "drop words seen fewer times than this")
	downSample := flag.Float64("down-sample", 0.0, "frequent-word downsampling threshold (0 disables)")
	maxPhrases := flag.Int("max-phrases", 100000, "maximum phrases to index for sampling")
	maxPhraseKey := flag.Int("max-phrase-key", 50000, "phrase-embedding key space bound")
	dim := flag.Int("dim", 64, "embedding dimensions")
	window := flag.Int("window", 5, "maximum skip-gram window radius")
	batch := flag.Int("batch", 50, "training batch size")
	negCount := flag.Int("negs", 10, "negative samples per pair")
	epochs := flag.Int("epochs", 20, "training epochs")
	batchesPerEpoch := flag.Int("batches", 200, "batches per epoch")
	learnRate := flag.Float64("lr", 0.05, "peak learning rate")
	seed := flag.Int64("seed", 0, "random seed (0 seeds from the clock)")
	queries := flag.String("queries", "", "space-separated words to print neighbors for")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	fmt.Println("🧠 TinyEmbed - Skip-Gram Word Embeddings")
	fmt.Println("========================================")

	// Build the vocabulary from a single streaming pass over the corpus
	fmt.Println("\n📝 Building vocabulary...")
	sentences := NewSentenceDir(*corpusDir)
	vocab, err := BuildVocab(sentences, *minCount, *downSample)
	if err != nil {
		log.Fatalf("Building vocabulary failed: %v", err)
	}
	fmt.Printf("Vocabulary size: %d (unknown key %d)\n", vocab.Size(), vocab.UnkKey())

	// Hierarchical-softmax codes, available to any HSM loss layer
	fmt.Println("\n🌳 Building Huffman codes...")
	tree, err := BuildHSMTree(vocab)
	if err != nil {
		log.Fatalf("Building Huffman tree failed: %v", err)
	}
	fmt.Printf("Code matrix: %d x %d, max code key %d\n", tree.Rows, tree.Cols, tree.MaxCodeKey)

	// Negative-sampling table
	fmt.Println("\n🎲 Building negative-sampling table...")
	negTable := makeNegTable(vocab, defaultNegTableSize, negTablePower)
	fmt.Printf("Table size: %d entries\n", len(negTable))

	// Index phrases for skip-gram pair sampling
	fmt.Println("\n📚 Indexing phrases...")
	phrases, err := IndexPhrases(sentences, vocab, *maxPhrases)
	if err != nil {
		log.Fatalf("Indexing phrases failed: %v", err)
	}
	sampleable := phrases[:0]
	for _, phrase := range phrases {
		if len(phrase) >= 2 {
			sampleable = append(sampleable, phrase)
		}
	}
	fmt.Printf("Indexed %d phrases (%d sampleable)\n", len(phrases), len(sampleable))

	phraseSampler, err := NewPhraseSampler(sampleable, *window, *maxPhraseKey, *seed)
	if err != nil {
		log.Fatalf("Creating phrase sampler failed: %v", err)
	}
	negSampler := NewNegSampler(negTable, *negCount, *seed+1)

	// Train skip-gram embeddings on sampled pairs
	fmt.Println("\n🏋️ Training model...")
	cfg := DefaultTrainConfig()
	cfg.Dim = *dim
	cfg.MaxWindow = *window
	cfg.Batch = *batch
	cfg.NegCount = *negCount
	cfg.Epochs = *epochs
	cfg.BatchesPerEpoch = *batchesPerEpoch
	cfg.LearnRate = *learnRate
	cfg.Seed = *seed

	g := gorgonia.NewGraph()
	model, err := NewSkipGram(g, vocab.Size(), cfg.Dim, cfg.Batch, cfg.NegCount)
	if err != nil {
		log.Fatalf("Building model failed: %v", err)
	}
	fmt.Printf("Model parameters: %d\n", 2*vocab.Size()*cfg.Dim)

	if err := Train(model, phraseSampler, negSampler, cfg); err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	// Qualitative check: nearest neighbors of a few words
	fmt.Println("\n🔍 Nearest neighbors:")
	vectors := model.WordVectors()
	for _, word := range queryWords(*queries, vocab) {
		fmt.Printf("\n%q:\n", word)
		for _, hit := range Neighbors(vectors, vocab, word, 5) {
			fmt.Printf("  %-20q %.4f\n", hit.Word, hit.Sim)
		}
	}

	fmt.Println("\n✅ TinyEmbed demonstration complete!")
}

// queryWords picks the words to show neighbors for: the requested ones, or
// the five most frequent non-sentinel words when none were requested.
func queryWords(requested string, vocab *Vocabulary) []string {
	if requested != "" {
		var words []string
		for _, w := range strings.Fields(requested) {
			if _, ok := vocab.ToKey[w]; ok {
				words = append(words, w)
			}
		}
		return words
	}

	type wordCount struct {
		word  string
		count uint64
	}
	var all []wordCount
	for word, item := range vocab.Items {
		if word == UnkWord {
			continue
		}
		all = append(all, wordCount{word, item.Count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word < all[j].word
	})
	var words []string
	for i := 0; i < len(all) && i < 5; i++ {
		words = append(words, all[i].word)
	}
	return words
}
