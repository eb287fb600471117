package main

import (
	"math"
	"testing"

	"gorgonia.org/gorgonia"
)

func TestSkipGramTrainingStep(t *testing.T) {
	const (
		vocabSize = 6
		dim       = 8
		batch     = 4
		negCount  = 2
	)

	g := gorgonia.NewGraph()
	model, err := NewSkipGram(g, vocabSize, dim, batch, negCount)
	if err != nil {
		t.Fatalf("NewSkipGram failed: %v", err)
	}

	vm := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(model.Learnables()...))
	defer vm.Close()

	ancKeys := []uint32{0, 1, 2, 3}
	ctxKeys := []uint32{1, 2, 3, 4}
	negKeys := [][]uint32{{4, 5}, {5, 0}, {0, 5}, {5, 1}}

	if err := gorgonia.Let(model.ancOneHot, oneHotBatch(ancKeys, vocabSize)); err != nil {
		t.Fatalf("setting anchors failed: %v", err)
	}
	if err := gorgonia.Let(model.ctxOneHot, oneHotBatch(ctxKeys, vocabSize)); err != nil {
		t.Fatalf("setting contexts failed: %v", err)
	}
	for k, negOneHot := range model.negOneHots {
		if err := gorgonia.Let(negOneHot, oneHotNegColumn(negKeys, k, vocabSize)); err != nil {
			t.Fatalf("setting negatives %d failed: %v", k, err)
		}
	}

	if err := vm.RunAll(); err != nil {
		t.Fatalf("vm.RunAll failed: %v", err)
	}

	loss := float64(model.Loss().Value().Data().(float32))
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		t.Fatalf("loss = %v, want a finite value", loss)
	}
	if loss <= 0 {
		t.Errorf("loss = %v, want positive (sum of %d negative log sigmoids)", loss, negCount+1)
	}

	solver := gorgonia.NewMomentum(
		gorgonia.WithLearnRate(0.1),
		gorgonia.WithMomentum(0.9),
		gorgonia.WithClip(5.0),
	)
	if err := solver.Step(gorgonia.NodesToValueGrads(model.Learnables())); err != nil {
		t.Fatalf("solver step failed: %v", err)
	}

	vectors := model.WordVectors()
	if len(vectors) != vocabSize {
		t.Fatalf("got %d word vectors, want %d", len(vectors), vocabSize)
	}
	for key, row := range vectors {
		if len(row) != dim {
			t.Fatalf("vector for key %d has %d dims, want %d", key, len(row), dim)
		}
	}
}

func TestWarmupRate(t *testing.T) {
	cfg := DefaultTrainConfig()
	cfg.LearnRate = 0.3
	cfg.Warmup = 3

	wants := []float64{0.1, 0.2, 0.3, 0.3, 0.3}
	for epoch, want := range wants {
		got := cfg.warmupRate(epoch)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("warmupRate(%d) = %v, want %v", epoch, got, want)
		}
	}

	cfg.Warmup = 0
	if got := cfg.warmupRate(0); got != 0.3 {
		t.Errorf("warmupRate with no warm-up = %v, want 0.3", got)
	}
}
