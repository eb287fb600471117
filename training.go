package main

import (
	"fmt"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// TrainConfig collects the hyperparameters of a skip-gram training run.
type TrainConfig struct {
	Dim             int
	MaxWindow       int
	Batch           int
	NegCount        int
	Epochs          int
	BatchesPerEpoch int
	Warmup          int // epochs of linear learning-rate ramp
	LearnRate       float64
	Momentum        float64
	Clip            float64
	Seed            int64
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Dim:             64,
		MaxWindow:       5,
		Batch:           50,
		NegCount:        10,
		Epochs:          20,
		BatchesPerEpoch: 200,
		Warmup:          3,
		LearnRate:       0.05,
		Momentum:        0.9,
		Clip:            5.0,
		Seed:            1,
	}
}

// warmupRate ramps the learning rate linearly over the first Warmup epochs.
func (cfg TrainConfig) warmupRate(epoch int) float64 {
	if cfg.Warmup <= 0 || epoch >= cfg.Warmup {
		return cfg.LearnRate
	}
	return cfg.LearnRate * float64(epoch+1) / float64(cfg.Warmup)
}

// Train runs momentum SGD over batches drawn from the phrase and negative
// samplers. Gradients are clipped per step, and the learning rate warms up
// over the first cfg.Warmup epochs.
func Train(model *SkipGram, phrases *PhraseSampler, negs *NegSampler, cfg TrainConfig) error {
	vm := gorgonia.NewTapeMachine(model.g, gorgonia.BindDualValues(model.Learnables()...))
	defer vm.Close()

	fmt.Printf("Starting training for %d epochs of %d batches...\n", cfg.Epochs, cfg.BatchesPerEpoch)

	var solver *gorgonia.Momentum
	lastRate := 0.0
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if rate := cfg.warmupRate(epoch); solver == nil || rate != lastRate {
			solver = gorgonia.NewMomentum(
				gorgonia.WithLearnRate(rate),
				gorgonia.WithMomentum(cfg.Momentum),
				gorgonia.WithClip(cfg.Clip),
			)
			lastRate = rate
		}

		var lossSum float64
		for b := 0; b < cfg.BatchesPerEpoch; b++ {
			ancKeys, ctxKeys, _ := phrases.SamplePairs(cfg.Batch)
			negKeys := negs.Sample(cfg.Batch, cfg.NegCount)

			if err := gorgonia.Let(model.ancOneHot, oneHotBatch(ancKeys, model.vocab)); err != nil {
				return fmt.Errorf("setting anchor batch failed: %w", err)
			}
			if err := gorgonia.Let(model.ctxOneHot, oneHotBatch(ctxKeys, model.vocab)); err != nil {
				return fmt.Errorf("setting context batch failed: %w", err)
			}
			for k, negOneHot := range model.negOneHots {
				if err := gorgonia.Let(negOneHot, oneHotNegColumn(negKeys, k, model.vocab)); err != nil {
					return fmt.Errorf("setting negative batch %d failed: %w", k, err)
				}
			}

			vm.Reset()
			if err := vm.RunAll(); err != nil {
				return fmt.Errorf("vm.RunAll failed at epoch %d, batch %d: %w", epoch, b, err)
			}
			lossSum += float64(model.loss.Value().Data().(float32))

			if err := solver.Step(gorgonia.NodesToValueGrads(model.Learnables())); err != nil {
				return fmt.Errorf("solver step failed: %w", err)
			}
		}

		avgLoss := lossSum / float64(cfg.BatchesPerEpoch)
		if epoch%5 == 0 || epoch == cfg.Epochs-1 {
			fmt.Printf("Epoch %d: lr=%.4f avg loss=%.4f\n", epoch, lastRate, avgLoss)
		}
	}

	fmt.Println("Training completed!")
	return nil
}

// oneHotBatch encodes a batch of word keys as a one-hot matrix.
func oneHotBatch(keys []uint32, vocab int) *tensor.Dense {
	backing := make([]float32, len(keys)*vocab)
	for i, key := range keys {
		backing[i*vocab+int(key)] = 1
	}
	return tensor.New(tensor.WithShape(len(keys), vocab), tensor.WithBacking(backing))
}

// oneHotNegColumn encodes the k-th negative of every batch row as a one-hot
// matrix.
func oneHotNegColumn(negKeys [][]uint32, k, vocab int) *tensor.Dense {
	backing := make([]float32, len(negKeys)*vocab)
	for i, row := range negKeys {
		backing[i*vocab+int(row[k])] = 1
	}
	return tensor.New(tensor.WithShape(len(negKeys), vocab), tensor.WithBacking(backing))
}
