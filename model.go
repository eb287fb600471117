package main

import (
	"fmt"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Embedding is a trainable lookup table of word vectors.
type Embedding struct {
	weights *gorgonia.Node
	dim     int
}

func NewEmbedding(g *gorgonia.ExprGraph, name string, vocab, dim int) *Embedding {
	w := gorgonia.NewMatrix(g,
		tensor.Float32,
		gorgonia.WithShape(vocab, dim),
		gorgonia.WithName(name),
		gorgonia.WithInit(gorgonia.GlorotU(1.0)),
	)
	return &Embedding{weights: w, dim: dim}
}

// Lookup selects one embedding row per batch element by multiplying a
// one-hot batch matrix with the weights. Gather-style indexing is awkward
// to express here, so batches are fed as one-hot matrices instead.
func (e *Embedding) Lookup(oneHot *gorgonia.Node) (*gorgonia.Node, error) {
	return gorgonia.Mul(oneHot, e.weights)
}

// SkipGram is a skip-gram model trained with negative sampling. Anchor
// words are embedded through wIn, context and negative words through wOut,
// and the loss contrasts the anchor/context dot product against the dot
// products with negCount contrastive words:
//
//	loss = -mean log sigmoid(a.c) - sum_k mean log sigmoid(-a.n_k)
//
// The graph is built once for a fixed batch size; the trainer feeds it
// one-hot key matrices every step.
type SkipGram struct {
	g          *gorgonia.ExprGraph
	wIn, wOut  *Embedding
	ancOneHot  *gorgonia.Node
	ctxOneHot  *gorgonia.Node
	negOneHots []*gorgonia.Node
	loss       *gorgonia.Node

	vocab, dim, batch, negCount int
}

func NewSkipGram(g *gorgonia.ExprGraph, vocab, dim, batch, negCount int) (*SkipGram, error) {
	m := &SkipGram{
		g:        g,
		wIn:      NewEmbedding(g, "word_embed", vocab, dim),
		wOut:     NewEmbedding(g, "ctx_embed", vocab, dim),
		vocab:    vocab,
		dim:      dim,
		batch:    batch,
		negCount: negCount,
	}

	m.ancOneHot = gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(batch, vocab), gorgonia.WithName("anc_onehot"))
	m.ctxOneHot = gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(batch, vocab), gorgonia.WithName("ctx_onehot"))
	for k := 0; k < negCount; k++ {
		m.negOneHots = append(m.negOneHots, gorgonia.NewMatrix(g, tensor.Float32,
			gorgonia.WithShape(batch, vocab), gorgonia.WithName(fmt.Sprintf("neg_onehot_%d", k))))
	}

	ancEmb, err := m.wIn.Lookup(m.ancOneHot)
	if err != nil {
		return nil, fmt.Errorf("anchor embedding failed: %w", err)
	}
	ctxEmb, err := m.wOut.Lookup(m.ctxOneHot)
	if err != nil {
		return nil, fmt.Errorf("context embedding failed: %w", err)
	}

	posLoss, err := pairLoss(ancEmb, ctxEmb, false)
	if err != nil {
		return nil, fmt.Errorf("positive loss failed: %w", err)
	}
	loss := posLoss
	for k, negOneHot := range m.negOneHots {
		negEmb, err := m.wOut.Lookup(negOneHot)
		if err != nil {
			return nil, fmt.Errorf("negative embedding %d failed: %w", k, err)
		}
		negLoss, err := pairLoss(ancEmb, negEmb, true)
		if err != nil {
			return nil, fmt.Errorf("negative loss %d failed: %w", k, err)
		}
		if loss, err = gorgonia.Add(loss, negLoss); err != nil {
			return nil, fmt.Errorf("loss accumulation failed: %w", err)
		}
	}
	m.loss = loss

	if _, err := gorgonia.Grad(m.loss, m.Learnables()...); err != nil {
		return nil, fmt.Errorf("gradient construction failed: %w", err)
	}

	return m, nil
}

// pairLoss computes -mean log sigmoid(rowdot(a, b)), with the dot products
// negated for contrastive pairs.
func pairLoss(a, b *gorgonia.Node, contrastive bool) (*gorgonia.Node, error) {
	prod, err := gorgonia.HadamardProd(a, b)
	if err != nil {
		return nil, err
	}
	scores, err := gorgonia.Sum(prod, 1)
	if err != nil {
		return nil, err
	}
	if contrastive {
		if scores, err = gorgonia.Neg(scores); err != nil {
			return nil, err
		}
	}
	probs, err := gorgonia.Sigmoid(scores)
	if err != nil {
		return nil, err
	}
	logProbs, err := gorgonia.Log(probs)
	if err != nil {
		return nil, err
	}
	meanLogProb, err := gorgonia.Mean(logProbs)
	if err != nil {
		return nil, err
	}
	return gorgonia.Neg(meanLogProb)
}

// Learnables returns the trainable parameters.
func (m *SkipGram) Learnables() gorgonia.Nodes {
	return gorgonia.Nodes{m.wIn.weights, m.wOut.weights}
}

// Loss returns the scalar loss node.
func (m *SkipGram) Loss() *gorgonia.Node {
	return m.loss
}

// WordVectors copies the trained input embedding out of the graph, one
// row per vocabulary key.
func (m *SkipGram) WordVectors() [][]float32 {
	val := m.wIn.weights.Value()
	if val == nil {
		return nil
	}
	flat := val.Data().([]float32)
	rows := make([][]float32, m.vocab)
	for i := 0; i < m.vocab; i++ {
		row := make([]float32, m.dim)
		copy(row, flat[i*m.dim:(i+1)*m.dim])
		rows[i] = row
	}
	return rows
}
