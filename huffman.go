package main

import (
	"container/heap"
	"fmt"

	"gorgonia.org/tensor"
)

// maxHSMKey bounds the code keys a hierarchical softmax layer has to index.
// Unused matrix entries are padded with maxHSMKey+1, so every real internal
// node key must stay at or below this value.
const maxHSMKey = 12345678

// HSMTree holds the binary Huffman codes for a vocabulary as two dense
// row-major matrices. Row k describes the root-to-leaf path of the word
// with LUT key k: CodeKeys are the internal-node keys visited and CodeSigns
// the branch decisions (-1 first child, +1 second child). Rows shorter than
// Cols are right-padded with maxHSMKey+1 keys and 0 signs, which lets a
// fixed-width matrix carry variable-length codes.
type HSMTree struct {
	CodeKeys   []uint32
	CodeSigns  []float32
	Rows, Cols int
	MaxCodeKey uint32
}

// KeyAt returns the code key at a row and code position.
func (t *HSMTree) KeyAt(row, pos int) uint32 {
	return t.CodeKeys[row*t.Cols+pos]
}

// SignAt returns the code sign at a row and code position.
func (t *HSMTree) SignAt(row, pos int) float32 {
	return t.CodeSigns[row*t.Cols+pos]
}

// CodeLen returns the unpadded code length of a row.
func (t *HSMTree) CodeLen(row int) int {
	n := 0
	for pos := 0; pos < t.Cols; pos++ {
		if t.CodeKeys[row*t.Cols+pos] > maxHSMKey {
			break
		}
		n++
	}
	return n
}

// KeysTensor returns the code key matrix as a tensor for the loss layer.
// Degenerate trees with no code positions have no tensor form.
func (t *HSMTree) KeysTensor() *tensor.Dense {
	if t.Rows == 0 || t.Cols == 0 {
		return nil
	}
	return tensor.New(tensor.WithShape(t.Rows, t.Cols), tensor.WithBacking(t.CodeKeys))
}

// SignsTensor returns the code sign matrix as a tensor for the loss layer.
func (t *HSMTree) SignsTensor() *tensor.Dense {
	if t.Rows == 0 || t.Cols == 0 {
		return nil
	}
	return tensor.New(tensor.WithShape(t.Rows, t.Cols), tensor.WithBacking(t.CodeSigns))
}

// hsmNode is one arena slot of the Huffman tree. Leaves carry a LUT key in
// index and have left = right = -1. Internal nodes carry index offset by
// the vocabulary size and reference their children by arena position.
type hsmNode struct {
	count       uint64
	index       int
	left, right int
}

// hsmHeap is a min-heap of arena positions ordered by node count.
type hsmHeap struct {
	arena *[]hsmNode
	slots []int
}

func (h *hsmHeap) Len() int { return len(h.slots) }

func (h *hsmHeap) Less(i, j int) bool {
	return (*h.arena)[h.slots[i]].count < (*h.arena)[h.slots[j]].count
}

func (h *hsmHeap) Swap(i, j int) {
	h.slots[i], h.slots[j] = h.slots[j], h.slots[i]
}

func (h *hsmHeap) Push(x interface{}) {
	h.slots = append(h.slots, x.(int))
}

func (h *hsmHeap) Pop() interface{} {
	n := len(h.slots) - 1
	v := h.slots[n]
	h.slots = h.slots[:n]
	return v
}

// BuildHSMTree builds the Huffman code matrices for a vocabulary. Frequent
// words end up with shorter codes.
func BuildHSMTree(v *Vocabulary) (*HSMTree, error) {
	vocabSize := v.Size()
	if vocabSize == 0 {
		return &HSMTree{}, nil
	}
	if vocabSize >= 2 && uint64(vocabSize-2) > uint64(maxHSMKey) {
		return nil, fmt.Errorf("vocabulary of %d words needs internal-node keys beyond the %d sentinel", vocabSize, maxHSMKey)
	}

	// Seed the arena with one leaf per word in LUT key order, then merge the
	// two lowest-count nodes until a single root remains.
	arena := make([]hsmNode, 0, 2*vocabSize)
	for key := 0; key < vocabSize; key++ {
		arena = append(arena, hsmNode{count: v.countOf(uint32(key)), index: key, left: -1, right: -1})
	}
	h := &hsmHeap{arena: &arena, slots: make([]int, vocabSize)}
	for i := range h.slots {
		h.slots[i] = i
	}
	heap.Init(h)
	for i := 0; i < vocabSize-1; i++ {
		min1 := heap.Pop(h).(int)
		min2 := heap.Pop(h).(int)
		arena = append(arena, hsmNode{
			count: arena[min1].count + arena[min2].count,
			index: vocabSize + i,
			left:  min1,
			right: min2,
		})
		heap.Push(h, len(arena)-1)
	}

	// Walk the tree with an explicit stack. Recursion is off the table here
	// since skewed count distributions produce very deep trees.
	codeKeys := make([][]uint32, vocabSize)
	codeSigns := make([][]float32, vocabSize)
	type walkFrame struct {
		slot  int
		keys  []uint32
		signs []float32
	}
	stack := []walkFrame{{slot: h.slots[0]}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := arena[frame.slot]
		if node.index < vocabSize {
			codeKeys[node.index] = frame.keys
			codeSigns[node.index] = frame.signs
			continue
		}
		keys := make([]uint32, len(frame.keys)+1)
		copy(keys, frame.keys)
		keys[len(frame.keys)] = uint32(node.index - vocabSize)
		leftSigns := make([]float32, len(frame.signs)+1)
		copy(leftSigns, frame.signs)
		leftSigns[len(frame.signs)] = -1
		rightSigns := make([]float32, len(frame.signs)+1)
		copy(rightSigns, frame.signs)
		rightSigns[len(frame.signs)] = 1
		stack = append(stack,
			walkFrame{slot: node.left, keys: keys, signs: leftSigns},
			walkFrame{slot: node.right, keys: keys, signs: rightSigns},
		)
	}

	maxCodeLen := 0
	for _, code := range codeKeys {
		if len(code) > maxCodeLen {
			maxCodeLen = len(code)
		}
	}

	tree := &HSMTree{
		CodeKeys:  make([]uint32, vocabSize*maxCodeLen),
		CodeSigns: make([]float32, vocabSize*maxCodeLen),
		Rows:      vocabSize,
		Cols:      maxCodeLen,
	}
	for k := 0; k < vocabSize; k++ {
		code := codeKeys[k]
		signs := codeSigns[k]
		for j := 0; j < maxCodeLen; j++ {
			if j >= len(code) {
				tree.CodeKeys[k*maxCodeLen+j] = maxHSMKey + 1
				continue
			}
			tree.CodeKeys[k*maxCodeLen+j] = code[j]
			tree.CodeSigns[k*maxCodeLen+j] = signs[j]
			if code[j] > tree.MaxCodeKey {
				tree.MaxCodeKey = code[j]
			}
		}
	}

	return tree, nil
}
