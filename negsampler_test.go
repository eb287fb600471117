package main

import "testing"

func TestNegSamplerShape(t *testing.T) {
	vocab := vocabFromCounts([]string{"a", "b", "c"}, []uint64{1, 2, 4})
	table := makeNegTable(vocab, 10000, 0.75)
	s := NewNegSampler(table, 10, 5)

	keys := s.Sample(7, 3)
	if len(keys) != 7 {
		t.Fatalf("got %d rows, want 7", len(keys))
	}
	for i, row := range keys {
		if len(row) != 3 {
			t.Fatalf("row %d has %d keys, want 3", i, len(row))
		}
		for j, key := range row {
			if int(key) >= vocab.Size() {
				t.Fatalf("row %d key %d holds out-of-range key %d", i, j, key)
			}
		}
	}
}

func TestNegSamplerDefaultCount(t *testing.T) {
	s := NewNegSampler([]uint32{7}, 4, 5)
	keys := s.Sample(3, 0)
	for i, row := range keys {
		if len(row) != 4 {
			t.Fatalf("row %d has %d keys, want the configured default 4", i, len(row))
		}
		for _, key := range row {
			if key != 7 {
				t.Fatalf("row %d holds key %d, table only contains 7", i, key)
			}
		}
	}
}
