package model

import (
	"math"
	"testing"
)

func TestSoftmax(t *testing.T) {
	row := softmax([]float32{1, 2, 3})

	var sum float64
	for _, p := range row {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("softmax sums to %v, want 1", sum)
	}

	if !(row[2] > row[1] && row[1] > row[0]) {
		t.Errorf("softmax order not preserved: %v", row)
	}
}

func TestSoftmaxLargeLogits(t *testing.T) {
	// Max subtraction keeps large logits from overflowing.
	row := softmax([]float32{1000, 1001})

	if math.IsNaN(row[0]) || math.IsInf(row[1], 0) {
		t.Fatalf("softmax unstable: %v", row)
	}
	var sum float64
	for _, p := range row {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("softmax sums to %v, want 1", sum)
	}
}

func TestDefaultSpecialTokens(t *testing.T) {
	special := make(map[string]bool)
	for _, s := range DefaultSpecialTokens() {
		special[s] = true
	}
	for _, want := range []string{"[CLS]", "[SEP]", "<s>"} {
		if !special[want] {
			t.Errorf("missing special token %q", want)
		}
	}
}
