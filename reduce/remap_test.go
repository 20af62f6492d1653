package reduce

import (
	"errors"
	"math"
	"testing"
)

func TestReduceLabels(t *testing.T) {
	// CoNLL-2003: O B-MISC I-MISC B-PER I-PER B-ORG I-ORG B-LOC I-LOC
	// collapses to O MISC PER ORG LOC.
	cm, err := NewClassMap([]int{0, 1, 1, 2, 2, 3, 3, 4, 4})
	if err != nil {
		t.Fatalf("NewClassMap failed: %v", err)
	}
	if cm.NumCoarse() != 5 {
		t.Fatalf("NumCoarse = %d, want 5", cm.NumCoarse())
	}

	// "EU rejects German call to boycott British lamb ." with B-ORG=5.
	fine := []int{5, 0, 1, 0, 0, 0, 1, 0, 0}
	got, err := cm.ReduceLabels(fine)
	if err != nil {
		t.Fatalf("ReduceLabels failed: %v", err)
	}

	want := []int{3, 0, 1, 0, 0, 0, 1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReduceLabelsOutOfRange(t *testing.T) {
	cm, err := NewClassMap([]int{0, 1})
	if err != nil {
		t.Fatalf("NewClassMap failed: %v", err)
	}
	if _, err := cm.ReduceLabels([]int{0, 7}); err == nil {
		t.Error("expected error for out-of-range label")
	}
}

func TestReduceProbsMergesColumns(t *testing.T) {
	cm, err := NewClassMap([]int{0, 1, 1})
	if err != nil {
		t.Fatalf("NewClassMap failed: %v", err)
	}

	probs := [][]float64{
		{0.5, 0.3, 0.2},
		{0.1, 0.4, 0.5},
	}
	got, err := cm.ReduceProbs(probs)
	if err != nil {
		t.Fatalf("ReduceProbs failed: %v", err)
	}

	want := [][]float64{
		{0.5, 0.5},
		{0.1, 0.9},
	}
	for i := range want {
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("row %d col %d = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestReduceProbsRenormalizesAfterDrop(t *testing.T) {
	// Fine class 2 has no coarse counterpart; its mass is dropped and each
	// row renormalized.
	cm, err := NewClassMap([]int{0, 1, -1})
	if err != nil {
		t.Fatalf("NewClassMap failed: %v", err)
	}

	probs := [][]float64{
		{0.2, 0.3, 0.5},
		{0.6, 0.2, 0.2},
	}
	got, err := cm.ReduceProbs(probs)
	if err != nil {
		t.Fatalf("ReduceProbs failed: %v", err)
	}

	for i, row := range got {
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("row %d sums to %v, want 1 within 1e-6", i, sum)
		}
	}

	if math.Abs(got[0][0]-0.4) > 1e-12 || math.Abs(got[0][1]-0.6) > 1e-12 {
		t.Errorf("row 0 = %v, want [0.4 0.6]", got[0])
	}
}

func TestReduceProbsZeroRetainedMass(t *testing.T) {
	cm, err := NewClassMap([]int{0, -1})
	if err != nil {
		t.Fatalf("NewClassMap failed: %v", err)
	}

	_, err = cm.ReduceProbs([][]float64{{0, 1}})
	if err == nil {
		t.Fatal("expected RenormalizationError")
	}
	var rerr *RenormalizationError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenormalizationError, got %T: %v", err, err)
	}
	if rerr.Row != 0 {
		t.Errorf("Row = %d, want 0", rerr.Row)
	}
}

func TestIdentityMapIsExactNoOp(t *testing.T) {
	cm, err := NewClassMap([]int{0, 1, 2})
	if err != nil {
		t.Fatalf("NewClassMap failed: %v", err)
	}

	probs := [][]float64{
		{0.2, 0.3, 0.5},
		{0.999999, 0.0000005, 0.0000005},
	}

	once, err := cm.ReduceProbs(probs)
	if err != nil {
		t.Fatalf("first ReduceProbs failed: %v", err)
	}
	twice, err := cm.ReduceProbs(once)
	if err != nil {
		t.Fatalf("second ReduceProbs failed: %v", err)
	}

	for i := range probs {
		for j := range probs[i] {
			if twice[i][j] != probs[i][j] {
				t.Errorf("row %d col %d = %v, want exactly %v", i, j, twice[i][j], probs[i][j])
			}
		}
	}
}

func TestNewClassMapValidation(t *testing.T) {
	cases := []struct {
		name string
		raw  []int
	}{
		{"empty", []int{}},
		{"all dropped", []int{-1, -1}},
		{"skips coarse class", []int{0, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewClassMap(tc.raw); err == nil {
				t.Errorf("NewClassMap(%v) succeeded, want error", tc.raw)
			}
		})
	}
}
