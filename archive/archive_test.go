package archive

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	matrices := [][][]float64{
		{{0.9, 0.1}, {0.3, 0.7}},
		{{0.5, 0.5}},
		{{0.2, 0.8}, {0.6, 0.4}, {1, 0}},
	}

	path := filepath.Join(t.TempDir(), "pred_probs.zip")
	if err := Write(path, matrices); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(got) != len(matrices) {
		t.Fatalf("got %d entries, want %d", len(got), len(matrices))
	}
	for i, want := range matrices {
		matrix, ok := got[i]
		if !ok {
			t.Fatalf("missing entry for sentence %d", i)
		}
		if len(matrix) != len(want) {
			t.Fatalf("sentence %d has %d rows, want %d", i, len(matrix), len(want))
		}
		for r := range want {
			for c := range want[r] {
				if math.Abs(matrix[r][c]-want[r][c]) > 1e-12 {
					t.Errorf("sentence %d [%d][%d] = %v, want %v", i, r, c, matrix[r][c], want[r][c])
				}
			}
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.zip")); err == nil {
		t.Error("expected error for missing archive")
	}
}
