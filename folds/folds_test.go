package folds

import "testing"

func TestSplitCoversEveryItemOnce(t *testing.T) {
	const n, k = 103, 5

	folds, err := Split(n, k, 42)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(folds) != k {
		t.Fatalf("got %d folds, want %d", len(folds), k)
	}

	seen := make(map[int]int)
	for _, fold := range folds {
		for _, idx := range fold {
			seen[idx]++
		}
	}
	if len(seen) != n {
		t.Fatalf("folds cover %d items, want %d", len(seen), n)
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("item %d appears %d times, want exactly 1", idx, count)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	a, err := Split(50, 4, 7)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	b, err := Split(50, 4, 7)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for f := range a {
		if len(a[f]) != len(b[f]) {
			t.Fatalf("fold %d sizes differ: %d vs %d", f, len(a[f]), len(b[f]))
		}
		for i := range a[f] {
			if a[f][i] != b[f][i] {
				t.Errorf("fold %d item %d differs: %d vs %d", f, i, a[f][i], b[f][i])
			}
		}
	}

	c, err := Split(50, 4, 8)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	same := true
	for f := range a {
		for i := range a[f] {
			if a[f][i] != c[f][i] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical partitions")
	}
}

func TestSplitRejectsBadShapes(t *testing.T) {
	if _, err := Split(10, 1, 0); err == nil {
		t.Error("k=1 should be rejected")
	}
	if _, err := Split(3, 5, 0); err == nil {
		t.Error("n<k should be rejected")
	}
}

func TestAssemble(t *testing.T) {
	folds := [][]int{{0, 3}, {1, 2}}
	results := [][]string{{"a", "d"}, {"b", "c"}}

	got, err := Assemble(4, folds, results)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAssembleDetectsHolesAndDuplicates(t *testing.T) {
	if _, err := Assemble(4, [][]int{{0, 1}, {1, 2}}, [][]int{{0, 0}, {0, 0}}); err == nil {
		t.Error("duplicate assignment should be rejected")
	}
	if _, err := Assemble(4, [][]int{{0, 1}, {2}}, [][]int{{0, 0}, {0}}); err == nil {
		t.Error("missing item should be rejected")
	}
	if _, err := Assemble(2, [][]int{{0, 5}}, [][]int{{0, 0}}); err == nil {
		t.Error("out-of-range index should be rejected")
	}
}
