package reduce

import "fmt"

// Target is the mapping of one fine-grained class: either a coarse class
// index or dropped entirely.
type Target struct {
	Coarse  int
	Dropped bool
}

// ClassMap collapses the fine-grained class space into a coarser one.
// Defined once per dataset configuration, immutable afterwards.
type ClassMap struct {
	targets []Target
	coarse  int
}

// NewClassMap builds a ClassMap from the raw per-dataset map array, where a
// negative entry means the fine class has no coarse counterpart. The
// non-negative entries must cover 0..K-1 for some K.
func NewClassMap(raw []int) (*ClassMap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("class map is empty")
	}

	targets := make([]Target, len(raw))
	seen := make(map[int]bool)
	max := -1
	for i, v := range raw {
		if v < 0 {
			targets[i] = Target{Dropped: true}
			continue
		}
		targets[i] = Target{Coarse: v}
		seen[v] = true
		if v > max {
			max = v
		}
	}
	if max < 0 {
		return nil, fmt.Errorf("class map drops every fine class")
	}
	for j := 0; j <= max; j++ {
		if !seen[j] {
			return nil, fmt.Errorf("class map skips coarse class %d", j)
		}
	}

	return &ClassMap{targets: targets, coarse: max + 1}, nil
}

// NumFine returns the fine-grained class count L.
func (m *ClassMap) NumFine() int {
	return len(m.targets)
}

// NumCoarse returns the coarse class count K.
func (m *ClassMap) NumCoarse() int {
	return m.coarse
}

// Target returns the mapping of fine class i.
func (m *ClassMap) Target(i int) Target {
	return m.targets[i]
}

// dropsAny reports whether any fine class is unmapped. Only then does
// probability mass leave the simplex and rows need renormalizing.
func (m *ClassMap) dropsAny() bool {
	for _, t := range m.targets {
		if t.Dropped {
			return true
		}
	}
	return false
}

// ReduceProbs collapses an N x L probability matrix into N x K. Each coarse
// column is the sum of the fine columns mapping to it. When the map drops
// classes, each row is renormalized to sum to 1 after the drop; a row whose
// retained mass is zero yields a RenormalizationError.
func (m *ClassMap) ReduceProbs(probs [][]float64) ([][]float64, error) {
	renorm := m.dropsAny()

	out := make([][]float64, len(probs))
	for i, row := range probs {
		if len(row) != len(m.targets) {
			return nil, fmt.Errorf("row %d has %d classes, class map expects %d", i, len(row), len(m.targets))
		}

		reduced := make([]float64, m.coarse)
		for j, p := range row {
			t := m.targets[j]
			if t.Dropped {
				continue
			}
			reduced[t.Coarse] += p
		}

		if renorm {
			var sum float64
			for _, p := range reduced {
				sum += p
			}
			if sum <= 0 {
				return nil, &RenormalizationError{Row: i}
			}
			for j := range reduced {
				reduced[j] /= sum
			}
		}

		out[i] = reduced
	}
	return out, nil
}

// ReduceLabels maps gold fine-grained label indices to coarse indices by
// direct lookup. Labels are categorical, so there is no renormalization; a
// label that the map drops means the map and the label vocabulary disagree.
func (m *ClassMap) ReduceLabels(labels []int) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		if l < 0 || l >= len(m.targets) {
			return nil, fmt.Errorf("label %d at position %d is outside the fine class space [0,%d)", l, i, len(m.targets))
		}
		t := m.targets[l]
		if t.Dropped {
			return nil, fmt.Errorf("gold label %d at position %d maps to a dropped class", l, i)
		}
		out[i] = t.Coarse
	}
	return out, nil
}
