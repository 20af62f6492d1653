// Package metrics computes informational evaluation scores over flattened
// gold/predicted label streams. Not part of the reduction contract.
package metrics

import "fmt"

// ClassScores holds precision/recall/F1 for one class (or the micro
// average). Support counts gold occurrences.
type ClassScores struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes a gold-vs-predicted comparison.
type Report struct {
	Accuracy float64
	PerClass []ClassScores
	Micro    ClassScores
}

// Argmax returns the index of the largest entry of a probability row.
func Argmax(row []float64) int {
	best := 0
	for i, p := range row {
		if p > row[best] {
			best = i
		}
	}
	return best
}

// Evaluate scores predictions against gold labels drawn from numClasses
// classes.
func Evaluate(gold, pred []int, numClasses int) (Report, error) {
	if len(gold) != len(pred) {
		return Report{}, fmt.Errorf("%d gold labels but %d predictions", len(gold), len(pred))
	}
	if len(gold) == 0 {
		return Report{}, fmt.Errorf("no labels to evaluate")
	}

	tp := make([]int, numClasses)
	fp := make([]int, numClasses)
	fn := make([]int, numClasses)
	correct := 0

	for i := range gold {
		g, p := gold[i], pred[i]
		if g < 0 || g >= numClasses || p < 0 || p >= numClasses {
			return Report{}, fmt.Errorf("label pair (%d,%d) at position %d outside [0,%d)", g, p, i, numClasses)
		}
		if g == p {
			correct++
			tp[g]++
		} else {
			fp[p]++
			fn[g]++
		}
	}

	report := Report{
		Accuracy: float64(correct) / float64(len(gold)),
		PerClass: make([]ClassScores, numClasses),
	}

	var sumTP, sumFP, sumFN int
	for c := 0; c < numClasses; c++ {
		report.PerClass[c] = scores(tp[c], fp[c], fn[c])
		report.PerClass[c].Support = tp[c] + fn[c]
		sumTP += tp[c]
		sumFP += fp[c]
		sumFN += fn[c]
	}
	report.Micro = scores(sumTP, sumFP, sumFN)
	report.Micro.Support = len(gold)

	return report, nil
}

func scores(tp, fp, fn int) ClassScores {
	var s ClassScores
	if tp+fp > 0 {
		s.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		s.Recall = float64(tp) / float64(tp+fn)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
