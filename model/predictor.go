// Package model wraps trained token-classification models behind a small
// prediction interface. The pipeline never trains anything; it only asks a
// fold's model for per-subword class probabilities.
package model

import "math"

// Predictor produces subword tokens and one probability vector per subword
// for a sentence given as its original words.
type Predictor interface {
	Predict(words []string) (tokens []string, probs [][]float64, err error)
	Close() error
}

// softmax converts one row of logits into a probability vector.
func softmax(logits []float32) []float64 {
	max := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > max {
			max = float64(l)
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
