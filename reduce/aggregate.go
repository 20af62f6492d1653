package reduce

import "fmt"

// Policy selects how a word combines the probability vectors of its
// subwords.
type Policy int

const (
	// Uniform takes the unweighted arithmetic mean of the contributing
	// subword vectors. The default; empirically near-identical to
	// LengthWeighted.
	Uniform Policy = iota
	// LengthWeighted weights each contributing subword's vector by its
	// character length.
	LengthWeighted
)

// Aggregate reduces a per-subword probability matrix to one probability
// vector per original word. Tokens must already be aligned: the
// concatenation of token characters must equal the concatenation of word
// characters.
//
// A subword fully inside one word contributes its whole vector to that
// word. A subword spanning a boundary contributes its whole vector to both
// words it overlaps, never a fractional share. A subword overlapping more
// than two words is rejected.
func Aggregate(probs [][]float64, tokens, words []string, policy Policy) ([][]float64, error) {
	if len(tokens) != len(probs) {
		return nil, fmt.Errorf("%d tokens but %d probability rows", len(tokens), len(probs))
	}
	if len(words) == 0 {
		return [][]float64{}, nil
	}

	tokenSpans := runeSpans(tokens)
	wordSpans := runeSpans(words)

	tokenStream := concat(tokens)
	wordStream := concat(words)
	if tokenStream != wordStream {
		return nil, &AlignmentError{TokenStream: tokenStream, WordStream: wordStream}
	}

	classes := 0
	if len(probs) > 0 {
		classes = len(probs[0])
	}

	sums := make([][]float64, len(words))
	weights := make([]float64, len(words))
	for i := range sums {
		sums[i] = make([]float64, classes)
	}

	// Two-pointer merge over the shared character stream.
	w := 0
	for t, ts := range tokenSpans {
		if ts.length() == 0 {
			// A token whose characters were all substituted away (for
			// example a bare continuation marker) covers nothing.
			continue
		}
		if len(probs[t]) != classes {
			return nil, fmt.Errorf("probability row %d has %d classes, want %d", t, len(probs[t]), classes)
		}

		for w < len(wordSpans) && wordSpans[w].End <= ts.Start {
			w++
		}

		matched := 0
		for j := w; j < len(wordSpans) && wordSpans[j].Start < ts.End; j++ {
			if !ts.overlaps(wordSpans[j]) {
				continue
			}
			matched++
			if matched > 2 {
				return nil, fmt.Errorf("subword %d %q overlaps more than two words: %w", t, tokens[t], ErrUnsupportedInput)
			}

			weight := 1.0
			if policy == LengthWeighted {
				weight = float64(ts.length())
			}
			for c, p := range probs[t] {
				sums[j][c] += weight * p
			}
			weights[j] += weight
		}
	}

	out := make([][]float64, len(words))
	for i := range out {
		if weights[i] == 0 {
			return nil, fmt.Errorf("word %d %q received no subword probability mass", i, words[i])
		}
		row := make([]float64, classes)
		for c := range row {
			row[c] = sums[i][c] / weights[i]
		}
		out[i] = row
	}
	return out, nil
}
