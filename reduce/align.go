package reduce

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Substitution recovers original characters from a token string the
// tokenizer altered. Plain substitutions rewrite characters in place
// (subword markers, normalized quotes). An Expand substitution handles a
// tokenizer collapsing two original characters into one token: the token is
// split into one token per replacement rune and its probability row is
// duplicated so counts realign 1:1 with the original characters.
type Substitution struct {
	Pattern     string
	Replacement string
	Expand      bool
}

// DefaultSubstitutions covers the alterations BERT-style tokenizers apply to
// CoNLL text: the ## continuation marker, curly quote normalization, and the
// double-quote token standing in for two apostrophe characters.
func DefaultSubstitutions() []Substitution {
	return []Substitution{
		{Pattern: "##", Replacement: ""},
		{Pattern: "“", Replacement: `"`},
		{Pattern: "”", Replacement: `"`},
		{Pattern: "‘", Replacement: "'"},
		{Pattern: "’", Replacement: "'"},
		{Pattern: `"`, Replacement: "''", Expand: true},
	}
}

// Aligner reconciles a tokenizer's character stream with the original
// word-level character stream.
type Aligner struct {
	plain  []Substitution
	expand []Substitution
}

// NewAligner builds an aligner from a substitution table.
func NewAligner(subs []Substitution) *Aligner {
	a := &Aligner{}
	for _, s := range subs {
		if s.Expand {
			a.expand = append(a.expand, s)
		} else {
			a.plain = append(a.plain, s)
		}
	}
	return a
}

// NeedsRepair reports whether the raw token stream already matches the word
// stream, i.e. whether the tokenizer altered any characters.
func (a *Aligner) NeedsRepair(tokens, words []string) bool {
	return concat(tokens) != concat(words)
}

// Align applies the substitution table to each subword token and returns
// tokens and probability rows that are 1:1 with the original characters.
// probs rows correspond to tokens and are duplicated wherever an expansion
// splits a token. If the repaired token stream still does not equal the word
// stream, an AlignmentError is returned.
func (a *Aligner) Align(tokens []string, probs [][]float64, words []string) ([]string, [][]float64, error) {
	if len(tokens) != len(probs) {
		return nil, nil, fmt.Errorf("%d tokens but %d probability rows", len(tokens), len(probs))
	}

	outTokens := make([]string, 0, len(tokens))
	outProbs := make([][]float64, 0, len(probs))

	for i, tok := range tokens {
		t := norm.NFC.String(tok)
		for _, s := range a.plain {
			t = strings.ReplaceAll(t, s.Pattern, s.Replacement)
		}

		expanded := false
		for _, s := range a.expand {
			if t == s.Pattern {
				runes := []rune(s.Replacement)
				if len(runes) != 2 {
					return nil, nil, fmt.Errorf("expansion of %q into %q: %w", s.Pattern, s.Replacement, ErrUnsupportedInput)
				}
				for _, r := range runes {
					outTokens = append(outTokens, string(r))
					outProbs = append(outProbs, probs[i])
				}
				expanded = true
				break
			}
			if strings.Contains(t, s.Pattern) {
				// An expansion pattern embedded in a longer token has no
				// defined split point.
				return nil, nil, fmt.Errorf("token %d %q contains expansion pattern %q mid-token: %w", i, tok, s.Pattern, ErrUnsupportedInput)
			}
		}
		if expanded {
			continue
		}

		outTokens = append(outTokens, t)
		outProbs = append(outProbs, probs[i])
	}

	tokenStream := concat(outTokens)
	wordStream := concat(words)
	if tokenStream != wordStream {
		return nil, nil, &AlignmentError{TokenStream: tokenStream, WordStream: wordStream}
	}

	return outTokens, outProbs, nil
}

// concat joins item characters into the shared stream, NFC-normalized.
// Word separators carry no characters of their own in subword space.
func concat(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(norm.NFC.String(it))
	}
	return b.String()
}
