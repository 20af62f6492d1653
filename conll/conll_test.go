package conll

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `-DOCSTART- -X- -X- O

EU NNP B-NP B-ORG
rejects VBZ B-VP O
German JJ B-NP B-MISC
call NN B-NP O
to TO B-VP O
boycott VB I-VP O
British JJ B-NP B-MISC
lamb NN B-NP O
. . O O

Peter NNP B-NP B-PER
Blackburn NNP I-NP I-PER
`

func TestParse(t *testing.T) {
	sentences, err := Parse(strings.NewReader(sample), CoNLL2003())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(sentences))
	}

	first := sentences[0]
	wantWords := []string{"EU", "rejects", "German", "call", "to", "boycott", "British", "lamb", "."}
	if len(first.Words) != len(wantWords) {
		t.Fatalf("got %d words, want %d", len(first.Words), len(wantWords))
	}
	for i, w := range wantWords {
		if first.Words[i] != w {
			t.Errorf("word %d = %q, want %q", i, first.Words[i], w)
		}
	}

	wantLabels := []int{5, 0, 1, 0, 0, 0, 1, 0, 0}
	for i, l := range wantLabels {
		if first.Labels[i] != l {
			t.Errorf("label %d = %d, want %d", i, first.Labels[i], l)
		}
	}

	if len(first.Words) != len(first.Labels) {
		t.Errorf("words/labels length mismatch: %d vs %d", len(first.Words), len(first.Labels))
	}

	second := sentences[1]
	if len(second.Words) != 2 || second.Words[0] != "Peter" {
		t.Errorf("unexpected second sentence: %v", second.Words)
	}
}

func TestParseUnknownTag(t *testing.T) {
	input := "EU NNP B-NP B-ORG\nFoo NNP B-NP B-GPE\n"

	_, err := Parse(strings.NewReader(input), CoNLL2003())
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	if schemaErr.Line != 2 || schemaErr.Tag != "B-GPE" {
		t.Errorf("got line %d tag %q, want line 2 tag B-GPE", schemaErr.Line, schemaErr.Tag)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	vocab := CoNLL2003()
	sentences, err := Parse(strings.NewReader(sample), vocab)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fold0.conll")
	if err := WriteFile(path, sentences, vocab); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	back, err := ReadFile(path, vocab)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if len(back) != len(sentences) {
		t.Fatalf("round trip got %d sentences, want %d", len(back), len(sentences))
	}
	for i := range back {
		for j := range back[i].Words {
			if back[i].Words[j] != sentences[i].Words[j] {
				t.Errorf("sentence %d word %d = %q, want %q", i, j, back[i].Words[j], sentences[i].Words[j])
			}
			if back[i].Labels[j] != sentences[i].Labels[j] {
				t.Errorf("sentence %d label %d = %d, want %d", i, j, back[i].Labels[j], sentences[i].Labels[j])
			}
		}
	}
}

func TestVocabulary(t *testing.T) {
	vocab := CoNLL2003()
	if vocab.Len() != 9 {
		t.Fatalf("got %d classes, want 9", vocab.Len())
	}
	if i, ok := vocab.Index("B-ORG"); !ok || i != 5 {
		t.Errorf("Index(B-ORG) = %d,%v, want 5,true", i, ok)
	}
	if vocab.Tag(0) != "O" {
		t.Errorf("Tag(0) = %q, want O", vocab.Tag(0))
	}
	if _, ok := vocab.Index("B-GPE"); ok {
		t.Error("Index(B-GPE) should be unknown")
	}
}
