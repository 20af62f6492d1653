package conll

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// docStart marks a document boundary in CoNLL-2003 files.
const docStart = "-DOCSTART-"

// Sentence is one annotated sentence: original words with one
// fine-grained class index per word.
type Sentence struct {
	Words  []string
	Labels []int
}

// SchemaError reports a label outside the declared vocabulary.
type SchemaError struct {
	Line int
	Tag  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("line %d: unknown NER tag %q", e.Line, e.Tag)
}

// Parse reads whitespace-separated `word pos chunk ner` lines into sentences.
// Sentences are delimited by blank lines; -DOCSTART- lines are skipped and
// also end the current sentence.
func Parse(r io.Reader, vocab *Vocabulary) ([]Sentence, error) {
	//	EU NNP B-NP B-ORG
	//	rejects VBZ B-VP O
	//	...
	//	. . O O
	//
	//	Peter NNP B-NP B-PER

	var sentences []Sentence
	var words []string
	var labels []int

	flush := func() {
		if len(words) > 0 {
			sentences = append(sentences, Sentence{Words: words, Labels: labels})
			words = nil
			labels = nil
		}
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			flush()
			continue
		}

		fields := strings.Fields(line)
		if strings.HasPrefix(fields[0], docStart) {
			flush()
			continue
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected `word pos chunk ner`, got %q", lineNum, line)
		}

		word := fields[0]
		tag := fields[len(fields)-1]

		label, ok := vocab.Index(tag)
		if !ok {
			return nil, &SchemaError{Line: lineNum, Tag: tag}
		}

		words = append(words, word)
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	flush()
	return sentences, nil
}

// ReadFile parses a CoNLL-format file from disk.
func ReadFile(path string, vocab *Vocabulary) ([]Sentence, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	sentences, err := Parse(file, vocab)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return sentences, nil
}

// WriteFile serializes sentences back into CoNLL format, one `word _ _ ner`
// line per word. Used to materialize per-fold training files for the
// external fine-tuning command.
func WriteFile(path string, sentences []Sentence, vocab *Vocabulary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, s := range sentences {
		for i, word := range s.Words {
			fmt.Fprintf(w, "%s _ _ %s\n", word, vocab.Tag(s.Labels[i]))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
