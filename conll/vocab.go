package conll

// Vocabulary is a fixed, enumerable set of fine-grained NER tags.
// Index order is the class index used everywhere downstream.
type Vocabulary struct {
	tags  []string
	index map[string]int
}

// NewVocabulary builds a vocabulary from an ordered tag list.
func NewVocabulary(tags []string) *Vocabulary {
	index := make(map[string]int, len(tags))
	for i, tag := range tags {
		index[tag] = i
	}
	return &Vocabulary{tags: tags, index: index}
}

// CoNLL2003 returns the IOB2 tag set of the CoNLL-2003 shared task,
// in the order used by the released token-classification models.
func CoNLL2003() *Vocabulary {
	return NewVocabulary([]string{
		"O",
		"B-MISC", "I-MISC",
		"B-PER", "I-PER",
		"B-ORG", "I-ORG",
		"B-LOC", "I-LOC",
	})
}

// Index returns the class index of a tag, and whether the tag is known.
func (v *Vocabulary) Index(tag string) (int, bool) {
	i, ok := v.index[tag]
	return i, ok
}

// Tag returns the tag string for a class index.
func (v *Vocabulary) Tag(index int) string {
	return v.tags[index]
}

// Len returns the number of classes.
func (v *Vocabulary) Len() int {
	return len(v.tags)
}

// Tags returns the ordered tag list.
func (v *Vocabulary) Tags() []string {
	return v.tags
}
