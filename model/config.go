package model

// Config holds paths and knobs for the ONNX token classifier.
type Config struct {
	TokenizerPath string
	ModelPath     string
	OrtLibrary    string   // shared library path for ONNX Runtime
	SpecialTokens []string // tokenizer tokens stripped from predictions
}

// DefaultSpecialTokens covers BERT- and RoBERTa-style special tokens.
func DefaultSpecialTokens() []string {
	return []string{"[CLS]", "[SEP]", "[PAD]", "[UNK]", "<s>", "</s>", "<pad>"}
}
