package model

import (
	"fmt"
	"log"
	"strings"
	"sync"

	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ortInit guards the process-wide ONNX Runtime environment; fold models
// share it.
var ortInit sync.Once
var ortInitErr error

// ONNXClassifier runs a fine-tuned token-classification model exported to
// ONNX, producing per-subword logits over the fine-grained class space.
type ONNXClassifier struct {
	tok     *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	special map[string]bool
}

// NewONNXClassifier loads the tokenizer and model named by config.
func NewONNXClassifier(config Config) (*ONNXClassifier, error) {
	tok, err := pretrained.FromFile(config.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	ortInit.Do(func() {
		ort.SetSharedLibraryPath(config.OrtLibrary)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", ortInitErr)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}

	// Try to enable CUDA, fall back to CPU
	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err == nil {
		err = cudaOpts.Update(map[string]string{"device_id": "0"})
		if err == nil {
			if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
				log.Printf("Failed to append CUDA provider, using CPU: %v", err)
			}
		} else {
			log.Printf("Failed to update CUDA options, using CPU: %v", err)
		}
		cudaOpts.Destroy()
	} else {
		log.Printf("CUDA not available, using CPU: %v", err)
	}

	if err := opts.SetIntraOpNumThreads(0); err != nil {
		log.Printf("Warning: failed to set thread count: %v", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	special := make(map[string]bool, len(config.SpecialTokens))
	for _, s := range config.SpecialTokens {
		special[s] = true
	}

	return &ONNXClassifier{tok: tok, session: session, special: special}, nil
}

// Predict tokenizes the sentence's words, runs the model, and returns the
// subword tokens with one softmaxed probability vector each. Special tokens
// added by the tokenizer are stripped before returning.
func (c *ONNXClassifier) Predict(words []string) ([]string, [][]float64, error) {
	if len(words) == 0 {
		return nil, nil, fmt.Errorf("empty sentence")
	}

	text := strings.Join(words, " ")
	enc, err := c.tok.EncodeSingle(text)
	if err != nil {
		return nil, nil, fmt.Errorf("tokenization failed: %w", err)
	}

	ids := enc.GetIds()
	mask := enc.GetAttentionMask()
	seqLen := len(ids)
	if seqLen == 0 {
		return nil, nil, fmt.Errorf("tokenizer produced no tokens for %q", text)
	}

	inputIds := make([]int64, seqLen)
	attentionMask := make([]int64, seqLen)
	tokenTypeIds := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		inputIds[i] = int64(ids[i])
		attentionMask[i] = int64(mask[i])
	}

	shape := ort.NewShape(1, int64(seqLen))

	inputIdsTensor, err := ort.NewTensor(shape, inputIds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIdsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIdsTensor, err := ort.NewTensor(shape, tokenTypeIds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	defer tokenTypeIdsTensor.Destroy()

	outputs := make([]ort.Value, 1)
	err = c.session.Run(
		[]ort.Value{inputIdsTensor, attentionMaskTensor, tokenTypeIdsTensor},
		outputs,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("logits tensor is not float32 type")
	}

	// Output: [1, sequence_length, num_classes]
	outputShape := logitsTensor.GetShape()
	if len(outputShape) != 3 {
		return nil, nil, fmt.Errorf("unexpected logits shape %v", outputShape)
	}
	outSeqLen := int(outputShape[1])
	numClasses := int(outputShape[2])
	if outSeqLen != seqLen {
		return nil, nil, fmt.Errorf("logits sequence length %d does not match %d input tokens", outSeqLen, seqLen)
	}

	// Copy out before the tensor is destroyed, softmaxing row by row and
	// dropping [CLS]/[SEP]/padding positions.
	data := logitsTensor.GetData()
	encTokens := enc.GetTokens()

	tokens := make([]string, 0, seqLen)
	probs := make([][]float64, 0, seqLen)
	for i := 0; i < seqLen; i++ {
		if c.special[encTokens[i]] || mask[i] == 0 {
			continue
		}
		row := data[i*numClasses : (i+1)*numClasses]
		tokens = append(tokens, encTokens[i])
		probs = append(probs, softmax(row))
	}

	return tokens, probs, nil
}

// Close releases the session. The shared ONNX environment stays up until
// DestroyEnvironment.
func (c *ONNXClassifier) Close() error {
	if c.session != nil {
		c.session.Destroy()
	}
	return nil
}

// DestroyEnvironment tears down the process-wide ONNX Runtime environment
// once every classifier is closed.
func DestroyEnvironment() {
	ort.DestroyEnvironment()
}
