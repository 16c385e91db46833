package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig locates a sentence-transformers model exported to ONNX together
// with its WordPiece vocab.
type ONNXConfig struct {
	ModelPath  string
	VocabPath  string
	LibPath    string
	MaxSeqLen  int
	Dimensions int
}

// ONNXEmbedder runs a MiniLM-style encoder locally and mean-pools the last
// hidden state into an L2-normalized sentence vector. Inference reuses fixed
// tensors, so Embed is serialized.
type ONNXEmbedder struct {
	mu sync.Mutex

	tokenizer *WordPieceTokenizer
	seqLen    int
	dim       int

	session   *ort.AdvancedSession
	inputIDs  *ort.Tensor[int64]
	attention *ort.Tensor[int64]
	typeIDs   *ort.Tensor[int64]
	output    *ort.Tensor[float32]
}

func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.ModelPath == "" || cfg.VocabPath == "" {
		return nil, errors.New("onnx model and vocab paths are required")
	}
	if cfg.MaxSeqLen <= 2 {
		cfg.MaxSeqLen = 256
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultHashDimensions
	}

	tokenizer, err := LoadWordPieceTokenizer(cfg.VocabPath)
	if err != nil {
		return nil, err
	}

	if !ort.IsInitialized() {
		if cfg.LibPath != "" {
			ort.SetSharedLibraryPath(cfg.LibPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnx init environment failed: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx get input/output info failed: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.New("onnx model has no inputs or outputs")
	}

	e := &ONNXEmbedder{tokenizer: tokenizer, seqLen: cfg.MaxSeqLen, dim: cfg.Dimensions}
	if err := e.allocate(cfg.ModelPath, inputs, outputs[0].Name); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *ONNXEmbedder) allocate(modelPath string, inputs []ort.InputOutputInfo, outputName string) error {
	shape := ort.NewShape(1, int64(e.seqLen))
	var err error
	if e.inputIDs, err = ort.NewTensor(shape, make([]int64, e.seqLen)); err != nil {
		return fmt.Errorf("onnx new input_ids tensor failed: %w", err)
	}
	if e.attention, err = ort.NewTensor(shape, make([]int64, e.seqLen)); err != nil {
		return fmt.Errorf("onnx new attention_mask tensor failed: %w", err)
	}
	if e.typeIDs, err = ort.NewTensor(shape, make([]int64, e.seqLen)); err != nil {
		return fmt.Errorf("onnx new token_type_ids tensor failed: %w", err)
	}
	if e.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(e.seqLen), int64(e.dim))); err != nil {
		return fmt.Errorf("onnx new output tensor failed: %w", err)
	}

	inputNames := make([]string, 0, len(inputs))
	inputValues := make([]ort.Value, 0, len(inputs))
	for _, info := range inputs {
		switch info.Name {
		case "input_ids":
			inputValues = append(inputValues, e.inputIDs)
		case "attention_mask":
			inputValues = append(inputValues, e.attention)
		case "token_type_ids":
			inputValues = append(inputValues, e.typeIDs)
		default:
			return fmt.Errorf("onnx model has unsupported input %q", info.Name)
		}
		inputNames = append(inputNames, info.Name)
	}

	e.session, err = ort.NewAdvancedSession(modelPath, inputNames, []string{outputName},
		inputValues, []ort.Value{e.output}, nil)
	if err != nil {
		return fmt.Errorf("onnx new session failed: %w", err)
	}
	return nil
}

func (e *ONNXEmbedder) Name() string { return "onnx" }

func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *ONNXEmbedder) embedOne(text string) ([]float32, error) {
	ids, mask := e.tokenizer.Encode(text, e.seqLen)
	copy(e.inputIDs.GetData(), ids)
	copy(e.attention.GetData(), mask)
	clear(e.typeIDs.GetData())

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run failed: %w", err)
	}
	return meanPool(e.output.GetData(), mask, e.dim), nil
}

// meanPool averages token vectors where mask is set; hidden is laid out as
// [seq][dim].
func meanPool(hidden []float32, mask []int64, dim int) []float32 {
	vec := make([]float32, dim)
	var count float32
	for pos, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[pos*dim : (pos+1)*dim]
		for j, v := range row {
			vec[j] += v
		}
		count++
	}
	if count > 0 {
		for j := range vec {
			vec[j] /= count
		}
	}
	return l2Normalize(vec)
}

func (e *ONNXEmbedder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		_ = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attention, e.typeIDs} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
	}
	e.inputIDs, e.attention, e.typeIDs, e.output = nil, nil, nil, nil
}
