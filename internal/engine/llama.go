//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"vlpool/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// localEmbedder runs text embeddings in-process from a local gguf file.
// Image inputs and scoring need a multimodal pooling server; both are
// rejected here.
type localEmbedder struct {
	model   *llama.LLama
	threads int
}

// NewLocalEmbedder loads a gguf model for in-process embedding.
func NewLocalEmbedder(modelPath string, ctxSize, threads int) (Engine, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(modelPath, llama.SetContext(ctxSize), llama.EnableEmbeddings)
	if err != nil {
		return nil, err
	}
	return &localEmbedder{model: m, threads: threads}, nil
}

func (e *localEmbedder) Embed(ctx context.Context, req types.EmbeddingRequest) ([]types.Embedding, error) {
	if e.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	if req.Image != nil {
		return nil, ErrDependencyUnavailable("local llama embedder is text-only; use a pooling server for image inputs")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec, err := e.model.Embeddings(req.Prompt, llama.SetThreads(max(1, e.threads)))
	if err != nil {
		return nil, err
	}
	return []types.Embedding{{Index: 0, Embedding: vec}}, nil
}

func (e *localEmbedder) Score(ctx context.Context, req types.ScoringRequest) ([]types.Score, error) {
	return nil, ErrDependencyUnavailable("scoring requires a pooling server; the local llama embedder cannot rank documents")
}

// Close frees the loaded model.
func (e *localEmbedder) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
