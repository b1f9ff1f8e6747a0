//go:build !llama

package engine

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

// NewLocalEmbedder is unavailable without the 'llama' build tag.
func NewLocalEmbedder(modelPath string, ctxSize, threads int) (Engine, error) {
	return nil, ErrDependencyUnavailable("local llama embedder not built; rebuild with -tags=llama")
}
