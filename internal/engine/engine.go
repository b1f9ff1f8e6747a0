package engine

import (
	"context"

	"vlpool/pkg/types"
)

// Engine is the inference boundary: one embedding or scoring call per
// run. Implementations do not retry; callers see failures as-is.
type Engine interface {
	// Embed pools the request prompt (and image, if any) into vectors.
	Embed(ctx context.Context, req types.EmbeddingRequest) ([]types.Embedding, error)
	// Score ranks the request documents against the query string.
	Score(ctx context.Context, req types.ScoringRequest) ([]types.Score, error)
}

// Factory constructs an engine from merged engine args. The drivers call
// it exactly once per run, after seed merge and limit patching.
type Factory func(args types.EngineArgs) (Engine, error)

// dependencyUnavailableError signals a missing runtime dependency (e.g.
// a binary built without the llama tag).
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
