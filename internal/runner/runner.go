package runner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"vlpool/internal/engine"
	"vlpool/internal/fetch"
	"vlpool/internal/models"
	"vlpool/internal/query"
	"vlpool/pkg/types"
)

// Task names accepted by Run.
const (
	TaskEmbedding = "embedding"
	TaskScoring   = "scoring"
)

// Tasks lists the supported task names.
func Tasks() []string { return []string{TaskEmbedding, TaskScoring} }

// Options carries everything one run needs. Exactly one engine call is
// made per run; engine failures propagate to the caller unmodified.
type Options struct {
	Model    string
	Modality types.QueryModality
	Seed     *int64
	Fetcher  fetch.Fetcher
	Factory  engine.Factory
	Out      io.Writer
	Log      zerolog.Logger
}

// Run dispatches to the task's driver. An unrecognized task fails before
// any query or engine work happens.
func Run(ctx context.Context, task string, opts Options) error {
	switch task {
	case TaskEmbedding:
		return RunEncode(ctx, opts)
	case TaskScoring:
		return RunScore(ctx, opts)
	default:
		return unsupportedTaskError{task: task}
	}
}

// Encode builds the sample query, formats it through the model adapter,
// patches limits and seed, and makes one embedding call.
func Encode(ctx context.Context, opts Options) ([]types.Embedding, error) {
	req, err := buildEmbedding(ctx, opts)
	if err != nil {
		return nil, err
	}
	eng, err := opts.Factory(req.EngineArgs)
	if err != nil {
		return nil, err
	}
	return eng.Embed(ctx, req)
}

// buildEmbedding runs every step of an encode short of the engine call.
func buildEmbedding(ctx context.Context, opts Options) (types.EmbeddingRequest, error) {
	q, err := query.Build(ctx, opts.Modality, opts.Fetcher)
	if err != nil {
		return types.EmbeddingRequest{}, err
	}
	adapter, err := models.Lookup(opts.Model)
	if err != nil {
		return types.EmbeddingRequest{}, err
	}
	data, err := adapter(q)
	if err != nil {
		return types.EmbeddingRequest{}, err
	}
	req, ok := data.(types.EmbeddingRequest)
	if !ok {
		return types.EmbeddingRequest{}, taskMismatchError{model: opts.Model, task: TaskEmbedding}
	}
	req.EngineArgs.LimitMMPerPrompt = withDefaultLimits(req.EngineArgs.LimitMMPerPrompt)
	req.EngineArgs = req.EngineArgs.WithSeed(opts.Seed)
	return req, nil
}

// ScoreDocuments builds the sample query, formats it through the model
// adapter, merges the seed, and makes one scoring call.
func ScoreDocuments(ctx context.Context, opts Options) ([]types.Score, error) {
	req, err := buildScoring(ctx, opts)
	if err != nil {
		return nil, err
	}
	eng, err := opts.Factory(req.EngineArgs)
	if err != nil {
		return nil, err
	}
	return eng.Score(ctx, req)
}

// buildScoring runs every step of a score short of the engine call.
func buildScoring(ctx context.Context, opts Options) (types.ScoringRequest, error) {
	q, err := query.Build(ctx, opts.Modality, opts.Fetcher)
	if err != nil {
		return types.ScoringRequest{}, err
	}
	adapter, err := models.Lookup(opts.Model)
	if err != nil {
		return types.ScoringRequest{}, err
	}
	data, err := adapter(q)
	if err != nil {
		return types.ScoringRequest{}, err
	}
	req, ok := data.(types.ScoringRequest)
	if !ok {
		return types.ScoringRequest{}, taskMismatchError{model: opts.Model, task: TaskScoring}
	}
	req.EngineArgs = req.EngineArgs.WithSeed(opts.Seed)
	return req, nil
}

// RunEncode performs an encode and prints each vector framed by
// separator lines.
func RunEncode(ctx context.Context, opts Options) error {
	opts.Log.Info().Str("model", opts.Model).Str("modality", string(opts.Modality)).Msg("encode start")
	outputs, err := Encode(ctx, opts)
	if err != nil {
		return err
	}
	sep := strings.Repeat("-", 50)
	fmt.Fprintln(opts.Out, sep)
	for _, o := range outputs {
		fmt.Fprintln(opts.Out, o.Embedding)
		fmt.Fprintln(opts.Out, sep)
	}
	return nil
}

// RunScore performs a scoring run and prints the score list framed by
// separator lines.
func RunScore(ctx context.Context, opts Options) error {
	opts.Log.Info().Str("model", opts.Model).Str("modality", string(opts.Modality)).Msg("score start")
	outputs, err := ScoreDocuments(ctx, opts)
	if err != nil {
		return err
	}
	scores := make([]float64, 0, len(outputs))
	for _, o := range outputs {
		scores = append(scores, o.Score)
	}
	sep := strings.Repeat("-", 30)
	fmt.Fprintln(opts.Out, sep)
	fmt.Fprintln(opts.Out, scores)
	fmt.Fprintln(opts.Out, sep)
	return nil
}

// unusedModalities is the fixed set zeroed out to save engine memory.
// Kept as an explicit list rather than derived from adapter limits.
var unusedModalities = []string{"image", "video", "audio"}

// withDefaultLimits zeroes the unused modalities while keeping any limit
// the adapter already set.
func withDefaultLimits(limits map[string]int) map[string]int {
	merged := make(map[string]int, len(unusedModalities)+len(limits))
	for _, m := range unusedModalities {
		merged[m] = 0
	}
	for k, v := range limits {
		merged[k] = v
	}
	return merged
}

// taskMismatchError signals an adapter whose output variant does not
// match the requested task (e.g. scoring against an embedding model).
type taskMismatchError struct{ model, task string }

func (e taskMismatchError) Error() string {
	return fmt.Sprintf("model %q does not support task %q", e.model, e.task)
}

// IsTaskMismatch reports whether err indicates a model/task mismatch.
func IsTaskMismatch(err error) bool {
	_, ok := err.(taskMismatchError)
	return ok
}

// unsupportedTaskError signals a task outside {embedding, scoring}.
type unsupportedTaskError struct{ task string }

func (e unsupportedTaskError) Error() string { return fmt.Sprintf("unsupported task: %q", e.task) }

// IsUnsupportedTask reports whether err indicates an unrecognized task name.
func IsUnsupportedTask(err error) bool {
	_, ok := err.(unsupportedTaskError)
	return ok
}
