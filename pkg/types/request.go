package types

// EngineArgs describes which model the engine should load and how to
// constrain its inputs. Adapters return it fully populated except Seed,
// which the drivers merge in just before engine construction.
type EngineArgs struct {
	// Model id as published on the hub, e.g. "royokong/e5-v".
	Model string `json:"model"`
	// Runner mode; pooling models always use "pooling".
	Runner string `json:"runner"`
	// MaxModelLen caps the context length.
	MaxModelLen int `json:"max_model_len"`
	// TrustRemoteCode permits hub-side processor code.
	TrustRemoteCode bool `json:"trust_remote_code,omitempty"`
	// MMProcessorKwargs are model-specific processor options.
	MMProcessorKwargs map[string]any `json:"mm_processor_kwargs,omitempty"`
	// LimitMMPerPrompt caps multimodal items per prompt, keyed by modality.
	LimitMMPerPrompt map[string]int `json:"limit_mm_per_prompt,omitempty"`
	// Seed for engine initialization; nil lets the engine choose.
	Seed *int64 `json:"seed,omitempty"`
}

// WithSeed returns a copy of the args with the seed merged in. A nil
// seed is preserved as nil so the engine picks its own.
func (a EngineArgs) WithSeed(seed *int64) EngineArgs {
	a.Seed = seed
	return a
}

// EmbeddingRequest is an adapter result for embedding tasks: the prompt
// to pool, plus the image when the modality carries one.
type EmbeddingRequest struct {
	EngineArgs EngineArgs
	Prompt     string
	Image      *Image
}

// ScoringRequest is an adapter result for scoring tasks: a query string
// ranked against a multimodal document collection.
type ScoringRequest struct {
	EngineArgs EngineArgs
	Query      string
	Documents  DocumentSet
}

// RequestData is the closed set of adapter results. Drivers assert the
// concrete variant matching their task.
type RequestData interface {
	// Args exposes the engine configuration carried by the request.
	Args() EngineArgs
}

func (r EmbeddingRequest) Args() EngineArgs { return r.EngineArgs }
func (r ScoringRequest) Args() EngineArgs   { return r.EngineArgs }

// Embedding is one pooled output vector.
type Embedding struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// Score is one relevance score from a scoring call.
type Score struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}
