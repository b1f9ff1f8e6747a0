package types

// PoolRequest is the JSON payload accepted by POST /embed and POST /score.
type PoolRequest struct {
	// Model key registered in the dispatch table, e.g. "vlm2vec".
	Model string `json:"model"`
	// Modality of the sample query to build.
	Modality string `json:"modality"`
	// Optional engine seed.
	Seed *int64 `json:"seed,omitempty"`
}

// EmbedResponse wraps the vectors returned by POST /embed.
type EmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings []Embedding `json:"embeddings"`
}

// ScoreResponse wraps the scores returned by POST /score.
type ScoreResponse struct {
	Model  string  `json:"model"`
	Scores []Score `json:"scores"`
}

// ModelsResponse lists the registered model keys for GET /models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
