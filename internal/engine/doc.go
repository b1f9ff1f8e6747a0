// Package engine is the inference boundary. It is structured into small
// files by concern:
//
//   - engine.go: Engine interface, Factory, dependency-unavailable errors.
//   - http.go: HTTP client for a pooling-capable inference server
//     (/v1/embeddings for embedding, /score for reranking).
//   - llama.go: in-process text embedder over go-llama.cpp.
//
// Build tags and runtimes:
//
//   - HTTP pooling server (standard): always built, no tags needed.
//   - In-process llama embedder: enabled with `-tags=llama`.
//     Files: llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: llama_stub.go.
//     The local embedder handles text prompts only; image inputs and
//     scoring always need the pooling server.
//
// Callers construct engines through a Factory and make exactly one
// Embed or Score call per run. Failures are not retried here.
package engine
