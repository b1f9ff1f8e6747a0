package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vlpool/pkg/types"
)

func TestNewHTTPClientValidation(t *testing.T) {
	if _, err := NewHTTPClient(HTTPOptions{BaseURL: "  "}); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
	c, err := NewHTTPClient(HTTPOptions{BaseURL: "http://localhost:8000/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.baseURL != "http://localhost:8000" {
		t.Fatalf("trailing slash not trimmed: %q", c.baseURL)
	}
}

func TestEmbedRequestShape(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path: %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{0.1, 0.2}}},
		})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPOptions{BaseURL: srv.URL, APIKey: "sekrit", ReqTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	seed := int64(99)
	req := types.EmbeddingRequest{
		EngineArgs: types.EngineArgs{Model: "royokong/e5-v", Seed: &seed},
		Prompt:     "hello",
		Image:      &types.Image{URL: "http://x/a.jpg", Data: []byte{1, 2, 3}, MIME: "image/jpeg"},
	}
	out, err := c.Embed(context.Background(), req)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(out) != 1 || len(out[0].Embedding) != 2 {
		t.Fatalf("outputs: %+v", out)
	}
	if auth != "Bearer sekrit" {
		t.Fatalf("auth header: %q", auth)
	}
	if got["model"] != "royokong/e5-v" {
		t.Fatalf("model: %v", got["model"])
	}
	if got["seed"] != float64(99) {
		t.Fatalf("seed: %v", got["seed"])
	}
	msgs := got["messages"].([]any)
	content := msgs[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("content parts: %v", content)
	}
	imgPart := content[1].(map[string]any)
	url := imgPart["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("image not inlined as data URL: %q", url)
	}
}

func TestEmbedOmitsSeedAndImageWhenAbsent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	c, _ := NewHTTPClient(HTTPOptions{BaseURL: srv.URL})
	req := types.EmbeddingRequest{EngineArgs: types.EngineArgs{Model: "m"}, Prompt: "p"}
	if _, err := c.Embed(context.Background(), req); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if _, present := got["seed"]; present {
		t.Fatalf("nil seed must be omitted: %v", got)
	}
	content := got["messages"].([]any)[0].(map[string]any)["content"].([]any)
	if len(content) != 1 {
		t.Fatalf("expected text part only: %v", content)
	}
}

func TestScoreRequestShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/score" {
			t.Errorf("path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "score": 0.8}, {"index": 1, "score": 0.2}},
		})
	}))
	defer srv.Close()

	c, _ := NewHTTPClient(HTTPOptions{BaseURL: srv.URL})
	req := types.ScoringRequest{
		EngineArgs: types.EngineArgs{Model: "jinaai/jina-reranker-m0"},
		Query:      "slm markdown",
		Documents:  types.ImageDocuments("http://x/a.png", "http://x/b.png"),
	}
	out, err := c.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(out) != 2 || out[0].Score != 0.8 {
		t.Fatalf("outputs: %+v", out)
	}
	if got["query"] != "slm markdown" {
		t.Fatalf("query: %v", got["query"])
	}
	docs := got["documents"].(map[string]any)["content"].([]any)
	if len(docs) != 2 {
		t.Fatalf("documents: %v", docs)
	}
}

func TestHTTPErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := NewHTTPClient(HTTPOptions{BaseURL: srv.URL})
	_, err := c.Embed(context.Background(), types.EmbeddingRequest{EngineArgs: types.EngineArgs{Model: "m"}, Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected error with server body, got %v", err)
	}
}

func TestEmbedContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := NewHTTPClient(HTTPOptions{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Embed(ctx, types.EmbeddingRequest{EngineArgs: types.EngineArgs{Model: "m"}, Prompt: "p"})
	if err == nil {
		t.Fatalf("expected context error")
	}
}

func TestHTTPFactoryReusesConfig(t *testing.T) {
	f := HTTPFactory(HTTPOptions{BaseURL: "http://localhost:1"})
	eng, err := f(types.EngineArgs{Model: "whatever"})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if _, ok := eng.(*HTTPClient); !ok {
		t.Fatalf("expected HTTPClient, got %T", eng)
	}
}

func TestDependencyUnavailablePredicate(t *testing.T) {
	err := ErrDependencyUnavailable("no llama")
	if !IsDependencyUnavailable(err) {
		t.Fatalf("predicate miss")
	}
	if IsDependencyUnavailable(context.Canceled) {
		t.Fatalf("predicate must not match foreign errors")
	}
}

func TestLocalEmbedderStub(t *testing.T) {
	if llamaBuilt {
		t.Skip("built with llama tag")
	}
	_, err := NewLocalEmbedder("/tmp/x.gguf", 4096, 4)
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency-unavailable, got %v", err)
	}
}
