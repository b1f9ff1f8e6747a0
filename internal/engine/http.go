package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"vlpool/pkg/types"
)

// HTTPClient talks to a pooling-capable inference server over its
// OpenAI-compatible endpoints: /v1/embeddings for embedding and /score
// for reranking.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
}

// HTTPOptions configures the pooling server client.
type HTTPOptions struct {
	BaseURL        string
	APIKey         string
	ReqTimeout     time.Duration
	ConnectTimeout time.Duration
}

// NewHTTPClient builds a server-backed engine client.
func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("engine base URL is empty")
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0: every request carries a context deadline instead.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &HTTPClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		reqTimeout: opts.ReqTimeout,
		httpClient: cli,
	}, nil
}

// HTTPFactory returns an engine factory bound to a single server config.
// The per-run engine args travel inside each request body.
func HTTPFactory(opts HTTPOptions) Factory {
	return func(types.EngineArgs) (Engine, error) {
		return NewHTTPClient(opts)
	}
}

// contentPart is one entry of a multimodal message content array.
type contentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *types.ImageURL `json:"image_url,omitempty"`
}

// embeddingsRequest is the payload for POST /v1/embeddings.
type embeddingsRequest struct {
	Model    string             `json:"model"`
	Messages []embeddingMessage `json:"messages"`
	Seed     *int64             `json:"seed,omitempty"`
}

type embeddingMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type embeddingsResponse struct {
	Data []types.Embedding `json:"data"`
}

// scoreRequest is the payload for POST /score.
type scoreRequest struct {
	Model     string            `json:"model"`
	Query     string            `json:"query"`
	Documents types.DocumentSet `json:"documents"`
	Seed      *int64            `json:"seed,omitempty"`
}

type scoreResponse struct {
	Data []types.Score `json:"data"`
}

func (c *HTTPClient) Embed(ctx context.Context, req types.EmbeddingRequest) ([]types.Embedding, error) {
	content := []contentPart{{Type: "text", Text: req.Prompt}}
	if req.Image != nil {
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &types.ImageURL{URL: dataURL(*req.Image)},
		})
	}
	payload := embeddingsRequest{
		Model:    req.EngineArgs.Model,
		Messages: []embeddingMessage{{Role: "user", Content: content}},
		Seed:     req.EngineArgs.Seed,
	}
	var out embeddingsResponse
	if err := c.post(ctx, "/v1/embeddings", payload, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) Score(ctx context.Context, req types.ScoringRequest) ([]types.Score, error) {
	payload := scoreRequest{
		Model:     req.EngineArgs.Model,
		Query:     req.Query,
		Documents: req.Documents,
		Seed:      req.EngineArgs.Seed,
	}
	var out scoreResponse
	if err := c.post(ctx, "/score", payload, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pooling server http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// dataURL inlines fetched image bytes so the server does not refetch them.
func dataURL(img types.Image) string {
	mime := img.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
