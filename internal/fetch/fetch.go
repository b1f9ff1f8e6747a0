package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"vlpool/pkg/types"
)

// Fetcher resolves an image URL to in-memory bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (types.Image, error)
}

// maxImageBytes bounds a single fetched image body.
const maxImageBytes = 32 << 20

// HTTPFetcher fetches images over plain HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher with an explicit connect timeout.
// Request deadlines come from the caller's context, so the client
// Timeout stays zero.
func NewHTTPFetcher(connectTimeout time.Duration) *HTTPFetcher {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{client: &http.Client{Transport: tr, Timeout: 0}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (types.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.Image{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return types.Image{}, ctx.Err()
		}
		return types.Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.Image{}, fmt.Errorf("fetch image: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return types.Image{}, fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return types.Image{}, fmt.Errorf("image exceeds %d bytes: %s", maxImageBytes, url)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return types.Image{URL: url, Data: data, MIME: mime}, nil
}
