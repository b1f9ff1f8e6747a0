package query

import (
	"context"
	"errors"
	"testing"

	"vlpool/pkg/types"
)

// fakeFetcher records requested URLs and serves canned bytes.
type fakeFetcher struct {
	urls []string
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (types.Image, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return types.Image{}, f.err
	}
	return types.Image{URL: url, Data: []byte{0x89}, MIME: "image/png"}, nil
}

func TestBuildVariantTags(t *testing.T) {
	f := &fakeFetcher{}
	for _, m := range types.Modalities() {
		q, err := Build(context.Background(), m, f)
		if err != nil {
			t.Fatalf("build %s: %v", m, err)
		}
		if q.Modality() != m {
			t.Fatalf("build %s: variant tag %s", m, q.Modality())
		}
	}
}

func TestBuildText(t *testing.T) {
	f := &fakeFetcher{}
	q, err := Build(context.Background(), types.ModalityText, f)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tq, ok := q.(types.TextQuery)
	if !ok {
		t.Fatalf("expected TextQuery, got %T", q)
	}
	if tq.Text != "A dog sitting in the grass" {
		t.Fatalf("text: %q", tq.Text)
	}
	if len(f.urls) != 0 {
		t.Fatalf("text query must not fetch: %v", f.urls)
	}
}

func TestBuildImageFetches(t *testing.T) {
	f := &fakeFetcher{}
	q, err := Build(context.Background(), types.ModalityImage, f)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	iq := q.(types.ImageQuery)
	if len(f.urls) != 1 || f.urls[0] != sampleImageURL {
		t.Fatalf("fetched urls: %v", f.urls)
	}
	if iq.Image.URL != sampleImageURL || len(iq.Image.Data) == 0 {
		t.Fatalf("image not populated: %+v", iq.Image)
	}
}

func TestBuildTextImages(t *testing.T) {
	f := &fakeFetcher{}
	q, err := Build(context.Background(), types.ModalityTextImages, f)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tiq := q.(types.TextImagesQuery)
	if tiq.Text != "slm markdown" {
		t.Fatalf("query text: %q", tiq.Text)
	}
	if len(tiq.Images.Content) != 2 {
		t.Fatalf("documents: %+v", tiq.Images)
	}
	// Document references stay URLs; nothing is fetched locally.
	if len(f.urls) != 0 {
		t.Fatalf("reranker documents must not be fetched: %v", f.urls)
	}
}

func TestBuildUnsupportedModality(t *testing.T) {
	_, err := Build(context.Background(), types.QueryModality("audio"), &fakeFetcher{})
	if !types.IsUnsupportedModality(err) {
		t.Fatalf("expected unsupported-modality error, got %v", err)
	}
}

func TestBuildFetchErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(context.Background(), types.ModalityTextImage, &fakeFetcher{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error to propagate, got %v", err)
	}
}
