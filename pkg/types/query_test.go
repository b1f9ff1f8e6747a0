package types

import "testing"

func TestParseModality(t *testing.T) {
	for _, m := range Modalities() {
		got, err := ParseModality(string(m))
		if err != nil {
			t.Fatalf("parse %q: %v", m, err)
		}
		if got != m {
			t.Fatalf("parse %q: got %q", m, got)
		}
	}
	if _, err := ParseModality("video"); !IsUnsupportedModality(err) {
		t.Fatalf("expected unsupported-modality error, got %v", err)
	}
	if _, err := ParseModality(""); !IsUnsupportedModality(err) {
		t.Fatalf("expected unsupported-modality error for empty string, got %v", err)
	}
}

func TestQueryVariantTags(t *testing.T) {
	cases := []struct {
		q    Query
		want QueryModality
	}{
		{TextQuery{Text: "a"}, ModalityText},
		{ImageQuery{}, ModalityImage},
		{TextImageQuery{Text: "b"}, ModalityTextImage},
		{TextImagesQuery{Text: "c"}, ModalityTextImages},
	}
	for _, c := range cases {
		if got := c.q.Modality(); got != c.want {
			t.Fatalf("modality: got %q want %q", got, c.want)
		}
	}
}

func TestImageDocumentsOrder(t *testing.T) {
	ds := ImageDocuments("http://a/1.png", "http://b/2.png")
	if len(ds.Content) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(ds.Content))
	}
	if ds.Content[0].Type != "image_url" || ds.Content[0].ImageURL.URL != "http://a/1.png" {
		t.Fatalf("unexpected first part: %+v", ds.Content[0])
	}
	if ds.Content[1].ImageURL.URL != "http://b/2.png" {
		t.Fatalf("unexpected second part: %+v", ds.Content[1])
	}
}

func TestEngineArgsWithSeed(t *testing.T) {
	args := EngineArgs{Model: "m", Runner: "pooling", MaxModelLen: 4096}
	if args.Seed != nil {
		t.Fatalf("fresh args should carry no seed")
	}
	s := int64(42)
	merged := args.WithSeed(&s)
	if merged.Seed == nil || *merged.Seed != 42 {
		t.Fatalf("seed not merged: %+v", merged.Seed)
	}
	if merged.Model != "m" || merged.Runner != "pooling" || merged.MaxModelLen != 4096 {
		t.Fatalf("other fields altered: %+v", merged)
	}
	if args.Seed != nil {
		t.Fatalf("WithSeed mutated the receiver")
	}
	if unset := merged.WithSeed(nil); unset.Seed != nil {
		t.Fatalf("nil seed should clear")
	}
}

func TestRequestDataArgs(t *testing.T) {
	er := EmbeddingRequest{EngineArgs: EngineArgs{Model: "e"}, Prompt: "p"}
	sr := ScoringRequest{EngineArgs: EngineArgs{Model: "s"}, Query: "q"}
	if er.Args().Model != "e" || sr.Args().Model != "s" {
		t.Fatalf("Args accessor mismatch")
	}
}
