package query

import (
	"context"

	"vlpool/internal/fetch"
	"vlpool/pkg/types"
)

// Fixed sample content for the demo queries. The reranker documents stay
// URL references; the engine resolves those itself.
const (
	sampleText          = "A dog sitting in the grass"
	sampleTextImageText = "A cat standing in the snow."
	sampleRerankQuery   = "slm markdown"

	sampleImageURL          = "https://upload.wikimedia.org/wikipedia/commons/thumb/4/47/American_Eskimo_Dog.jpg/360px-American_Eskimo_Dog.jpg"
	sampleTextImageURL      = "https://upload.wikimedia.org/wikipedia/commons/thumb/b/b6/Felis_catus-cat_on_snow.jpg/179px-Felis_catus-cat_on_snow.jpg"
	sampleRerankDocumentOne = "https://raw.githubusercontent.com/jina-ai/multimodal-reranker-test/main/handelsblatt-preview.png"
	sampleRerankDocumentTwo = "https://raw.githubusercontent.com/jina-ai/multimodal-reranker-test/main/paper-11.png"
)

// Build returns the sample query for the given modality, fetching images
// where the variant carries one. Modalities outside the supported set are
// rejected; the CLI restricts input to the same set, so that arm only
// protects programmatic callers.
func Build(ctx context.Context, modality types.QueryModality, fetcher fetch.Fetcher) (types.Query, error) {
	switch modality {
	case types.ModalityText:
		return types.TextQuery{Text: sampleText}, nil
	case types.ModalityImage:
		img, err := fetcher.Fetch(ctx, sampleImageURL)
		if err != nil {
			return nil, err
		}
		return types.ImageQuery{Image: img}, nil
	case types.ModalityTextImage:
		img, err := fetcher.Fetch(ctx, sampleTextImageURL)
		if err != nil {
			return nil, err
		}
		return types.TextImageQuery{Text: sampleTextImageText, Image: img}, nil
	case types.ModalityTextImages:
		return types.TextImagesQuery{
			Text:   sampleRerankQuery,
			Images: types.ImageDocuments(sampleRerankDocumentOne, sampleRerankDocumentTwo),
		}, nil
	}
	return nil, types.ErrUnsupportedModality(modality)
}
