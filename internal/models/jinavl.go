package models

import (
	"vlpool/pkg/types"
)

// JinaVLReranker formats scoring requests for jinaai/jina-reranker-m0.
// Only the text+images variant makes sense here: the text is the query
// and the images are the documents to rank.
func JinaVLReranker(q types.Query) (types.RequestData, error) {
	v, ok := q.(types.TextImagesQuery)
	if !ok {
		return nil, types.ErrUnsupportedModality(q.Modality())
	}

	args := types.EngineArgs{
		Model:           "jinaai/jina-reranker-m0",
		Runner:          "pooling",
		MaxModelLen:     32768,
		TrustRemoteCode: true,
		MMProcessorKwargs: map[string]any{
			"min_pixels": 3136,
			"max_pixels": 602112,
		},
		LimitMMPerPrompt: map[string]int{"image": 1},
	}

	return types.ScoringRequest{EngineArgs: args, Query: v.Text, Documents: v.Images}, nil
}
