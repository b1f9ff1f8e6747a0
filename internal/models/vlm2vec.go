package models

import (
	"fmt"

	"vlpool/pkg/types"
)

// VLM2Vec formats embedding requests for TIGER-Lab/VLM2Vec-Full. Accepts
// text, a single image, or text plus image; the two image cases share the
// <|image_1|> placeholder convention.
func VLM2Vec(q types.Query) (types.RequestData, error) {
	args := types.EngineArgs{
		Model:             "TIGER-Lab/VLM2Vec-Full",
		Runner:            "pooling",
		MaxModelLen:       4096,
		TrustRemoteCode:   true,
		MMProcessorKwargs: map[string]any{"num_crops": 4},
		LimitMMPerPrompt:  map[string]int{"image": 1},
	}

	switch v := q.(type) {
	case types.TextQuery:
		prompt := fmt.Sprintf("Find me an everyday image that matches the given caption: %s", v.Text)
		return types.EmbeddingRequest{EngineArgs: args, Prompt: prompt}, nil
	case types.ImageQuery:
		prompt := "<|image_1|> Find a day-to-day image that looks similar to the provided image."
		img := v.Image
		return types.EmbeddingRequest{EngineArgs: args, Prompt: prompt, Image: &img}, nil
	case types.TextImageQuery:
		prompt := fmt.Sprintf("<|image_1|> Represent the given image with the following question: %s", v.Text)
		img := v.Image
		return types.EmbeddingRequest{EngineArgs: args, Prompt: prompt, Image: &img}, nil
	default:
		return nil, types.ErrUnsupportedModality(q.Modality())
	}
}
