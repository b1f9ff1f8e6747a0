package models

import (
	"fmt"

	"vlpool/pkg/types"
)

// llama3Template wraps the pooled content in the Llama-3 chat format
// expected by e5-v.
const llama3Template = "<|start_header_id|>user<|end_header_id|>\n\n%s<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n \n"

// E5V formats embedding requests for royokong/e5-v. Accepts text or a
// single image; everything else is rejected.
func E5V(q types.Query) (types.RequestData, error) {
	args := types.EngineArgs{
		Model:            "royokong/e5-v",
		Runner:           "pooling",
		MaxModelLen:      4096,
		LimitMMPerPrompt: map[string]int{"image": 1},
	}

	switch v := q.(type) {
	case types.TextQuery:
		prompt := fmt.Sprintf(llama3Template, v.Text+"\nSummary above sentence in one word: ")
		return types.EmbeddingRequest{EngineArgs: args, Prompt: prompt}, nil
	case types.ImageQuery:
		prompt := fmt.Sprintf(llama3Template, "<image>\nSummary above image in one word: ")
		img := v.Image
		return types.EmbeddingRequest{EngineArgs: args, Prompt: prompt, Image: &img}, nil
	default:
		return nil, types.ErrUnsupportedModality(q.Modality())
	}
}
