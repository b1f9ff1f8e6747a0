package models

import (
	"sort"

	"vlpool/pkg/types"
)

// Adapter maps a query to the model-specific request format.
type Adapter func(types.Query) (types.RequestData, error)

// registry is the static dispatch table. Constructed once, never mutated.
var registry = map[string]Adapter{
	"e5_v":            E5V,
	"vlm2vec":         VLM2Vec,
	"jinavl_reranker": JinaVLReranker,
}

// Lookup returns the adapter registered under name. The CLI constrains
// its flag to the registered keys, so a miss normally means a
// programmatic caller passed a bad name.
func Lookup(name string) (Adapter, error) {
	a, ok := registry[name]
	if !ok {
		return nil, unknownModelError{name: name}
	}
	return a, nil
}

// Names returns the registered model keys, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// unknownModelError signals a model key absent from the dispatch table.
type unknownModelError struct{ name string }

func (e unknownModelError) Error() string { return "unknown model: " + e.name }

// IsUnknownModel reports whether err indicates an unregistered model key.
func IsUnknownModel(err error) bool {
	_, ok := err.(unknownModelError)
	return ok
}
