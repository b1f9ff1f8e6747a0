package types

import "fmt"

// QueryModality identifies the kind of input content a query carries.
type QueryModality string

const (
	ModalityText       QueryModality = "text"
	ModalityImage      QueryModality = "image"
	ModalityTextImage  QueryModality = "text+image"
	ModalityTextImages QueryModality = "text+images"
)

// Modalities lists every supported modality in CLI display order.
func Modalities() []QueryModality {
	return []QueryModality{ModalityText, ModalityImage, ModalityTextImage, ModalityTextImages}
}

// ParseModality validates a raw modality string.
func ParseModality(s string) (QueryModality, error) {
	switch QueryModality(s) {
	case ModalityText, ModalityImage, ModalityTextImage, ModalityTextImages:
		return QueryModality(s), nil
	}
	return "", ErrUnsupportedModality(QueryModality(s))
}

// Image is a fetched image held in memory.
type Image struct {
	// Source URL the bytes were fetched from.
	URL string `json:"url"`
	// Raw encoded image bytes (not decoded pixels).
	Data []byte `json:"-"`
	// MIME type, e.g. "image/jpeg".
	MIME string `json:"mime,omitempty"`
}

// DocumentPart is one entry of a multimodal document collection.
type DocumentPart struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

// ImageURL wraps a document image reference.
type ImageURL struct {
	URL string `json:"url"`
}

// DocumentSet is an ordered multimodal document collection for scoring.
type DocumentSet struct {
	Content []DocumentPart `json:"content"`
}

// ImageDocuments builds a DocumentSet of image_url parts in the given order.
func ImageDocuments(urls ...string) DocumentSet {
	parts := make([]DocumentPart, 0, len(urls))
	for _, u := range urls {
		parts = append(parts, DocumentPart{Type: "image_url", ImageURL: ImageURL{URL: u}})
	}
	return DocumentSet{Content: parts}
}

// Query is a closed set of input variants. Exactly one concrete type is
// built per run; adapters type-switch over the variants with an explicit
// default arm for modalities they do not accept.
type Query interface {
	// Modality reports the variant tag.
	Modality() QueryModality
}

// TextQuery carries a bare text input.
type TextQuery struct {
	Text string
}

// ImageQuery carries a single fetched image.
type ImageQuery struct {
	Image Image
}

// TextImageQuery carries text plus a single fetched image.
type TextImageQuery struct {
	Text  string
	Image Image
}

// TextImagesQuery carries a query string plus an image document collection.
type TextImagesQuery struct {
	Text   string
	Images DocumentSet
}

func (TextQuery) Modality() QueryModality       { return ModalityText }
func (ImageQuery) Modality() QueryModality      { return ModalityImage }
func (TextImageQuery) Modality() QueryModality  { return ModalityTextImage }
func (TextImagesQuery) Modality() QueryModality { return ModalityTextImages }

// unsupportedModalityError signals a modality outside the accepted set.
type unsupportedModalityError struct{ modality QueryModality }

func (e unsupportedModalityError) Error() string {
	return fmt.Sprintf("unsupported query modality: %q", string(e.modality))
}

// ErrUnsupportedModality constructs an unsupported-modality error.
func ErrUnsupportedModality(m QueryModality) error { return unsupportedModalityError{modality: m} }

// IsUnsupportedModality reports whether err indicates a rejected modality.
func IsUnsupportedModality(err error) bool {
	_, ok := err.(unsupportedModalityError)
	return ok
}
