package scanning

import (
	"context"

	"github.com/fisokur/fisokur/internal/receipt"
)

// Image is a read-only handle to in-memory image bytes. Name is a file-name
// hint used only to infer the media type; it is never touched otherwise.
type Image struct {
	Data []byte
	Name string
}

// Extractor defines the interface for receipt extraction engines.
//
// Both operations perform exactly one network round-trip per call and hold
// no mutable state, so an Extractor is safe for concurrent use. Malformed
// model output never surfaces as an error: ExtractText degrades to the raw
// response body and ExtractReceipt degrades to an all-default record. Only
// configuration and transport failures are returned as errors.
type Extractor interface {
	// ExtractText runs free-form OCR and returns the readable text of the
	// image. instruction overrides the default prompt when non-empty after
	// trimming.
	ExtractText(ctx context.Context, img Image, instruction string) (string, error)

	// ExtractReceipt extracts a typed receipt record from the image.
	ExtractReceipt(ctx context.Context, img Image) (receipt.Record, error)

	// Close closes the engine and releases resources.
	Close() error
}
