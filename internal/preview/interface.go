package preview

import (
	"context"
)

const PreviewExtension = ".jpg"
const PreviewQuality = 60
const DefaultPreviewWidth = 256

// Generator produces a data URL thumbnail for an in-memory image file.
type Generator interface {
	Preview(ctx context.Context, name string, data []byte) (string, error)
}
