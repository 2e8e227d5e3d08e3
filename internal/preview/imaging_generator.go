package preview

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/amezav/filedrop/internal/dataurl"
)

// ImagingGenerator renders previews with the pure-Go imaging library.
// Slower than the lilliput path but has no cgo requirement.
type ImagingGenerator struct {
	width int
}

func NewImagingGenerator(width int) *ImagingGenerator {
	if width <= 0 {
		width = DefaultPreviewWidth
	}

	return &ImagingGenerator{width: width}
}

func (g *ImagingGenerator) Preview(
	ctx context.Context,
	name string,
	data []byte,
) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		// Continue processing
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}

	// Height 0 keeps the source aspect ratio
	thumb := imaging.Resize(img, g.width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	err = imaging.Encode(
		&buf,
		thumb,
		imaging.JPEG,
		imaging.JPEGQuality(PreviewQuality),
	)
	if err != nil {
		return "", fmt.Errorf("failed to encode preview for %s: %w", name, err)
	}

	return dataurl.Encode("image/jpeg", buf.Bytes()), nil
}
