package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	_ "image/jpeg" // Register JPEG format

	"github.com/amezav/filedrop/internal/dataurl"
)

func pngFixture(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(
		img,
		img.Bounds(),
		image.NewUniform(color.NRGBA{120, 30, 200, 255}),
		image.Point{},
		draw.Src,
	)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestImagingGeneratorPreview(t *testing.T) {
	gen := NewImagingGenerator(64)

	previewURL, err := gen.Preview(
		context.Background(),
		"photo.png",
		pngFixture(t, 100, 80),
	)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if !strings.HasPrefix(previewURL, "data:image/jpeg;base64,") {
		t.Fatalf("preview is not a jpeg data URL: %s", previewURL[:32])
	}

	_, data, err := dataurl.Decode(previewURL)
	if err != nil {
		t.Fatalf("failed to decode preview data URL: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode preview image: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("preview width = %d; want 64", img.Bounds().Dx())
	}
}

func TestImagingGeneratorRejectsGarbage(t *testing.T) {
	gen := NewImagingGenerator(64)

	_, err := gen.Preview(
		context.Background(),
		"broken.png",
		[]byte("definitely not an image"),
	)
	if err == nil {
		t.Error("Preview of garbage bytes succeeded; want error")
	}
}

func TestImagingGeneratorDefaultWidth(t *testing.T) {
	gen := NewImagingGenerator(0)
	if gen.width != DefaultPreviewWidth {
		t.Errorf("width = %d; want default %d", gen.width, DefaultPreviewWidth)
	}
}
