// Package raster is the 2D drawing surface behind the conversion
// engine: decode, blit/scale, sub-rectangle copy and format encode
// over in-memory bitmaps.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format (decode only)
)

// Decode parses encoded image bytes into a bitmap.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DrawScaled stretches src onto a canvas of exactly (width, height).
// When background is non-nil the canvas is filled with it first, so
// transparent source regions flatten onto that color instead of black.
func DrawScaled(src image.Image, width, height int, background color.Color) image.Image {
	scaled := imaging.Resize(src, width, height, imaging.Lanczos)
	if background == nil {
		return scaled
	}

	canvas := imaging.New(width, height, background)
	return imaging.Overlay(canvas, scaled, image.Pt(0, 0), 1.0)
}

// DrawRegion copies the given source-pixel rectangle at 1:1 scale.
// The rectangle is clamped to the source bounds.
func DrawRegion(src image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(src, r)
}

// NormalizeFormat maps a user supplied target format onto a canonical
// encoder name.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if f == "jpg" {
		return "jpeg"
	}
	return f
}

// Encode serializes a bitmap in the requested format and returns the
// encoded bytes together with the output mime type.
func Encode(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	switch NormalizeFormat(format) {
	case "jpeg":
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	case "png":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case "gif":
		if err := imaging.Encode(&buf, img, imaging.GIF); err != nil {
			return nil, "", fmt.Errorf("failed to encode gif: %w", err)
		}
		return buf.Bytes(), "image/gif", nil
	case "bmp":
		if err := imaging.Encode(&buf, img, imaging.BMP); err != nil {
			return nil, "", fmt.Errorf("failed to encode bmp: %w", err)
		}
		return buf.Bytes(), "image/bmp", nil
	case "tiff", "tif":
		if err := imaging.Encode(&buf, img, imaging.TIFF); err != nil {
			return nil, "", fmt.Errorf("failed to encode tiff: %w", err)
		}
		return buf.Bytes(), "image/tiff", nil
	case "webp":
		opts := &webp.Options{Quality: float32(quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, "", fmt.Errorf("failed to encode webp: %w", err)
		}
		return buf.Bytes(), "image/webp", nil
	}

	return nil, "", fmt.Errorf("unsupported target image format: %s", format)
}
