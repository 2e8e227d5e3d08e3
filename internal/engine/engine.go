// Package engine converts pending files per a conversion config:
// image resize, crop or format re-encode, a placeholder rendering for
// document-to-pdf, and a verbatim passthrough for everything else.
package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/amezav/filedrop/internal/dataurl"
	"github.com/amezav/filedrop/internal/delivery"
	"github.com/amezav/filedrop/internal/models"
	"github.com/amezav/filedrop/internal/raster"
	"github.com/amezav/filedrop/internal/telemetry"
	"github.com/amezav/filedrop/internal/telemetry/metrics"
)

const DefaultQuality = 92

type Engine struct {
	telemetry *telemetry.TelemetrySvc
}

func New(telemetry *telemetry.TelemetrySvc) *Engine {
	return &Engine{
		telemetry: telemetry,
	}
}

// Convert transforms a single file. Behavior forks on the file's
// classification and the requested operation; resize wins when both
// resize and crop are set.
func (e *Engine) Convert(
	ctx context.Context,
	file models.PendingFile,
	config models.ConversionConfig,
) (*models.ConversionResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// Continue processing
	}

	switch {
	case file.Class == models.ClassImage:
		return e.convertImage(file, config)
	case file.Class == models.ClassDocument &&
		raster.NormalizeFormat(config.TargetFormat) == "pdf":
		return e.renderDocumentStub(file, config)
	default:
		return e.passthrough(file, config)
	}
}

func (e *Engine) convertImage(
	file models.PendingFile,
	config models.ConversionConfig,
) (*models.ConversionResult, error) {
	src, err := raster.Decode(file.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", file.Name, err)
	}

	var canvas image.Image
	switch {
	case config.Resize != nil:
		width, height := resolveResize(src, *config.Resize)

		// White background so alpha flattens to white instead of
		// black when the target format has no alpha channel
		canvas = raster.DrawScaled(src, width, height, color.White)
	case config.Crop != nil:
		canvas = raster.DrawRegion(src, cropRect(src, config))
	default:
		// Identity redraw, pure format conversion
		canvas = imaging.Clone(src)
	}

	encoded, mime, err := raster.Encode(
		canvas,
		config.TargetFormat,
		clampQuality(config.Quality),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", file.Name, err)
	}

	return &models.ConversionResult{
		Filename: outputFilename(file.Name, config.TargetFormat),
		MIME:     mime,
		DataURL:  dataurl.Encode(mime, encoded),
		Size:     len(encoded),
	}, nil
}

// passthrough re-emits the original bytes untouched; only the
// downloaded filename's extension changes.
func (e *Engine) passthrough(
	file models.PendingFile,
	config models.ConversionConfig,
) (*models.ConversionResult, error) {
	return &models.ConversionResult{
		Filename: outputFilename(file.Name, config.TargetFormat),
		MIME:     file.MIME,
		DataURL:  dataurl.Encode(file.MIME, file.Data),
		Size:     len(file.Data),
	}, nil
}

// ConvertAll runs the batch strictly sequentially in list order,
// delivering each result to the sink before starting the next file.
// The first failure aborts the remainder of the batch.
func (e *Engine) ConvertAll(
	ctx context.Context,
	files []models.PendingFile,
	config models.ConversionConfig,
	sink delivery.Sink,
) error {
	for _, file := range files {
		result, err := e.Convert(ctx, file, config)
		if err != nil {
			e.telemetry.Metrics().Increment(
				metrics.ConversionFailed,
				map[string]string{"file": file.Name},
			)
			slog.Error(
				"Conversion failed, abandoning remainder of batch",
				"file", file.Name,
				"error", err,
			)
			return fmt.Errorf("batch conversion aborted at %s: %w", file.Name, err)
		}

		if err := sink.Deliver(ctx, *result); err != nil {
			slog.Error(
				"Delivery failed, abandoning remainder of batch",
				"file", result.Filename,
				"error", err,
			)
			return fmt.Errorf("failed to deliver %s: %w", result.Filename, err)
		}

		e.telemetry.Metrics().Increment(
			metrics.FileConverted,
			map[string]string{
				"file":         file.Name,
				"targetFormat": config.TargetFormat,
				"outputSize":   fmt.Sprintf("%d", result.Size),
			},
		)
	}

	return nil
}

// resolveResize fills omitted resize dimensions: a zero axis is
// derived from the source aspect ratio, both zero means native size.
func resolveResize(src image.Image, dims models.Dimensions) (int, int) {
	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	width := dims.Width
	height := dims.Height

	switch {
	case width <= 0 && height <= 0:
		return srcWidth, srcHeight
	case height <= 0:
		return width, (srcHeight * width) / srcWidth
	case width <= 0:
		return (srcWidth * height) / srcHeight, height
	default:
		return width, height
	}
}

// cropRect converts a display-space crop rectangle into source pixel
// coordinates, scaling by naturalSize/displaySize on each axis.
func cropRect(src image.Image, config models.ConversionConfig) image.Rectangle {
	bounds := src.Bounds()

	fx := 1.0
	if config.DisplayWidth > 0 {
		fx = float64(bounds.Dx()) / float64(config.DisplayWidth)
	}
	fy := 1.0
	if config.DisplayHeight > 0 {
		fy = float64(bounds.Dy()) / float64(config.DisplayHeight)
	}

	x := int(math.Round(float64(config.Crop.X) * fx))
	y := int(math.Round(float64(config.Crop.Y) * fy))
	width := int(math.Round(float64(config.Crop.Width) * fx))
	height := int(math.Round(float64(config.Crop.Height) * fy))

	return image.Rect(x, y, x+width, y+height)
}

func clampQuality(quality int) int {
	if quality < 10 || quality > 100 {
		return DefaultQuality
	}
	return quality
}

// outputFilename swaps the extension for the target format's one.
func outputFilename(name, targetFormat string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(targetFormat), "."))
	return base + "." + ext
}
