package preview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/discord/lilliput"

	"github.com/amezav/filedrop/internal/dataurl"
	"github.com/amezav/filedrop/internal/telemetry"
	"github.com/amezav/filedrop/internal/telemetry/metrics"
)

type LilliputGenerator struct {
	width     int
	telemetry *telemetry.TelemetrySvc
}

func NewLilliputGenerator(
	width int,
	telemetry *telemetry.TelemetrySvc,
) *LilliputGenerator {
	if width <= 0 {
		width = DefaultPreviewWidth
	}

	return &LilliputGenerator{
		width:     width,
		telemetry: telemetry,
	}
}

func (g *LilliputGenerator) Preview(
	ctx context.Context,
	name string,
	data []byte,
) (string, error) {
	slog.Debug("Generating preview", "file", name)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		// Continue processing
	}

	decoder, err := lilliput.NewDecoder(data)
	if err != nil {
		return "", fmt.Errorf(
			"failed to create lilliput decoder for %s: %w",
			name,
			err,
		)
	}
	defer decoder.Close()

	header, err := decoder.Header()
	if err != nil {
		return "", fmt.Errorf(
			"failed to get image header for %s: %w",
			name,
			err,
		)
	}

	origWidth := header.Width()
	origHeight := header.Height()
	if origWidth == 0 || origHeight == 0 {
		return "", fmt.Errorf(
			"invalid image dimensions for %s: width=%d, height=%d",
			name,
			origWidth,
			origHeight,
		)
	}

	ops := lilliput.NewImageOps(int(float64(origWidth) * 1.5))
	defer ops.Close()

	// Previews are small, 20MB is plenty for the encoded output
	outputBuffer := make([]byte, 20*1024*1024)

	tgtWidth := g.width
	tgtHeight := (origHeight * tgtWidth) / origWidth
	opts := &lilliput.ImageOptions{
		FileType:             PreviewExtension,
		Width:                tgtWidth,
		Height:               tgtHeight,
		ResizeMethod:         lilliput.ImageOpsFit,
		NormalizeOrientation: true,
		EncodeOptions: map[int]int{
			lilliput.JpegQuality: PreviewQuality,
		},
	}

	previewBuf, err := ops.Transform(decoder, opts, outputBuffer)
	if err != nil {
		return "", fmt.Errorf(
			"failed to render preview for %s: %w",
			name,
			err,
		)
	}

	g.telemetry.Metrics().Increment(
		metrics.PreviewGenerated,
		map[string]string{
			"file":         name,
			"origSize":     fmt.Sprintf("%d", len(data)),
			"origWidth":    fmt.Sprintf("%d", origWidth),
			"previewSize":  fmt.Sprintf("%d", len(previewBuf)),
			"previewWidth": fmt.Sprintf("%d", tgtWidth),
		},
	)

	return dataurl.Encode("image/jpeg", previewBuf), nil
}
